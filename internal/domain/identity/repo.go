package identity

import (
	"context"
)

type PatientRepository interface {
	List(ctx context.Context) ([]*Patient, error)
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
}

type DoctorRepository interface {
	List(ctx context.Context) ([]*Doctor, error)
	ListBySpecialty(ctx context.Context, specialtyID int64) ([]*Doctor, error)
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	Create(ctx context.Context, d *Doctor) error
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id int64) error
}
