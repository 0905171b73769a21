package medication

import (
	"context"
)

type MedicationRepository interface {
	List(ctx context.Context) ([]*Medication, error)
	GetByID(ctx context.Context, id int64) (*Medication, error)
	Create(ctx context.Context, m *Medication) error
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id int64) error
}

type PrescriptionRepository interface {
	List(ctx context.Context) ([]*Prescription, error)
	ListByConsultation(ctx context.Context, consultationID int64) ([]*Prescription, error)
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	Create(ctx context.Context, p *Prescription) error
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id int64) error
}
