package consultation

import (
	"context"
)

type ConsultationRepository interface {
	List(ctx context.Context) ([]*Consultation, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Consultation, error)
	GetByID(ctx context.Context, id int64) (*Consultation, error)
	Create(ctx context.Context, c *Consultation) error
	Update(ctx context.Context, c *Consultation) error
	Delete(ctx context.Context, id int64) error
}

type TreatmentRepository interface {
	List(ctx context.Context) ([]*Treatment, error)
	ListByConsultation(ctx context.Context, consultationID int64) ([]*Treatment, error)
	GetByID(ctx context.Context, id int64) (*Treatment, error)
	Create(ctx context.Context, t *Treatment) error
	Update(ctx context.Context, t *Treatment) error
	Delete(ctx context.Context, id int64) error
}
