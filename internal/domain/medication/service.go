package medication

import (
	"context"

	"github.com/Lucklimp/eva-2/internal/domain/consultation"
	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/validation"
)

// -- Medication --

type MedicationService struct {
	medications MedicationRepository
}

func NewMedicationService(medications MedicationRepository) *MedicationService {
	return &MedicationService{medications: medications}
}

func (s *MedicationService) List(ctx context.Context) ([]*Medication, error) {
	return s.medications.List(ctx)
}

func (s *MedicationService) Get(ctx context.Context, id int64) (*Medication, error) {
	return s.medications.GetByID(ctx, id)
}

func (s *MedicationService) Create(ctx context.Context, m *Medication) error {
	m.normalize()
	if err := validation.Struct(m); err != nil {
		return err
	}
	return s.medications.Create(ctx, m)
}

func (s *MedicationService) Update(ctx context.Context, m *Medication) error {
	m.normalize()
	if err := validation.Struct(m); err != nil {
		return err
	}
	return s.medications.Update(ctx, m)
}

// Delete fails with db.ErrProtected while prescriptions reference the medication.
func (s *MedicationService) Delete(ctx context.Context, id int64) error {
	return s.medications.Delete(ctx, id)
}

// -- Prescription --

// ConsultationReader looks up the consultation a prescription belongs to.
type ConsultationReader interface {
	Get(ctx context.Context, id int64) (*consultation.Consultation, error)
}

type PrescriptionService struct {
	prescriptions PrescriptionRepository
	medications   MedicationRepository
	consultations ConsultationReader
}

func NewPrescriptionService(prescriptions PrescriptionRepository, medications MedicationRepository, consultations ConsultationReader) *PrescriptionService {
	return &PrescriptionService{prescriptions: prescriptions, medications: medications, consultations: consultations}
}

func (s *PrescriptionService) List(ctx context.Context) ([]*Prescription, error) {
	return s.prescriptions.List(ctx)
}

// ListByConsultation returns the prescriptions of one consultation, failing
// with db.ErrNotFound when the consultation does not exist.
func (s *PrescriptionService) ListByConsultation(ctx context.Context, consultationID int64) ([]*Prescription, error) {
	if _, err := s.consultations.Get(ctx, consultationID); err != nil {
		return nil, err
	}
	return s.prescriptions.ListByConsultation(ctx, consultationID)
}

func (s *PrescriptionService) Get(ctx context.Context, id int64) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *PrescriptionService) Create(ctx context.Context, p *Prescription) error {
	if err := s.check(ctx, p); err != nil {
		return err
	}
	return s.prescriptions.Create(ctx, p)
}

func (s *PrescriptionService) Update(ctx context.Context, p *Prescription) error {
	if err := s.check(ctx, p); err != nil {
		return err
	}
	return s.prescriptions.Update(ctx, p)
}

func (s *PrescriptionService) Delete(ctx context.Context, id int64) error {
	return s.prescriptions.Delete(ctx, id)
}

func (s *PrescriptionService) check(ctx context.Context, p *Prescription) error {
	p.normalize()
	if err := validation.Struct(p); err != nil {
		return err
	}
	if err := crud.CheckRef(ctx, "consultation", p.ConsultationID, s.consultations.Get); err != nil {
		return err
	}
	return crud.CheckRef(ctx, "medication", p.MedicationID, s.medications.GetByID)
}
