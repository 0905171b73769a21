package consultation

import (
	"context"

	"github.com/Lucklimp/eva-2/internal/domain/identity"
	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/validation"
)

// PatientReader looks up the patient of a consultation.
type PatientReader interface {
	Get(ctx context.Context, id int64) (*identity.Patient, error)
}

// DoctorReader looks up the doctor of a consultation.
type DoctorReader interface {
	Get(ctx context.Context, id int64) (*identity.Doctor, error)
}

// -- Consultation --

type ConsultationService struct {
	consultations ConsultationRepository
	patients      PatientReader
	doctors       DoctorReader
}

func NewConsultationService(consultations ConsultationRepository, patients PatientReader, doctors DoctorReader) *ConsultationService {
	return &ConsultationService{consultations: consultations, patients: patients, doctors: doctors}
}

func (s *ConsultationService) List(ctx context.Context) ([]*Consultation, error) {
	return s.consultations.List(ctx)
}

// ListByPatient returns the consultations of one patient, failing with
// db.ErrNotFound when the patient does not exist.
func (s *ConsultationService) ListByPatient(ctx context.Context, patientID int64) ([]*Consultation, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}
	return s.consultations.ListByPatient(ctx, patientID)
}

func (s *ConsultationService) Get(ctx context.Context, id int64) (*Consultation, error) {
	return s.consultations.GetByID(ctx, id)
}

func (s *ConsultationService) Create(ctx context.Context, c *Consultation) error {
	if err := s.check(ctx, c); err != nil {
		return err
	}
	return s.consultations.Create(ctx, c)
}

func (s *ConsultationService) Update(ctx context.Context, c *Consultation) error {
	if err := s.check(ctx, c); err != nil {
		return err
	}
	return s.consultations.Update(ctx, c)
}

// Delete also removes the consultation's treatments and prescriptions.
func (s *ConsultationService) Delete(ctx context.Context, id int64) error {
	return s.consultations.Delete(ctx, id)
}

func (s *ConsultationService) check(ctx context.Context, c *Consultation) error {
	c.normalize()
	if err := validation.Struct(c); err != nil {
		return err
	}
	if err := crud.CheckRef(ctx, "patient", c.PatientID, s.patients.Get); err != nil {
		return err
	}
	return crud.CheckRef(ctx, "doctor", c.DoctorID, s.doctors.Get)
}

// -- Treatment --

type TreatmentService struct {
	treatments    TreatmentRepository
	consultations ConsultationRepository
}

func NewTreatmentService(treatments TreatmentRepository, consultations ConsultationRepository) *TreatmentService {
	return &TreatmentService{treatments: treatments, consultations: consultations}
}

func (s *TreatmentService) List(ctx context.Context) ([]*Treatment, error) {
	return s.treatments.List(ctx)
}

// ListByConsultation returns the treatments of one consultation, failing with
// db.ErrNotFound when the consultation does not exist.
func (s *TreatmentService) ListByConsultation(ctx context.Context, consultationID int64) ([]*Treatment, error) {
	if _, err := s.consultations.GetByID(ctx, consultationID); err != nil {
		return nil, err
	}
	return s.treatments.ListByConsultation(ctx, consultationID)
}

func (s *TreatmentService) Get(ctx context.Context, id int64) (*Treatment, error) {
	return s.treatments.GetByID(ctx, id)
}

func (s *TreatmentService) Create(ctx context.Context, t *Treatment) error {
	if err := s.check(ctx, t); err != nil {
		return err
	}
	return s.treatments.Create(ctx, t)
}

func (s *TreatmentService) Update(ctx context.Context, t *Treatment) error {
	if err := s.check(ctx, t); err != nil {
		return err
	}
	return s.treatments.Update(ctx, t)
}

func (s *TreatmentService) Delete(ctx context.Context, id int64) error {
	return s.treatments.Delete(ctx, id)
}

func (s *TreatmentService) check(ctx context.Context, t *Treatment) error {
	t.normalize()
	if err := validation.Struct(t); err != nil {
		return err
	}
	return crud.CheckRef(ctx, "consultation", t.ConsultationID, s.consultations.GetByID)
}
