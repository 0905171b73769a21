package identity

import (
	"context"

	"github.com/Lucklimp/eva-2/internal/domain/organization"
	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/validation"
)

// -- Patient --

type PatientService struct {
	patients PatientRepository
}

func NewPatientService(patients PatientRepository) *PatientService {
	return &PatientService{patients: patients}
}

func (s *PatientService) List(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

func (s *PatientService) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *PatientService) Create(ctx context.Context, p *Patient) error {
	p.normalize()
	if err := validation.Struct(p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *PatientService) Update(ctx context.Context, p *Patient) error {
	p.normalize()
	if err := validation.Struct(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *PatientService) Delete(ctx context.Context, id int64) error {
	return s.patients.Delete(ctx, id)
}

// -- Doctor --

// SpecialtyReader looks up the specialty a doctor belongs to.
type SpecialtyReader interface {
	Get(ctx context.Context, id int64) (*organization.Specialty, error)
}

type DoctorService struct {
	doctors     DoctorRepository
	specialties SpecialtyReader
}

func NewDoctorService(doctors DoctorRepository, specialties SpecialtyReader) *DoctorService {
	return &DoctorService{doctors: doctors, specialties: specialties}
}

func (s *DoctorService) List(ctx context.Context) ([]*Doctor, error) {
	return s.doctors.List(ctx)
}

// ListBySpecialty returns the doctors of one specialty, failing with
// db.ErrNotFound when the specialty does not exist.
func (s *DoctorService) ListBySpecialty(ctx context.Context, specialtyID int64) ([]*Doctor, error) {
	if _, err := s.specialties.Get(ctx, specialtyID); err != nil {
		return nil, err
	}
	return s.doctors.ListBySpecialty(ctx, specialtyID)
}

func (s *DoctorService) Get(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *DoctorService) Create(ctx context.Context, d *Doctor) error {
	if err := s.check(ctx, d); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *DoctorService) Update(ctx context.Context, d *Doctor) error {
	if err := s.check(ctx, d); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func (s *DoctorService) Delete(ctx context.Context, id int64) error {
	return s.doctors.Delete(ctx, id)
}

func (s *DoctorService) check(ctx context.Context, d *Doctor) error {
	d.normalize()
	if err := validation.Struct(d); err != nil {
		return err
	}
	return crud.CheckRef(ctx, "specialty", d.SpecialtyID, s.specialties.Get)
}
