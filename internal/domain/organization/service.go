package organization

import (
	"context"

	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/validation"
)

// -- Department --

type DepartmentService struct {
	departments DepartmentRepository
}

func NewDepartmentService(departments DepartmentRepository) *DepartmentService {
	return &DepartmentService{departments: departments}
}

func (s *DepartmentService) List(ctx context.Context) ([]*Department, error) {
	return s.departments.List(ctx)
}

func (s *DepartmentService) Get(ctx context.Context, id int64) (*Department, error) {
	return s.departments.GetByID(ctx, id)
}

func (s *DepartmentService) Create(ctx context.Context, d *Department) error {
	d.normalize()
	if err := validation.Struct(d); err != nil {
		return err
	}
	return s.departments.Create(ctx, d)
}

func (s *DepartmentService) Update(ctx context.Context, d *Department) error {
	d.normalize()
	if err := validation.Struct(d); err != nil {
		return err
	}
	return s.departments.Update(ctx, d)
}

func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	return s.departments.Delete(ctx, id)
}

// -- Specialty --

type SpecialtyService struct {
	specialties SpecialtyRepository
	departments DepartmentRepository
}

func NewSpecialtyService(specialties SpecialtyRepository, departments DepartmentRepository) *SpecialtyService {
	return &SpecialtyService{specialties: specialties, departments: departments}
}

func (s *SpecialtyService) List(ctx context.Context) ([]*Specialty, error) {
	return s.specialties.List(ctx)
}

// ListByDepartment returns the specialties of one department, failing with
// db.ErrNotFound when the department does not exist.
func (s *SpecialtyService) ListByDepartment(ctx context.Context, departmentID int64) ([]*Specialty, error) {
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}
	return s.specialties.ListByDepartment(ctx, departmentID)
}

func (s *SpecialtyService) Get(ctx context.Context, id int64) (*Specialty, error) {
	return s.specialties.GetByID(ctx, id)
}

func (s *SpecialtyService) Create(ctx context.Context, sp *Specialty) error {
	if err := s.check(ctx, sp); err != nil {
		return err
	}
	return s.specialties.Create(ctx, sp)
}

func (s *SpecialtyService) Update(ctx context.Context, sp *Specialty) error {
	if err := s.check(ctx, sp); err != nil {
		return err
	}
	return s.specialties.Update(ctx, sp)
}

func (s *SpecialtyService) Delete(ctx context.Context, id int64) error {
	return s.specialties.Delete(ctx, id)
}

func (s *SpecialtyService) check(ctx context.Context, sp *Specialty) error {
	sp.normalize()
	if err := validation.Struct(sp); err != nil {
		return err
	}
	if sp.DepartmentID != nil {
		return crud.CheckRef(ctx, "department", *sp.DepartmentID, s.departments.GetByID)
	}
	return nil
}
