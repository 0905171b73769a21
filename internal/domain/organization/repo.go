package organization

import (
	"context"
)

type DepartmentRepository interface {
	List(ctx context.Context) ([]*Department, error)
	GetByID(ctx context.Context, id int64) (*Department, error)
	Create(ctx context.Context, d *Department) error
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id int64) error
}

type SpecialtyRepository interface {
	List(ctx context.Context) ([]*Specialty, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]*Specialty, error)
	GetByID(ctx context.Context, id int64) (*Specialty, error)
	Create(ctx context.Context, s *Specialty) error
	Update(ctx context.Context, s *Specialty) error
	Delete(ctx context.Context, id int64) error
}
