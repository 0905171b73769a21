package organization

import (
	"strings"
)

// Department groups specialties.
type Department struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

func (d *Department) String() string {
	return d.Name
}

func (d *Department) normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = trimOptional(d.Description)
}

// Specialty is a medical specialty, optionally attached to a department.
// DepartmentName is filled in on read.
type Specialty struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name" validate:"required,max=100"`
	Description    *string `json:"description"`
	DepartmentID   *int64  `json:"department"`
	DepartmentName string  `json:"department_name,omitempty"`
}

func (s *Specialty) String() string {
	return s.Name
}

func (s *Specialty) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = trimOptional(s.Description)
}

// trimOptional trims s and turns a blank value into nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
