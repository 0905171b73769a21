package identity

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Patient maps to the patient table. RUT is the Chilean national id.
type Patient struct {
	ID        int64       `json:"id"`
	RUT       string      `json:"rut" validate:"required,max=12"`
	Name      string      `json:"name" validate:"required,max=100"`
	Surname   string      `json:"surname" validate:"required,max=100"`
	BirthDate pgtype.Date `json:"birth_date" validate:"required"`
	BloodType string      `json:"blood_type" validate:"required,max=5"`
	Email     string      `json:"email" validate:"required,email,max=254"`
	Phone     *string     `json:"phone" validate:"omitempty,max=15"`
	Address   *string     `json:"address" validate:"omitempty,max=255"`
	Active    bool        `json:"active"`
}

// NewPatient returns a patient with the column defaults applied.
func NewPatient() *Patient {
	return &Patient{Active: true}
}

// FullName is the name and surname joined by a space.
func (p *Patient) FullName() string {
	return p.Name + " " + p.Surname
}

func (p *Patient) String() string {
	return fmt.Sprintf("%s %s (%s)", p.Name, p.Surname, p.RUT)
}

func (p *Patient) normalize() {
	p.RUT = strings.TrimSpace(p.RUT)
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
	p.BloodType = strings.TrimSpace(p.BloodType)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = trimOptional(p.Phone)
	p.Address = trimOptional(p.Address)
}

// Doctor maps to the doctor table. SpecialtyName is filled in on read.
type Doctor struct {
	ID            int64   `json:"id"`
	RUT           string  `json:"rut" validate:"required,max=12"`
	Name          string  `json:"name" validate:"required,max=100"`
	Surname       string  `json:"surname" validate:"required,max=100"`
	Email         string  `json:"email" validate:"required,email,max=254"`
	Phone         *string `json:"phone" validate:"omitempty,max=15"`
	Active        bool    `json:"active"`
	SpecialtyID   int64   `json:"specialty" validate:"required"`
	SpecialtyName string  `json:"specialty_name,omitempty"`
}

// NewDoctor returns a doctor with the column defaults applied.
func NewDoctor() *Doctor {
	return &Doctor{Active: true}
}

func (d *Doctor) FullName() string {
	return d.Name + " " + d.Surname
}

func (d *Doctor) String() string {
	return fmt.Sprintf("Dr. %s %s", d.Name, d.Surname)
}

func (d *Doctor) normalize() {
	d.RUT = strings.TrimSpace(d.RUT)
	d.Name = strings.TrimSpace(d.Name)
	d.Surname = strings.TrimSpace(d.Surname)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = trimOptional(d.Phone)
}

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
