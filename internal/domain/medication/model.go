package medication

import (
	"fmt"
	"strings"
)

// Medication is a stocked drug.
type Medication struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name" validate:"required,max=100"`
	Laboratory string  `json:"laboratory" validate:"required,max=100"`
	Stock      int64   `json:"stock" validate:"gte=0,lte=2147483647"`
	UnitPrice  float64 `json:"unit_price" validate:"gte=0.01,decimal=10:2"`
}

func (m *Medication) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Laboratory)
}

func (m *Medication) normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Laboratory = strings.TrimSpace(m.Laboratory)
}

// Prescription prescribes a medication during a consultation. The medication
// and patient names are filled in on read.
type Prescription struct {
	ID              int64  `json:"id"`
	ConsultationID  int64  `json:"consultation" validate:"required"`
	MedicationID    int64  `json:"medication" validate:"required"`
	Dosage          string `json:"dosage" validate:"required,max=150"`
	Frequency       string `json:"frequency" validate:"required,max=150"`
	Duration        string `json:"duration" validate:"required,max=100"`
	MedicationName  string `json:"medication_name,omitempty"`
	PatientFullName string `json:"patient_full_name,omitempty"`
	PatientRUT      string `json:"patient_rut,omitempty"`
}

func (p *Prescription) String() string {
	return fmt.Sprintf("Receta para %s (%s) - %s", p.PatientFullName, p.PatientRUT, p.MedicationName)
}

func (p *Prescription) normalize() {
	p.Dosage = strings.TrimSpace(p.Dosage)
	p.Frequency = strings.TrimSpace(p.Frequency)
	p.Duration = strings.TrimSpace(p.Duration)
}
