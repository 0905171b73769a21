package consultation

import (
	"fmt"
	"strings"
	"time"
)

// Consultation statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Statuses lists every accepted consultation status.
var Statuses = []string{StatusPending, StatusCompleted, StatusCancelled}

var statusLabels = map[string]string{
	StatusPending:   "Pendiente",
	StatusCompleted: "Realizada",
	StatusCancelled: "Cancelada",
}

// StatusLabel returns the display name of a status.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// Consultation is one visit of a patient to a doctor. ConsultedAt is assigned
// by the database on insert and never rewritten. The patient and doctor names
// are filled in on read.
type Consultation struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patient" validate:"required"`
	DoctorID        int64     `json:"doctor" validate:"required"`
	ConsultedAt     time.Time `json:"consulted_at,omitempty"`
	Reason          string    `json:"reason" validate:"required,max=255"`
	Diagnosis       *string   `json:"diagnosis"`
	Status          string    `json:"status" validate:"required,oneof=pending completed cancelled"`
	PatientFullName string    `json:"patient_full_name,omitempty"`
	PatientRUT      string    `json:"patient_rut,omitempty"`
	DoctorFullName  string    `json:"doctor_full_name,omitempty"`
}

// NewConsultation returns a pending consultation.
func NewConsultation() *Consultation {
	return &Consultation{Status: StatusPending}
}

func (c *Consultation) String() string {
	return fmt.Sprintf("Consulta %d de %s (%s)", c.ID, c.PatientFullName, c.PatientRUT)
}

func (c *Consultation) normalize() {
	c.Reason = strings.TrimSpace(c.Reason)
	c.Diagnosis = trimOptional(c.Diagnosis)
	c.Status = strings.TrimSpace(c.Status)
	if c.Status == "" {
		c.Status = StatusPending
	}
}

// Treatment is a course of care prescribed during a consultation.
type Treatment struct {
	ID             int64   `json:"id"`
	ConsultationID int64   `json:"consultation" validate:"required"`
	Description    string  `json:"description" validate:"required"`
	DurationDays   int64   `json:"duration_days" validate:"gte=1,lte=2147483647"`
	Notes          *string `json:"notes"`
}

func (t *Treatment) String() string {
	return fmt.Sprintf("Tratamiento %d para Consulta %d", t.ID, t.ConsultationID)
}

func (t *Treatment) normalize() {
	t.Description = strings.TrimSpace(t.Description)
	t.Notes = trimOptional(t.Notes)
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
