package consultation

import (
	"time"

	"github.com/samber/lo"

	"github.com/Lucklimp/eva-2/internal/platform/listing"
)

// ConsultationPipeline filters by patient, doctor, status and a closed range
// on the consultation time. Newest consultations come first by default.
func ConsultationPipeline() *listing.Pipeline[*Consultation] {
	at := func(c *Consultation) time.Time { return c.ConsultedAt }
	return listing.New(
		[]listing.Filter[*Consultation]{
			listing.EqualsID("patient", func(c *Consultation) int64 { return c.PatientID }),
			listing.EqualsID("doctor", func(c *Consultation) int64 { return c.DoctorID }),
			listing.OneOf("status", Statuses, func(c *Consultation) string { return c.Status }),
			listing.Since("date_from", at),
			listing.Until("date_to", at),
		},
		[]listing.SortKey[*Consultation]{
			listing.SortInt("id", func(c *Consultation) int64 { return c.ID }),
			listing.SortTime("consulted_at", at, "fecha_consulta"),
			listing.SortText("reason", func(c *Consultation) string { return c.Reason }, "motivo"),
			listing.SortText("diagnosis", func(c *Consultation) string { return lo.FromPtr(c.Diagnosis) }, "diagnostico"),
			listing.SortText("status", func(c *Consultation) string { return c.Status }, "estado"),
			listing.SortInt("patient", func(c *Consultation) int64 { return c.PatientID }, "paciente"),
			listing.SortInt("doctor", func(c *Consultation) int64 { return c.DoctorID }, "medico"),
			listing.SortText("patient_full_name", func(c *Consultation) string { return c.PatientFullName }),
			listing.SortText("doctor_full_name", func(c *Consultation) string { return c.DoctorFullName }),
		},
		"-consulted_at",
	)
}

func TreatmentPipeline() *listing.Pipeline[*Treatment] {
	return listing.New(
		[]listing.Filter[*Treatment]{
			listing.EqualsID("consultation", func(t *Treatment) int64 { return t.ConsultationID }),
			listing.Contains("description", func(t *Treatment) string { return t.Description }),
		},
		[]listing.SortKey[*Treatment]{
			listing.SortInt("id", func(t *Treatment) int64 { return t.ID }),
			listing.SortInt("consultation", func(t *Treatment) int64 { return t.ConsultationID }, "consulta"),
			listing.SortText("description", func(t *Treatment) string { return t.Description }, "descripcion"),
			listing.SortInt("duration_days", func(t *Treatment) int64 { return t.DurationDays }, "duracion_dias"),
			listing.SortText("notes", func(t *Treatment) string { return lo.FromPtr(t.Notes) }, "observaciones"),
		},
		"",
	)
}
