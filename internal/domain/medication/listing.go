package medication

import (
	"github.com/Lucklimp/eva-2/internal/platform/listing"
)

func MedicationPipeline() *listing.Pipeline[*Medication] {
	return listing.New(
		[]listing.Filter[*Medication]{
			listing.Contains("name", func(m *Medication) string { return m.Name }),
			listing.Contains("laboratory", func(m *Medication) string { return m.Laboratory }),
		},
		[]listing.SortKey[*Medication]{
			listing.SortInt("id", func(m *Medication) int64 { return m.ID }),
			listing.SortText("name", func(m *Medication) string { return m.Name }, "nombre"),
			listing.SortText("laboratory", func(m *Medication) string { return m.Laboratory }, "laboratorio"),
			listing.SortInt("stock", func(m *Medication) int64 { return m.Stock }),
			listing.SortFloat("unit_price", func(m *Medication) float64 { return m.UnitPrice }, "precio_unitario"),
		},
		"",
	)
}

func PrescriptionPipeline() *listing.Pipeline[*Prescription] {
	return listing.New(
		[]listing.Filter[*Prescription]{
			listing.EqualsID("consultation", func(p *Prescription) int64 { return p.ConsultationID }),
			listing.EqualsID("medication", func(p *Prescription) int64 { return p.MedicationID }),
			listing.Contains("dosage", func(p *Prescription) string { return p.Dosage }),
		},
		[]listing.SortKey[*Prescription]{
			listing.SortInt("id", func(p *Prescription) int64 { return p.ID }),
			listing.SortInt("consultation", func(p *Prescription) int64 { return p.ConsultationID }, "consulta"),
			listing.SortInt("medication", func(p *Prescription) int64 { return p.MedicationID }, "medicamento"),
			listing.SortText("dosage", func(p *Prescription) string { return p.Dosage }, "dosis"),
			listing.SortText("frequency", func(p *Prescription) string { return p.Frequency }, "frecuencia"),
			listing.SortText("duration", func(p *Prescription) string { return p.Duration }, "duracion"),
			listing.SortText("medication_name", func(p *Prescription) string { return p.MedicationName }),
			listing.SortText("patient_full_name", func(p *Prescription) string { return p.PatientFullName }),
		},
		"",
	)
}
