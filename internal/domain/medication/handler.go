package medication

import (
	"github.com/labstack/echo/v4"

	"github.com/Lucklimp/eva-2/internal/domain/consultation"
	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/events"
	"github.com/Lucklimp/eva-2/internal/platform/openapi"
	"github.com/Lucklimp/eva-2/internal/platform/web"
)

func MedicationDescriptor() *crud.Descriptor[Medication] {
	return &crud.Descriptor[Medication]{
		Name:     "medication",
		Path:     "medications",
		Title:    "Medicamentos",
		Singular: "Medicamento",
		New:      func() *Medication { return &Medication{} },
		ID:       func(m *Medication) int64 { return m.ID },
		SetID:    func(m *Medication, id int64) { m.ID = id },
		Label:    (*Medication).String,
		Pipeline: MedicationPipeline(),
		Columns: []crud.Column[Medication]{
			{Label: "Nombre", Value: func(m *Medication) any { return m.Name }},
			{Label: "Laboratorio", Value: func(m *Medication) any { return m.Laboratory }},
			{Label: "Stock", Value: func(m *Medication) any { return m.Stock }},
			{Label: "Precio unitario", Value: func(m *Medication) any { return m.UnitPrice }},
		},
		Fields: []crud.Field{
			{Name: "name", Label: "Nombre", Kind: crud.KindText, Required: true, MaxLength: 100},
			{Name: "laboratory", Label: "Laboratorio", Kind: crud.KindText, Required: true, MaxLength: 100},
			{Name: "stock", Label: "Stock", Kind: crud.KindInt, Required: true},
			{Name: "unit_price", Label: "Precio unitario", Kind: crud.KindDecimal, Required: true},
		},
	}
}

// PrescriptionDescriptor describes prescriptions; consultations and
// medications feed the reference selects.
func PrescriptionDescriptor(consultations crud.Resource[consultation.Consultation], medications crud.Resource[Medication]) *crud.Descriptor[Prescription] {
	return &crud.Descriptor[Prescription]{
		Name:     "prescription",
		Path:     "prescriptions",
		Title:    "Recetas",
		Singular: "Receta",
		New:      func() *Prescription { return &Prescription{} },
		ID:       func(p *Prescription) int64 { return p.ID },
		SetID:    func(p *Prescription, id int64) { p.ID = id },
		Label:    (*Prescription).String,
		Pipeline: PrescriptionPipeline(),
		Columns: []crud.Column[Prescription]{
			{Label: "Consulta", Value: func(p *Prescription) any { return p.ConsultationID }},
			{Label: "Paciente", Value: func(p *Prescription) any { return p.PatientFullName }},
			{Label: "Medicamento", Value: func(p *Prescription) any { return p.MedicationName }},
			{Label: "Dosis", Value: func(p *Prescription) any { return p.Dosage }},
			{Label: "Frecuencia", Value: func(p *Prescription) any { return p.Frequency }},
			{Label: "Duración", Value: func(p *Prescription) any { return p.Duration }},
		},
		Fields: []crud.Field{
			{Name: "consultation", Label: "Consulta", Kind: crud.KindRef, Required: true,
				Choices: crud.RefChoices(consultations, func(c *consultation.Consultation) int64 { return c.ID }, (*consultation.Consultation).String)},
			{Name: "medication", Label: "Medicamento", Kind: crud.KindRef, Required: true,
				Choices: crud.RefChoices(medications, func(m *Medication) int64 { return m.ID }, (*Medication).String)},
			{Name: "dosage", Label: "Dosis", Kind: crud.KindText, Required: true, MaxLength: 150},
			{Name: "frequency", Label: "Frecuencia", Kind: crud.KindText, Required: true, MaxLength: 150},
			{Name: "duration", Label: "Duración", Kind: crud.KindText, Required: true, MaxLength: 100},
		},
	}
}

type Handler struct {
	medications   *MedicationService
	prescriptions *PrescriptionService
	consultations crud.Resource[consultation.Consultation]
	pub           events.Publisher
}

func NewHandler(medications *MedicationService, prescriptions *PrescriptionService, consultations crud.Resource[consultation.Consultation], pub events.Publisher) *Handler {
	return &Handler{medications: medications, prescriptions: prescriptions, consultations: consultations, pub: pub}
}

func (h *Handler) RegisterRoutes(api, site *echo.Group, ui *web.UI, docs *openapi.Generator) {
	medicationDesc := MedicationDescriptor()
	medications := crud.WithEvents[Medication](h.medications, h.pub, medicationDesc.Name, medicationDesc.ID)
	prescriptionDesc := PrescriptionDescriptor(h.consultations, medications)
	prescriptions := crud.WithEvents[Prescription](h.prescriptions, h.pub, prescriptionDesc.Name, prescriptionDesc.ID)

	crud.RegisterAPI(api, medicationDesc, medications)
	crud.RegisterAPI(api, prescriptionDesc, prescriptions)
	api.GET("/consultations/:id/prescriptions", crud.ListHandler(prescriptionDesc, func(c echo.Context) ([]*Prescription, error) {
		id, err := crud.ParseID(c.Param("id"))
		if err != nil {
			return nil, err
		}
		recs, err := h.prescriptions.ListByConsultation(c.Request().Context(), id)
		if err != nil {
			return nil, crud.HTTPError("consultation", err)
		}
		return recs, nil
	}))

	web.Register(ui, site, medicationDesc, medications)
	web.Register(ui, site, prescriptionDesc, prescriptions)

	openapi.Add(docs, medicationDesc)
	openapi.Add(docs, prescriptionDesc)
	openapi.AddListing(docs, "/consultations/{id}/prescriptions", "consultations", prescriptionDesc)
}
