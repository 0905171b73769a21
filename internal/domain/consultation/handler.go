package consultation

import (
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/Lucklimp/eva-2/internal/domain/identity"
	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/events"
	"github.com/Lucklimp/eva-2/internal/platform/openapi"
	"github.com/Lucklimp/eva-2/internal/platform/web"
)

// ConsultationDescriptor describes consultations; patients and doctors feed the
// reference selects. consulted_at is not editable.
func ConsultationDescriptor(patients crud.Resource[identity.Patient], doctors crud.Resource[identity.Doctor]) *crud.Descriptor[Consultation] {
	statusChoices := lo.Map(Statuses, func(s string, _ int) crud.Choice {
		return crud.Choice{Value: s, Label: StatusLabel(s)}
	})
	return &crud.Descriptor[Consultation]{
		Name:     "consultation",
		Path:     "consultations",
		Title:    "Consultas",
		Singular: "Consulta",
		New:      NewConsultation,
		ID:       func(c *Consultation) int64 { return c.ID },
		SetID:    func(c *Consultation, id int64) { c.ID = id },
		Label:    (*Consultation).String,
		Pipeline: ConsultationPipeline(),
		Columns: []crud.Column[Consultation]{
			{Label: "Fecha", Value: func(c *Consultation) any { return c.ConsultedAt }},
			{Label: "Paciente", Value: func(c *Consultation) any { return c.PatientFullName }},
			{Label: "RUT", Value: func(c *Consultation) any { return c.PatientRUT }},
			{Label: "Médico", Value: func(c *Consultation) any { return c.DoctorFullName }},
			{Label: "Motivo", Value: func(c *Consultation) any { return c.Reason }},
			{Label: "Diagnóstico", Value: func(c *Consultation) any { return c.Diagnosis }},
			{Label: "Estado", Value: func(c *Consultation) any { return StatusLabel(c.Status) }},
		},
		Fields: []crud.Field{
			{Name: "patient", Label: "Paciente", Kind: crud.KindRef, Required: true,
				Choices: crud.RefChoices(patients, func(p *identity.Patient) int64 { return p.ID }, (*identity.Patient).String)},
			{Name: "doctor", Label: "Médico", Kind: crud.KindRef, Required: true,
				Choices: crud.RefChoices(doctors, func(d *identity.Doctor) int64 { return d.ID }, (*identity.Doctor).String)},
			{Name: "reason", Label: "Motivo", Kind: crud.KindText, Required: true, MaxLength: 255},
			{Name: "diagnosis", Label: "Diagnóstico", Kind: crud.KindTextarea},
			{Name: "status", Label: "Estado", Kind: crud.KindChoice, Required: true, Choices: crud.StaticChoices(statusChoices...)},
		},
	}
}

func TreatmentDescriptor(consultations crud.Resource[Consultation]) *crud.Descriptor[Treatment] {
	return &crud.Descriptor[Treatment]{
		Name:     "treatment",
		Path:     "treatments",
		Title:    "Tratamientos",
		Singular: "Tratamiento",
		New:      func() *Treatment { return &Treatment{} },
		ID:       func(t *Treatment) int64 { return t.ID },
		SetID:    func(t *Treatment, id int64) { t.ID = id },
		Label:    (*Treatment).String,
		Pipeline: TreatmentPipeline(),
		Columns: []crud.Column[Treatment]{
			{Label: "Consulta", Value: func(t *Treatment) any { return t.ConsultationID }},
			{Label: "Descripción", Value: func(t *Treatment) any { return t.Description }},
			{Label: "Duración (días)", Value: func(t *Treatment) any { return t.DurationDays }},
			{Label: "Observaciones", Value: func(t *Treatment) any { return t.Notes }},
		},
		Fields: []crud.Field{
			{Name: "consultation", Label: "Consulta", Kind: crud.KindRef, Required: true,
				Choices: crud.RefChoices(consultations, func(c *Consultation) int64 { return c.ID }, (*Consultation).String)},
			{Name: "description", Label: "Descripción", Kind: crud.KindTextarea, Required: true},
			{Name: "duration_days", Label: "Duración (días)", Kind: crud.KindInt, Required: true},
			{Name: "notes", Label: "Observaciones", Kind: crud.KindTextarea},
		},
	}
}

type Handler struct {
	consultations *ConsultationService
	treatments    *TreatmentService
	patients      crud.Resource[identity.Patient]
	doctors       crud.Resource[identity.Doctor]
	pub           events.Publisher
}

func NewHandler(consultations *ConsultationService, treatments *TreatmentService, patients crud.Resource[identity.Patient], doctors crud.Resource[identity.Doctor], pub events.Publisher) *Handler {
	return &Handler{consultations: consultations, treatments: treatments, patients: patients, doctors: doctors, pub: pub}
}

func (h *Handler) RegisterRoutes(api, site *echo.Group, ui *web.UI, docs *openapi.Generator) {
	consultationDesc := ConsultationDescriptor(h.patients, h.doctors)
	consultations := crud.WithEvents[Consultation](h.consultations, h.pub, consultationDesc.Name, consultationDesc.ID)
	treatmentDesc := TreatmentDescriptor(consultations)
	treatments := crud.WithEvents[Treatment](h.treatments, h.pub, treatmentDesc.Name, treatmentDesc.ID)

	crud.RegisterAPI(api, consultationDesc, consultations)
	crud.RegisterAPI(api, treatmentDesc, treatments)
	api.GET("/patients/:id/consultations", crud.ListHandler(consultationDesc, func(c echo.Context) ([]*Consultation, error) {
		id, err := crud.ParseID(c.Param("id"))
		if err != nil {
			return nil, err
		}
		recs, err := h.consultations.ListByPatient(c.Request().Context(), id)
		if err != nil {
			return nil, crud.HTTPError("patient", err)
		}
		return recs, nil
	}))
	api.GET("/consultations/:id/treatments", crud.ListHandler(treatmentDesc, func(c echo.Context) ([]*Treatment, error) {
		id, err := crud.ParseID(c.Param("id"))
		if err != nil {
			return nil, err
		}
		recs, err := h.treatments.ListByConsultation(c.Request().Context(), id)
		if err != nil {
			return nil, crud.HTTPError("consultation", err)
		}
		return recs, nil
	}))

	web.Register(ui, site, consultationDesc, consultations)
	web.Register(ui, site, treatmentDesc, treatments)

	openapi.Add(docs, consultationDesc)
	openapi.Add(docs, treatmentDesc)
	openapi.AddListing(docs, "/patients/{id}/consultations", "patients", consultationDesc)
	openapi.AddListing(docs, "/consultations/{id}/treatments", "consultations", treatmentDesc)
}
