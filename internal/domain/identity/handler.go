package identity

import (
	"github.com/labstack/echo/v4"

	"github.com/Lucklimp/eva-2/internal/domain/organization"
	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/events"
	"github.com/Lucklimp/eva-2/internal/platform/openapi"
	"github.com/Lucklimp/eva-2/internal/platform/web"
)

func PatientDescriptor() *crud.Descriptor[Patient] {
	return &crud.Descriptor[Patient]{
		Name:     "patient",
		Path:     "patients",
		Title:    "Pacientes",
		Singular: "Paciente",
		New:      NewPatient,
		ID:       func(p *Patient) int64 { return p.ID },
		SetID:    func(p *Patient, id int64) { p.ID = id },
		Label:    (*Patient).String,
		Pipeline: PatientPipeline(),
		Columns: []crud.Column[Patient]{
			{Label: "RUT", Value: func(p *Patient) any { return p.RUT }},
			{Label: "Nombre", Value: func(p *Patient) any { return p.FullName() }},
			{Label: "Fecha de nacimiento", Value: func(p *Patient) any { return p.BirthDate.Time.Format("2006-01-02") }},
			{Label: "Tipo de sangre", Value: func(p *Patient) any { return p.BloodType }},
			{Label: "Correo", Value: func(p *Patient) any { return p.Email }},
			{Label: "Teléfono", Value: func(p *Patient) any { return p.Phone }},
			{Label: "Activo", Value: func(p *Patient) any { return p.Active }},
		},
		Fields: []crud.Field{
			{Name: "rut", Label: "RUT", Kind: crud.KindText, Required: true, MaxLength: 12},
			{Name: "name", Label: "Nombre", Kind: crud.KindText, Required: true, MaxLength: 100},
			{Name: "surname", Label: "Apellido", Kind: crud.KindText, Required: true, MaxLength: 100},
			{Name: "birth_date", Label: "Fecha de nacimiento", Kind: crud.KindDate, Required: true},
			{Name: "blood_type", Label: "Tipo de sangre (ej: A+, O-)", Kind: crud.KindText, Required: true, MaxLength: 5},
			{Name: "email", Label: "Correo", Kind: crud.KindEmail, Required: true, MaxLength: 254},
			{Name: "phone", Label: "Teléfono", Kind: crud.KindText, MaxLength: 15},
			{Name: "address", Label: "Dirección", Kind: crud.KindText, MaxLength: 255},
			{Name: "active", Label: "Activo", Kind: crud.KindBool},
		},
	}
}

// DoctorDescriptor describes doctors; specialties feeds the specialty select.
func DoctorDescriptor(specialties crud.Resource[organization.Specialty]) *crud.Descriptor[Doctor] {
	return &crud.Descriptor[Doctor]{
		Name:     "doctor",
		Path:     "doctors",
		Title:    "Médicos",
		Singular: "Médico",
		New:      NewDoctor,
		ID:       func(d *Doctor) int64 { return d.ID },
		SetID:    func(d *Doctor, id int64) { d.ID = id },
		Label:    (*Doctor).String,
		Pipeline: DoctorPipeline(),
		Columns: []crud.Column[Doctor]{
			{Label: "RUT", Value: func(d *Doctor) any { return d.RUT }},
			{Label: "Nombre", Value: func(d *Doctor) any { return d.FullName() }},
			{Label: "Especialidad", Value: func(d *Doctor) any { return d.SpecialtyName }},
			{Label: "Correo", Value: func(d *Doctor) any { return d.Email }},
			{Label: "Teléfono", Value: func(d *Doctor) any { return d.Phone }},
			{Label: "Activo", Value: func(d *Doctor) any { return d.Active }},
		},
		Fields: []crud.Field{
			{Name: "rut", Label: "RUT", Kind: crud.KindText, Required: true, MaxLength: 12},
			{Name: "name", Label: "Nombre", Kind: crud.KindText, Required: true, MaxLength: 100},
			{Name: "surname", Label: "Apellido", Kind: crud.KindText, Required: true, MaxLength: 100},
			{Name: "email", Label: "Correo", Kind: crud.KindEmail, Required: true, MaxLength: 254},
			{Name: "phone", Label: "Teléfono", Kind: crud.KindText, MaxLength: 15},
			{Name: "active", Label: "Activo", Kind: crud.KindBool},
			{Name: "specialty", Label: "Especialidad", Kind: crud.KindRef, Required: true,
				Choices: crud.RefChoices(specialties, func(s *organization.Specialty) int64 { return s.ID }, (*organization.Specialty).String)},
		},
	}
}

type Handler struct {
	patients    *PatientService
	doctors     *DoctorService
	specialties crud.Resource[organization.Specialty]
	pub         events.Publisher
}

func NewHandler(patients *PatientService, doctors *DoctorService, specialties crud.Resource[organization.Specialty], pub events.Publisher) *Handler {
	return &Handler{patients: patients, doctors: doctors, specialties: specialties, pub: pub}
}

func (h *Handler) RegisterRoutes(api, site *echo.Group, ui *web.UI, docs *openapi.Generator) {
	patientDesc := PatientDescriptor()
	doctorDesc := DoctorDescriptor(h.specialties)

	patients := crud.WithEvents[Patient](h.patients, h.pub, patientDesc.Name, patientDesc.ID)
	doctors := crud.WithEvents[Doctor](h.doctors, h.pub, doctorDesc.Name, doctorDesc.ID)

	crud.RegisterAPI(api, patientDesc, patients)
	crud.RegisterAPI(api, doctorDesc, doctors)
	api.GET("/specialties/:id/doctors", crud.ListHandler(doctorDesc, func(c echo.Context) ([]*Doctor, error) {
		id, err := crud.ParseID(c.Param("id"))
		if err != nil {
			return nil, err
		}
		recs, err := h.doctors.ListBySpecialty(c.Request().Context(), id)
		if err != nil {
			return nil, crud.HTTPError("specialty", err)
		}
		return recs, nil
	}))

	web.Register(ui, site, patientDesc, patients)
	web.Register(ui, site, doctorDesc, doctors)

	openapi.Add(docs, patientDesc)
	openapi.Add(docs, doctorDesc)
	openapi.AddListing(docs, "/specialties/{id}/doctors", "specialties", doctorDesc)
}
