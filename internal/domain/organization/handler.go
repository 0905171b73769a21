package organization

import (
	"github.com/labstack/echo/v4"

	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/events"
	"github.com/Lucklimp/eva-2/internal/platform/openapi"
	"github.com/Lucklimp/eva-2/internal/platform/web"
)

func DepartmentDescriptor() *crud.Descriptor[Department] {
	return &crud.Descriptor[Department]{
		Name:     "department",
		Path:     "departments",
		Title:    "Departamentos",
		Singular: "Departamento",
		New:      func() *Department { return &Department{} },
		ID:       func(d *Department) int64 { return d.ID },
		SetID:    func(d *Department, id int64) { d.ID = id },
		Label:    (*Department).String,
		Pipeline: DepartmentPipeline(),
		Columns: []crud.Column[Department]{
			{Label: "Nombre", Value: func(d *Department) any { return d.Name }},
			{Label: "Descripción", Value: func(d *Department) any { return d.Description }},
		},
		Fields: []crud.Field{
			{Name: "name", Label: "Nombre", Kind: crud.KindText, Required: true, MaxLength: 100},
			{Name: "description", Label: "Descripción", Kind: crud.KindTextarea},
		},
	}
}

// SpecialtyDescriptor describes specialties; departments feeds the department select.
func SpecialtyDescriptor(departments crud.Resource[Department]) *crud.Descriptor[Specialty] {
	return &crud.Descriptor[Specialty]{
		Name:     "specialty",
		Path:     "specialties",
		Title:    "Especialidades",
		Singular: "Especialidad",
		New:      func() *Specialty { return &Specialty{} },
		ID:       func(s *Specialty) int64 { return s.ID },
		SetID:    func(s *Specialty, id int64) { s.ID = id },
		Label:    (*Specialty).String,
		Pipeline: SpecialtyPipeline(),
		Columns: []crud.Column[Specialty]{
			{Label: "Nombre", Value: func(s *Specialty) any { return s.Name }},
			{Label: "Descripción", Value: func(s *Specialty) any { return s.Description }},
			{Label: "Departamento", Value: func(s *Specialty) any { return s.DepartmentName }},
		},
		Fields: []crud.Field{
			{Name: "name", Label: "Nombre", Kind: crud.KindText, Required: true, MaxLength: 100},
			{Name: "description", Label: "Descripción", Kind: crud.KindTextarea},
			{Name: "department", Label: "Departamento", Kind: crud.KindRef,
				Choices: crud.RefChoices(departments, func(d *Department) int64 { return d.ID }, (*Department).String)},
		},
	}
}

type Handler struct {
	departments *DepartmentService
	specialties *SpecialtyService
	pub         events.Publisher
}

func NewHandler(departments *DepartmentService, specialties *SpecialtyService, pub events.Publisher) *Handler {
	return &Handler{departments: departments, specialties: specialties, pub: pub}
}

// RegisterRoutes mounts the JSON API on api, the HTML pages on site and
// documents both entities in docs.
func (h *Handler) RegisterRoutes(api, site *echo.Group, ui *web.UI, docs *openapi.Generator) {
	deptDesc := DepartmentDescriptor()
	specDesc := SpecialtyDescriptor(h.departments)

	departments := crud.WithEvents[Department](h.departments, h.pub, deptDesc.Name, deptDesc.ID)
	specialties := crud.WithEvents[Specialty](h.specialties, h.pub, specDesc.Name, specDesc.ID)

	crud.RegisterAPI(api, deptDesc, departments)
	crud.RegisterAPI(api, specDesc, specialties)
	api.GET("/departments/:id/specialties", crud.ListHandler(specDesc, func(c echo.Context) ([]*Specialty, error) {
		id, err := crud.ParseID(c.Param("id"))
		if err != nil {
			return nil, err
		}
		recs, err := h.specialties.ListByDepartment(c.Request().Context(), id)
		if err != nil {
			return nil, crud.HTTPError(deptDesc.Name, err)
		}
		return recs, nil
	}))

	web.Register(ui, site, deptDesc, departments)
	web.Register(ui, site, specDesc, specialties)

	openapi.Add(docs, deptDesc)
	openapi.Add(docs, specDesc)
	openapi.AddListing(docs, "/departments/{id}/specialties", deptDesc.Path, specDesc)
}
