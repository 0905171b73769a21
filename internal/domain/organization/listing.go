package organization

import (
	"github.com/samber/lo"

	"github.com/Lucklimp/eva-2/internal/platform/listing"
)

// DepartmentPipeline filters departments by name and orders them by name
// unless asked otherwise.
func DepartmentPipeline() *listing.Pipeline[*Department] {
	return listing.New(
		[]listing.Filter[*Department]{
			listing.Contains("name", func(d *Department) string { return d.Name }),
		},
		[]listing.SortKey[*Department]{
			listing.SortInt("id", func(d *Department) int64 { return d.ID }),
			listing.SortText("name", func(d *Department) string { return d.Name }, "nombre"),
			listing.SortText("description", func(d *Department) string { return lo.FromPtr(d.Description) }, "descripcion"),
		},
		"name",
	)
}

func SpecialtyPipeline() *listing.Pipeline[*Specialty] {
	return listing.New(
		[]listing.Filter[*Specialty]{
			listing.Contains("name", func(s *Specialty) string { return s.Name }),
			listing.EqualsOptionalID("department", func(s *Specialty) *int64 { return s.DepartmentID }),
		},
		[]listing.SortKey[*Specialty]{
			listing.SortInt("id", func(s *Specialty) int64 { return s.ID }),
			listing.SortText("name", func(s *Specialty) string { return s.Name }, "nombre"),
			listing.SortText("description", func(s *Specialty) string { return lo.FromPtr(s.Description) }, "descripcion"),
			listing.SortOptionalInt("department", func(s *Specialty) *int64 { return s.DepartmentID }, "departamento"),
			listing.SortText("department_name", func(s *Specialty) string { return s.DepartmentName }, "departamento_nombre"),
		},
		"",
	)
}
