package identity

import (
	"time"

	"github.com/samber/lo"

	"github.com/Lucklimp/eva-2/internal/platform/listing"
)

// PatientPipeline filters by rut, by name against the full name and by the
// active flag.
func PatientPipeline() *listing.Pipeline[*Patient] {
	return listing.New(
		[]listing.Filter[*Patient]{
			listing.Contains("rut", func(p *Patient) string { return p.RUT }),
			listing.Contains("name", (*Patient).FullName),
			listing.EqualsBool("active", func(p *Patient) bool { return p.Active }),
		},
		[]listing.SortKey[*Patient]{
			listing.SortInt("id", func(p *Patient) int64 { return p.ID }),
			listing.SortText("rut", func(p *Patient) string { return p.RUT }),
			listing.SortText("name", func(p *Patient) string { return p.Name }, "nombre"),
			listing.SortText("surname", func(p *Patient) string { return p.Surname }, "apellido"),
			listing.SortTime("birth_date", func(p *Patient) time.Time { return p.BirthDate.Time }, "fecha_nacimiento"),
			listing.SortText("blood_type", func(p *Patient) string { return p.BloodType }, "tipo_sangre"),
			listing.SortText("email", func(p *Patient) string { return p.Email }, "correo"),
			listing.SortText("phone", func(p *Patient) string { return lo.FromPtr(p.Phone) }, "telefono"),
			listing.SortText("address", func(p *Patient) string { return lo.FromPtr(p.Address) }, "direccion"),
			listing.SortBool("active", func(p *Patient) bool { return p.Active }, "activo"),
		},
		"",
	)
}

// DoctorPipeline is PatientPipeline plus the specialty filter.
func DoctorPipeline() *listing.Pipeline[*Doctor] {
	return listing.New(
		[]listing.Filter[*Doctor]{
			listing.Contains("rut", func(d *Doctor) string { return d.RUT }),
			listing.Contains("name", (*Doctor).FullName),
			listing.EqualsID("specialty", func(d *Doctor) int64 { return d.SpecialtyID }),
			listing.EqualsBool("active", func(d *Doctor) bool { return d.Active }),
		},
		[]listing.SortKey[*Doctor]{
			listing.SortInt("id", func(d *Doctor) int64 { return d.ID }),
			listing.SortText("rut", func(d *Doctor) string { return d.RUT }),
			listing.SortText("name", func(d *Doctor) string { return d.Name }, "nombre"),
			listing.SortText("surname", func(d *Doctor) string { return d.Surname }, "apellido"),
			listing.SortText("email", func(d *Doctor) string { return d.Email }, "correo"),
			listing.SortText("phone", func(d *Doctor) string { return lo.FromPtr(d.Phone) }, "telefono"),
			listing.SortBool("active", func(d *Doctor) bool { return d.Active }, "activo"),
			listing.SortInt("specialty", func(d *Doctor) int64 { return d.SpecialtyID }, "especialidad"),
			listing.SortText("specialty_name", func(d *Doctor) string { return d.SpecialtyName }, "especialidad_nombre"),
		},
		"",
	)
}
