// Package crud serves create, read, update, delete and filtered listing for any
// entity described by a Descriptor.
package crud

import (
	"context"
	"strconv"

	"github.com/samber/lo"

	"github.com/Lucklimp/eva-2/internal/platform/listing"
)

// Resource is the storage-facing contract every entity service satisfies.
type Resource[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, rec *T) error
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id int64) error
}

// FieldKind tells the HTML form how to render and decode a field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindEmail    FieldKind = "email"
	KindInt      FieldKind = "int"
	KindDecimal  FieldKind = "decimal"
	KindBool     FieldKind = "bool"
	KindDate     FieldKind = "date"
	KindRef      FieldKind = "ref"
	KindChoice   FieldKind = "choice"
)

// Choice is one option of a reference or choice field.
type Choice struct {
	Value string
	Label string
}

// Field is one editable attribute, named by its JSON key.
type Field struct {
	Name      string
	Label     string
	Kind      FieldKind
	Required  bool
	MaxLength int
	Choices   func(ctx context.Context) ([]Choice, error)
}

// Column is one column of the HTML table and the spreadsheet export.
type Column[T any] struct {
	Label string
	Value func(rec *T) any
}

// Descriptor carries everything the generic handlers need to know about an entity.
type Descriptor[T any] struct {
	// Name is the singular machine name used in events and the API schema.
	Name string
	// Path is the URL segment, e.g. "patients".
	Path string
	// Title and Singular are display names for the HTML pages.
	Title    string
	Singular string

	// New returns an empty record carrying field defaults.
	New   func() *T
	ID    func(rec *T) int64
	SetID func(rec *T, id int64)
	// Label names a record in select boxes and confirmation pages.
	Label func(rec *T) string

	Pipeline *listing.Pipeline[*T]
	Columns  []Column[T]
	Fields   []Field
}

// RefChoices lists the records of a related resource as select options.
func RefChoices[U any](res Resource[U], id func(*U) int64, label func(*U) string) func(ctx context.Context) ([]Choice, error) {
	return func(ctx context.Context) ([]Choice, error) {
		recs, err := res.List(ctx)
		if err != nil {
			return nil, err
		}
		return lo.Map(recs, func(rec *U, _ int) Choice {
			return Choice{Value: strconv.FormatInt(id(rec), 10), Label: label(rec)}
		}), nil
	}
}

// StaticChoices returns a fixed option list.
func StaticChoices(choices ...Choice) func(ctx context.Context) ([]Choice, error) {
	return func(context.Context) ([]Choice, error) {
		return choices, nil
	}
}
