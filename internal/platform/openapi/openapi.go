// Package openapi builds an OpenAPI 3.0 document from the registered entity
// descriptors.
package openapi

import (
	"math"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/listing"
)

// Generator collects entity collections and renders the document.
type Generator struct {
	title   string
	version string
	baseURL string

	collections []collection
	schemas     map[string]map[string]interface{}
}

type collection struct {
	path       string
	tag        string
	schemaName string
	params     []string
	sortFields []string
	// item is false for nested read-only listings.
	item bool
}

// NewGenerator creates a generator. baseURL is the server URL written into the
// document, e.g. "/api/v1".
func NewGenerator(title, version, baseURL string) *Generator {
	return &Generator{
		title:   title,
		version: version,
		baseURL: baseURL,
		schemas: make(map[string]map[string]interface{}),
	}
}

// Add registers the collection and item paths of one entity.
func Add[T any](g *Generator, d *crud.Descriptor[T]) {
	name := schemaName(d.Name)
	g.schemas[name] = objectSchema(reflect.TypeOf(d.New()).Elem())
	g.collections = append(g.collections, collection{
		path:       "/" + d.Path,
		tag:        d.Path,
		schemaName: name,
		params:     d.Pipeline.Params(),
		sortFields: d.Pipeline.SortFields(),
		item:       true,
	})
}

// AddListing registers a read-only nested collection such as
// "/consultations/{id}/treatments" that lists records of d.
func AddListing[T any](g *Generator, path, tag string, d *crud.Descriptor[T]) {
	name := schemaName(d.Name)
	if _, ok := g.schemas[name]; !ok {
		g.schemas[name] = objectSchema(reflect.TypeOf(d.New()).Elem())
	}
	g.collections = append(g.collections, collection{
		path:       path,
		tag:        tag,
		schemaName: name,
		params:     d.Pipeline.Params(),
		sortFields: d.Pipeline.SortFields(),
	})
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	paths := make(map[string]interface{})
	for _, c := range g.collections {
		ref := "#/components/schemas/" + c.schemaName
		list := map[string]interface{}{
			"summary":     "List " + c.tag,
			"operationId": operationID("list", c.path),
			"tags":        []string{c.tag},
			"parameters":  g.listParameters(c),
			"responses": map[string]interface{}{
				"200": jsonResponse("Page of records", map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"data":     map[string]interface{}{"type": "array", "items": map[string]interface{}{"$ref": ref}},
						"total":    map[string]interface{}{"type": "integer"},
						"limit":    map[string]interface{}{"type": "integer"},
						"offset":   map[string]interface{}{"type": "integer"},
						"has_more": map[string]interface{}{"type": "boolean"},
						"next":     map[string]interface{}{"type": "string"},
						"previous": map[string]interface{}{"type": "string"},
					},
				}),
			},
		}
		if nestedID(c.path) {
			list["parameters"] = append([]map[string]interface{}{idParameter()}, g.listParameters(c)...)
			list["responses"].(map[string]interface{})["404"] = errorResponse("Parent not found")
		}

		if !c.item {
			paths[c.path] = map[string]interface{}{"get": list}
			continue
		}

		paths[c.path] = map[string]interface{}{
			"get": list,
			"post": map[string]interface{}{
				"summary":     "Create " + c.schemaName,
				"operationId": operationID("create", c.path),
				"tags":        []string{c.tag},
				"requestBody": requestBody(ref),
				"responses": map[string]interface{}{
					"201": jsonResponse("Created", map[string]interface{}{"$ref": ref}),
					"400": errorResponse("Invalid record"),
					"409": errorResponse("Conflicts with an existing record"),
				},
			},
		}
		paths[c.path+"/export.xlsx"] = map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Export " + c.tag + " to a spreadsheet",
				"operationId": operationID("export", c.path),
				"tags":        []string{c.tag},
				"parameters":  g.listParameters(c),
				"responses": map[string]interface{}{
					"200": map[string]interface{}{
						"description": "Spreadsheet",
						"content": map[string]interface{}{
							crud.XLSXContentType: map[string]interface{}{
								"schema": map[string]interface{}{"type": "string", "format": "binary"},
							},
						},
					},
				},
			},
		}
		paths[c.path+"/{id}"] = map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Read " + c.schemaName,
				"operationId": operationID("read", c.path),
				"tags":        []string{c.tag},
				"parameters":  []map[string]interface{}{idParameter()},
				"responses": map[string]interface{}{
					"200": jsonResponse("Success", map[string]interface{}{"$ref": ref}),
					"404": errorResponse("Not found"),
				},
			},
			"put": map[string]interface{}{
				"summary":     "Replace " + c.schemaName,
				"operationId": operationID("update", c.path),
				"tags":        []string{c.tag},
				"parameters":  []map[string]interface{}{idParameter()},
				"requestBody": requestBody(ref),
				"responses": map[string]interface{}{
					"200": jsonResponse("Updated", map[string]interface{}{"$ref": ref}),
					"400": errorResponse("Invalid record"),
					"404": errorResponse("Not found"),
					"409": errorResponse("Conflicts with an existing record"),
				},
			},
			"delete": map[string]interface{}{
				"summary":     "Delete " + c.schemaName,
				"operationId": operationID("delete", c.path),
				"tags":        []string{c.tag},
				"parameters":  []map[string]interface{}{idParameter()},
				"responses": map[string]interface{}{
					"204": map[string]interface{}{"description": "Deleted"},
					"404": errorResponse("Not found"),
					"409": errorResponse("Still referenced by other records"),
				},
			},
		}
	}

	schemas := make(map[string]interface{}, len(g.schemas)+1)
	for name, s := range g.schemas {
		schemas[name] = s
	}
	schemas["Error"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"message": map[string]interface{}{"type": "string"},
			"fields": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": map[string]interface{}{"type": "string"},
			},
		},
		"required": []string{"message"},
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   g.title,
			"version": g.version,
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": schemas,
		},
	}
}

// listParameters builds the query parameters of a list operation: the
// pipeline's filters, the ordering expression and pagination.
func (g *Generator) listParameters(c collection) []map[string]interface{} {
	params := lo.Map(c.params, func(name string, _ int) map[string]interface{} {
		return map[string]interface{}{
			"name":   name,
			"in":     "query",
			"schema": map[string]interface{}{"type": "string"},
		}
	})
	ordering := map[string]interface{}{
		"name":        listing.OrderingParam,
		"in":          "query",
		"schema":      map[string]interface{}{"type": "string"},
		"description": "Comma-separated fields, prefix with - for descending",
	}
	if len(c.sortFields) > 0 {
		ordering["description"] = ordering["description"].(string) + ": " + strings.Join(c.sortFields, ", ")
	}
	return append(params,
		ordering,
		map[string]interface{}{"name": "limit", "in": "query", "description": "Page size; omit to receive every matching record", "schema": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 100}},
		map[string]interface{}{"name": "offset", "in": "query", "schema": map[string]interface{}{"type": "integer", "minimum": 0}},
	)
}

func idParameter() map[string]interface{} {
	return map[string]interface{}{
		"name": "id", "in": "path", "required": true,
		"schema": map[string]interface{}{"type": "integer", "format": "int64"},
	}
}

func requestBody(ref string) map[string]interface{} {
	return map[string]interface{}{
		"required": true,
		"content": map[string]interface{}{
			echo.MIMEApplicationJSON: map[string]interface{}{
				"schema": map[string]interface{}{"$ref": ref},
			},
		},
	}
}

func jsonResponse(description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			echo.MIMEApplicationJSON: map[string]interface{}{"schema": schema},
		},
	}
}

func errorResponse(description string) map[string]interface{} {
	return jsonResponse(description, map[string]interface{}{"$ref": "#/components/schemas/Error"})
}

var (
	timeType = reflect.TypeOf(time.Time{})
	dateType = reflect.TypeOf(pgtype.Date{})
)

// objectSchema describes a record type from its JSON and validate tags.
func objectSchema(t reflect.Type) map[string]interface{} {
	props := make(map[string]interface{})
	var required []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}

		s := typeSchema(f.Type)
		rules := strings.Split(f.Tag.Get("validate"), ",")
		for _, rule := range rules {
			key, param, _ := strings.Cut(rule, "=")
			switch key {
			case "required":
				if f.Type.Kind() != reflect.Bool {
					required = append(required, name)
				}
			case "max":
				if n, err := strconv.Atoi(param); err == nil && s["type"] == "string" {
					s["maxLength"] = n
				}
			case "gte", "lte":
				if n, err := strconv.ParseFloat(param, 64); err == nil && s["type"] != "string" {
					s[map[string]string{"gte": "minimum", "lte": "maximum"}[key]] = n
				}
			case "decimal":
				if _, scale, ok := strings.Cut(param, ":"); ok {
					if d, err := strconv.Atoi(scale); err == nil {
						s["multipleOf"] = math.Pow10(-d)
					}
				}
			case "email":
				s["format"] = "email"
			case "oneof":
				s["enum"] = strings.Fields(param)
			}
		}
		// Display fields carry omitempty and no rules; the server fills them in.
		if name == "id" || (strings.Contains(opts, "omitempty") && f.Tag.Get("validate") == "") {
			s["readOnly"] = true
		}
		props[name] = s
	}
	sort.Strings(required)
	out := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func typeSchema(t reflect.Type) map[string]interface{} {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}
	var s map[string]interface{}
	switch {
	case t == timeType:
		s = map[string]interface{}{"type": "string", "format": "date-time"}
	case t == dateType:
		s = map[string]interface{}{"type": "string", "format": "date"}
	case t.Kind() == reflect.String:
		s = map[string]interface{}{"type": "string"}
	case t.Kind() == reflect.Bool:
		s = map[string]interface{}{"type": "boolean"}
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Uint64:
		s = map[string]interface{}{"type": "integer"}
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		s = map[string]interface{}{"type": "number"}
	default:
		s = map[string]interface{}{"type": "object"}
	}
	if nullable {
		s["nullable"] = true
	}
	return s
}

// schemaName turns "medical_specialty" into "MedicalSpecialty".
func schemaName(entity string) string {
	parts := strings.Split(entity, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

// operationID turns ("list", "/consultations/{id}/treatments") into
// "listConsultationsIdTreatments".
func operationID(verb, path string) string {
	var b strings.Builder
	b.WriteString(verb)
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		b.WriteString(schemaName(seg))
	}
	return b.String()
}

func nestedID(path string) bool {
	return strings.Contains(path, "{id}")
}

// RegisterRoutes serves the document at GET /schema.
func (g *Generator) RegisterRoutes(apiGroup *echo.Group) {
	apiGroup.GET("/schema", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
}
