// Package web serves the browsable HTML back office on top of crud descriptors.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Lucklimp/eva-2/internal/platform/crud"
	"github.com/Lucklimp/eva-2/internal/platform/db"
	"github.com/Lucklimp/eva-2/internal/platform/listing"
	"github.com/Lucklimp/eva-2/internal/platform/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageList   = "list"
	pageForm   = "form"
	pageDelete = "delete"
)

// NavItem is one entry of the navigation bar.
type NavItem struct {
	Path  string
	Title string
}

// UI renders the HTML pages and implements echo.Renderer.
type UI struct {
	pages  map[string]*template.Template
	nav    []NavItem
	logger zerolog.Logger
}

// New parses the embedded templates.
func New(logger zerolog.Logger) (*UI, error) {
	u := &UI{pages: make(map[string]*template.Template), logger: logger}
	for _, name := range []string{pageList, pageForm, pageDelete} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		u.pages[name] = t
	}
	return u, nil
}

// Nav returns the registered navigation entries in registration order.
func (u *UI) Nav() []NavItem {
	return u.nav
}

// layout is the data every page receives.
type layout struct {
	Title   string
	Active  string
	Nav     []NavItem
	Content any
}

func (u *UI) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := u.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// RegisterHome redirects the site root to the first registered entity.
func (u *UI) RegisterHome(g *echo.Group) {
	g.GET("/", func(c echo.Context) error {
		target := "/departments/"
		if len(u.nav) > 0 {
			target = "/" + u.nav[0].Path + "/"
		}
		return c.Redirect(http.StatusFound, target)
	})
}

type filterInput struct {
	Name  string
	Value string
}

type sortOption struct {
	Value    string
	Label    string
	Selected bool
}

type tableRow struct {
	ID    int64
	Label string
	Cells []string
}

type listContent struct {
	Path      string
	Singular  string
	Filters   []filterInput
	Ordering  []sortOption
	Columns   []string
	Rows      []tableRow
	Total     int
	ExportURL string
}

type formField struct {
	Name     string
	Label    string
	Kind     string
	Required bool
	Max      int
	Value    string
	Error    string
	Choices  []crud.Choice
}

type formContent struct {
	Path     string
	Singular string
	Action   string
	Editing  bool
	Error    string
	Fields   []formField
	// Other holds errors for attributes the form does not show.
	Other    []string
}

type deleteContent struct {
	Path     string
	Singular string
	Label    string
	Action   string
	Error    string
}

type pages[T any] struct {
	ui  *UI
	d   *crud.Descriptor[T]
	res crud.Resource[T]
}

// Register mounts the list, create, edit and delete pages of one entity on g.
func Register[T any](u *UI, g *echo.Group, d *crud.Descriptor[T], res crud.Resource[T]) {
	u.nav = append(u.nav, NavItem{Path: d.Path, Title: d.Title})
	p := &pages[T]{ui: u, d: d, res: res}
	base := "/" + d.Path
	g.GET(base, func(c echo.Context) error { return c.Redirect(http.StatusMovedPermanently, base+"/") })
	g.GET(base+"/", p.list)
	g.GET(base+"/new", p.newForm)
	g.POST(base+"/new", p.create)
	g.GET(base+"/:id/edit", p.editForm)
	g.POST(base+"/:id/edit", p.update)
	g.GET(base+"/:id/delete", p.confirmDelete)
	g.POST(base+"/:id/delete", p.delete)
}

func (p *pages[T]) page(title string, content any) layout {
	return layout{Title: title, Active: p.d.Path, Nav: p.ui.nav, Content: content}
}

func (p *pages[T]) list(c echo.Context) error {
	recs, err := p.res.List(c.Request().Context())
	if err != nil {
		return crud.HTTPError(p.d.Name, err)
	}
	query := c.QueryParams()
	filtered := p.d.Pipeline.Apply(recs, listing.ParamsFromValues(query))

	content := listContent{
		Path:     p.d.Path,
		Singular: p.d.Singular,
		Total:    len(filtered),
	}
	for _, name := range p.d.Pipeline.Params() {
		content.Filters = append(content.Filters, filterInput{Name: name, Value: query.Get(name)})
	}
	current := query.Get(listing.OrderingParam)
	content.Ordering = append(content.Ordering, sortOption{Value: "", Label: "(predeterminado)", Selected: current == ""})
	for _, field := range p.d.Pipeline.SortFields() {
		content.Ordering = append(content.Ordering,
			sortOption{Value: field, Label: field + " ↑", Selected: current == field},
			sortOption{Value: "-" + field, Label: field + " ↓", Selected: current == "-"+field},
		)
	}
	for _, col := range p.d.Columns {
		content.Columns = append(content.Columns, col.Label)
	}
	for _, rec := range filtered {
		row := tableRow{ID: p.d.ID(rec), Label: p.d.Label(rec)}
		for _, col := range p.d.Columns {
			row.Cells = append(row.Cells, formatCell(col.Value(rec)))
		}
		content.Rows = append(content.Rows, row)
	}
	exportURL := url.URL{Path: "/api/v1/" + p.d.Path + "/export.xlsx", RawQuery: query.Encode()}
	content.ExportURL = exportURL.String()

	return c.Render(http.StatusOK, pageList, p.page(p.d.Title, content))
}

func (p *pages[T]) formPage(c echo.Context, status int, editing bool, action string, values, errs map[string]string, msg string) error {
	ctx := c.Request().Context()
	content := formContent{
		Path:     p.d.Path,
		Singular: p.d.Singular,
		Action:   action,
		Editing:  editing,
		Error:    msg,
	}
	for _, f := range p.d.Fields {
		ff := formField{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     string(f.Kind),
			Required: f.Required,
			Max:      f.MaxLength,
			Value:    values[f.Name],
			Error:    errs[f.Name],
		}
		if f.Choices != nil {
			choices, err := f.Choices(ctx)
			if err != nil {
				return crud.HTTPError(p.d.Name, err)
			}
			ff.Choices = choices
		}
		content.Fields = append(content.Fields, ff)
	}
	shown := make(map[string]bool, len(p.d.Fields))
	for _, f := range p.d.Fields {
		shown[f.Name] = true
	}
	for _, k := range sortedKeys(errs) {
		if !shown[k] {
			content.Other = append(content.Other, k+" "+errs[k])
		}
	}
	title := "Nuevo registro: " + p.d.Singular
	if editing {
		title = "Editar " + p.d.Singular
	}
	return c.Render(status, pageForm, p.page(title, content))
}

func (p *pages[T]) newForm(c echo.Context) error {
	values, err := recordValues(p.d.New())
	if err != nil {
		return crud.HTTPError(p.d.Name, err)
	}
	return p.formPage(c, http.StatusOK, false, "/"+p.d.Path+"/new", values, nil, "")
}

func (p *pages[T]) create(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	action := "/" + p.d.Path + "/new"

	rec := p.d.New()
	if status, errs, msg := p.save(c, rec, form, func() error {
		p.d.SetID(rec, 0)
		return p.res.Create(c.Request().Context(), rec)
	}); status != 0 {
		return p.formPage(c, status, false, action, postedValues(p.d.Fields, form), errs, msg)
	}
	p.ui.logger.Info().Str("entity", p.d.Name).Int64("id", p.d.ID(rec)).Msg("record created from form")
	return c.Redirect(http.StatusSeeOther, "/"+p.d.Path+"/")
}

func (p *pages[T]) editForm(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	rec, err := p.res.Get(c.Request().Context(), id)
	if err != nil {
		return crud.HTTPError(p.d.Name, err)
	}
	values, err := recordValues(rec)
	if err != nil {
		return crud.HTTPError(p.d.Name, err)
	}
	return p.formPage(c, http.StatusOK, true, fmt.Sprintf("/%s/%d/edit", p.d.Path, id), values, nil, "")
}

func (p *pages[T]) update(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	action := fmt.Sprintf("/%s/%d/edit", p.d.Path, id)

	rec := p.d.New()
	if status, errs, msg := p.save(c, rec, form, func() error {
		p.d.SetID(rec, id)
		return p.res.Update(c.Request().Context(), rec)
	}); status != 0 {
		if status == http.StatusNotFound {
			return echo.NewHTTPError(http.StatusNotFound, p.d.Name+" not found")
		}
		return p.formPage(c, status, true, action, postedValues(p.d.Fields, form), errs, msg)
	}
	return c.Redirect(http.StatusSeeOther, "/"+p.d.Path+"/")
}

// save decodes form into rec and runs write. A zero status means success;
// otherwise the status, field errors and message describe the rejection.
func (p *pages[T]) save(c echo.Context, rec *T, form url.Values, write func() error) (int, map[string]string, string) {
	values, errs := decodeForm(p.d.Fields, form)
	if len(errs) > 0 {
		return http.StatusBadRequest, errs, "Revise los campos marcados."
	}
	if err := fill(rec, values); err != nil {
		return http.StatusBadRequest, nil, err.Error()
	}

	err := write()
	var verr *validation.Error
	switch {
	case err == nil:
		return 0, nil, ""
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Fields, "Revise los campos marcados."
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, nil, ""
	case errors.Is(err, db.ErrConflict):
		return http.StatusConflict, nil, "Ya existe un registro con esos datos: " + err.Error()
	case errors.Is(err, db.ErrInvalidReference), errors.Is(err, db.ErrInvalid):
		return http.StatusBadRequest, nil, err.Error()
	}
	p.ui.logger.Error().Err(err).Str("entity", p.d.Name).Str("request_path", c.Request().URL.Path).Msg("save from form")
	return http.StatusInternalServerError, nil, "No se pudo guardar el registro."
}

func (p *pages[T]) confirmDelete(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	rec, err := p.res.Get(c.Request().Context(), id)
	if err != nil {
		return crud.HTTPError(p.d.Name, err)
	}
	return c.Render(http.StatusOK, pageDelete, p.page("Eliminar "+p.d.Singular, deleteContent{
		Path:     p.d.Path,
		Singular: p.d.Singular,
		Label:    p.d.Label(rec),
		Action:   fmt.Sprintf("/%s/%d/delete", p.d.Path, id),
	}))
}

func (p *pages[T]) delete(c echo.Context) error {
	id, err := crud.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	rec, err := p.res.Get(ctx, id)
	if err != nil {
		return crud.HTTPError(p.d.Name, err)
	}

	if err := p.res.Delete(ctx, id); err != nil {
		if !errors.Is(err, db.ErrProtected) {
			return crud.HTTPError(p.d.Name, err)
		}
		return c.Render(http.StatusConflict, pageDelete, p.page("Eliminar "+p.d.Singular, deleteContent{
			Path:     p.d.Path,
			Singular: p.d.Singular,
			Label:    p.d.Label(rec),
			Action:   fmt.Sprintf("/%s/%d/delete", p.d.Path, id),
			Error:    "No se puede eliminar: otros registros dependen de este.",
		}))
	}
	return c.Redirect(http.StatusSeeOther, "/"+p.d.Path+"/")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
