package crud

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/Lucklimp/eva-2/internal/platform/db"
	"github.com/Lucklimp/eva-2/internal/platform/export"
	"github.com/Lucklimp/eva-2/internal/platform/listing"
	"github.com/Lucklimp/eva-2/internal/platform/validation"
	"github.com/Lucklimp/eva-2/pkg/pagination"
)

// XLSXContentType is the media type of spreadsheet exports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeXLSX is swapped out in tests.
var writeXLSX = export.WriteXLSX

type apiHandler[T any] struct {
	d   *Descriptor[T]
	res Resource[T]
}

// RegisterAPI mounts the JSON endpoints of one entity on g.
func RegisterAPI[T any](g *echo.Group, d *Descriptor[T], res Resource[T]) {
	h := &apiHandler[T]{d: d, res: res}
	base := "/" + d.Path
	g.GET(base, h.list)
	g.GET(base+"/export.xlsx", h.export)
	g.POST(base, h.create)
	g.GET(base+"/:id", h.get)
	g.PUT(base+"/:id", h.update)
	g.DELETE(base+"/:id", h.delete)
}

func (h *apiHandler[T]) list(c echo.Context) error {
	recs, err := h.res.List(c.Request().Context())
	if err != nil {
		return HTTPError(h.d.Name, err)
	}
	return respondList(c, h.d, recs)
}

// ListHandler serves a collection narrowed by fetch, e.g. the treatments of one
// consultation, through the entity's pipeline and pagination.
func ListHandler[T any](d *Descriptor[T], fetch func(c echo.Context) ([]*T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		recs, err := fetch(c)
		if err != nil {
			return HTTPError(d.Name, err)
		}
		return respondList(c, d, recs)
	}
}

func respondList[T any](c echo.Context, d *Descriptor[T], recs []*T) error {
	filtered := d.Pipeline.Apply(recs, listing.ParamsFromValues(c.QueryParams()))
	pg := pagination.FromContextAll(c, len(filtered))
	page := pagination.Page(filtered, pg)
	resp := pagination.NewResponse(page, len(filtered), pg.Limit, pg.Offset).WithLinks(c.Request().URL)
	return c.JSON(http.StatusOK, resp)
}

func (h *apiHandler[T]) export(c echo.Context) error {
	recs, err := h.res.List(c.Request().Context())
	if err != nil {
		return HTTPError(h.d.Name, err)
	}
	filtered := h.d.Pipeline.Apply(recs, listing.ParamsFromValues(c.QueryParams()))

	table := export.Table{
		Sheet:  h.d.Title,
		Header: append([]string{"ID"}, lo.Map(h.d.Columns, func(col Column[T], _ int) string { return col.Label })...),
	}
	for _, rec := range filtered {
		row := make([]any, 0, len(h.d.Columns)+1)
		row = append(row, h.d.ID(rec))
		for _, col := range h.d.Columns {
			row = append(row, col.Value(rec))
		}
		table.Rows = append(table.Rows, row)
	}

	var buf bytes.Buffer
	if err := writeXLSX(&buf, table); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "export failed").SetInternal(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.xlsx"`, h.d.Path))
	return c.Blob(http.StatusOK, XLSXContentType, buf.Bytes())
}

func (h *apiHandler[T]) get(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	rec, err := h.res.Get(c.Request().Context(), id)
	if err != nil {
		return HTTPError(h.d.Name, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *apiHandler[T]) create(c echo.Context) error {
	rec := h.d.New()
	if err := c.Bind(rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.d.SetID(rec, 0)

	ctx := c.Request().Context()
	if err := h.res.Create(ctx, rec); err != nil {
		return HTTPError(h.d.Name, err)
	}
	// Re-read to pick up server-assigned and joined fields.
	saved, err := h.res.Get(ctx, h.d.ID(rec))
	if err != nil {
		return HTTPError(h.d.Name, err)
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *apiHandler[T]) update(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	rec := h.d.New()
	if err := c.Bind(rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.d.SetID(rec, id)

	ctx := c.Request().Context()
	if err := h.res.Update(ctx, rec); err != nil {
		return HTTPError(h.d.Name, err)
	}
	saved, err := h.res.Get(ctx, id)
	if err != nil {
		return HTTPError(h.d.Name, err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *apiHandler[T]) delete(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.res.Delete(c.Request().Context(), id); err != nil {
		return HTTPError(h.d.Name, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ParseID reads a positive record identifier from a path parameter.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// HTTPError maps service and repository errors onto HTTP responses.
func HTTPError(entity string, err error) error {
	var verr *validation.Error
	var herr *echo.HTTPError
	switch {
	case errors.As(err, &herr):
		return herr
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
			"message": "validation failed",
			"fields":  verr.Fields,
		})
	case errors.Is(err, db.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, entity+" not found")
	case errors.Is(err, db.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, db.ErrProtected):
		return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf("%s cannot be deleted while other records reference it", entity))
	case errors.Is(err, db.ErrInvalidReference), errors.Is(err, db.ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}
