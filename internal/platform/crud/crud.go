// Package crud implements the list/add/update/delete handler quartet shared by
// every hospital resource.
//
// Handlers follow the form-post-redirect pattern: mutations read an
// urlencoded form, run one statement, queue a notice and redirect 302 to the
// resource list. List reads are always filtered by the caller's RowScope.
package crud

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/flash"
	"github.com/hms/hms/internal/platform/form"
	"github.com/hms/hms/internal/platform/view"
)

// Store is the persistence contract of one resource. Update and Delete report
// whether a row was affected; a missing id is not an error.
type Store[T any] interface {
	List(ctx context.Context, scope auth.RowScope) ([]*T, error)
	Create(ctx context.Context, v *T) error
	Update(ctx context.Context, id int64, v *T) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// LookupFunc loads the option lists shown beside a resource list, such as
// department names for doctors.
type LookupFunc func(ctx context.Context, scope auth.RowScope) (map[string]any, error)

// Resource describes one CRUD resource.
type Resource[T any] struct {
	// Name is the URL segment and page name, e.g. "medical_records".
	Name string
	// Label starts every notice, e.g. "Medical record".
	Label string
	Store Store[T]
	// Decode reads a full record from the form. Failures are collected by the
	// reader and checked once.
	Decode func(r *form.Reader) *T
	// DecodeUpdate replaces Decode on update when set.
	DecodeUpdate func(r *form.Reader) *T
	Lookups      LookupFunc
	// AddedNotice overrides "<Label> added successfully!".
	AddedNotice string
}

// ListPage is the data of a resource list page.
type ListPage[T any] struct {
	Rows    []*T           `json:"rows"`
	Lookups map[string]any `json:"lookups,omitempty"`
}

type Handler[T any] struct {
	res    Resource[T]
	logger zerolog.Logger
}

func NewHandler[T any](res Resource[T], logger zerolog.Logger) *Handler[T] {
	return &Handler[T]{
		res:    res,
		logger: logger.With().Str("resource", res.Name).Logger(),
	}
}

// Path returns the list path, e.g. "/departments".
func (h *Handler[T]) Path() string { return "/" + h.res.Name }

// RegisterRoutes mounts the quartet. Reads require a session; writes also
// pass the mutation guard.
func (h *Handler[T]) RegisterRoutes(e *echo.Echo, p *auth.Policy) {
	read, write := p.Read(), p.Write()

	e.GET(h.Path(), h.List, read...)
	e.POST(h.Path()+"/add", h.Add, write...)
	e.POST(h.Path()+"/update/:id", h.Update, write...)
	e.GET(h.Path()+"/delete/:id", h.Delete, write...)
}

func (h *Handler[T]) List(c echo.Context) error {
	ctx := c.Request().Context()
	scope := auth.ScopeFromContext(ctx)

	rows, err := h.res.Store.List(ctx, scope)
	if err != nil {
		h.logger.Error().Err(err).Str("op", "list").Msg("list failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load "+h.res.Name)
	}
	if rows == nil {
		rows = []*T{}
	}

	page := ListPage[T]{Rows: rows}
	if h.res.Lookups != nil {
		page.Lookups, err = h.res.Lookups(ctx, scope)
		if err != nil {
			h.logger.Error().Err(err).Str("op", "lookups").Msg("lookup failed")
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load "+h.res.Name)
		}
	}
	return view.Render(c, h.res.Name, page)
}

func (h *Handler[T]) Add(c echo.Context) error {
	v, err := h.decode(c, h.res.Decode)
	if err != nil {
		return err
	}

	if err := h.res.Store.Create(c.Request().Context(), v); err != nil {
		return h.Failed(c, "add", 0, err)
	}

	msg := h.res.AddedNotice
	if msg == "" {
		msg = h.res.Label + " added successfully!"
	}
	return h.Done(c, msg)
}

func (h *Handler[T]) Update(c echo.Context) error {
	id, err := ParseID(c)
	if err != nil {
		return err
	}
	decode := h.res.Decode
	if h.res.DecodeUpdate != nil {
		decode = h.res.DecodeUpdate
	}
	v, err := h.decode(c, decode)
	if err != nil {
		return err
	}

	ok, err := h.res.Store.Update(c.Request().Context(), id, v)
	if err != nil {
		return h.Failed(c, "update", id, err)
	}
	h.Affected("update", id, ok)
	return h.Done(c, h.res.Label+" updated successfully!")
}

func (h *Handler[T]) Delete(c echo.Context) error {
	id, err := ParseID(c)
	if err != nil {
		return err
	}

	ok, err := h.res.Store.Delete(c.Request().Context(), id)
	if err != nil {
		return h.Failed(c, "delete", id, err)
	}
	h.Affected("delete", id, ok)
	return h.Done(c, h.res.Label+" deleted successfully!")
}

func (h *Handler[T]) decode(c echo.Context, decode func(*form.Reader) *T) (*T, error) {
	r, err := form.FromContext(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}
	v := decode(r)
	if err := r.Err(); err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			h.logger.Debug().Str("field", verr.Field).Msg("validation failed")
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return v, nil
}

// Done queues a success notice and redirects to the list.
func (h *Handler[T]) Done(c echo.Context, msg string) error {
	flash.Add(c, flash.Success, msg)
	return c.Redirect(http.StatusFound, h.Path())
}

// Failed logs a persistence error, queues its sanitized description and
// redirects to the list.
func (h *Handler[T]) Failed(c echo.Context, op string, id int64, err error) error {
	evt := h.logger.Error().Err(err).Str("op", op)
	if id > 0 {
		evt = evt.Int64("id", id)
	}
	evt.Msg("statement failed")
	flash.Add(c, flash.Danger, "Error: "+db.Describe(err))
	return c.Redirect(http.StatusFound, h.Path())
}

// Affected logs mutations that matched no row.
func (h *Handler[T]) Affected(op string, id int64, ok bool) {
	if !ok {
		h.logger.Debug().Str("op", op).Int64("id", id).Msg("no row matched")
	}
}

// ParseID reads the numeric :id path parameter. Anything else is a 404, the
// same as a route that does not exist.
func ParseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return id, nil
}
