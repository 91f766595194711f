package admission

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/crud"
)

// Handler serves /room_allotments plus the discharge action.
type Handler struct {
	*crud.Handler[RoomAllotment]
	repo AllotmentRepository
}

func NewHandler(repo AllotmentRepository, logger zerolog.Logger) *Handler {
	return &Handler{
		Handler: crud.NewHandler(crud.Resource[RoomAllotment]{
			Name:         "room_allotments",
			Label:        "Room allotment",
			Store:        repo,
			Decode:       DecodeAdmit,
			DecodeUpdate: DecodeAllotment,
		}, logger),
		repo: repo,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, p *auth.Policy) {
	h.Handler.RegisterRoutes(e, p)
	e.GET(h.Path()+"/discharge/:id", h.Discharge, p.Write()...)
}

func (h *Handler) Discharge(c echo.Context) error {
	id, err := crud.ParseID(c)
	if err != nil {
		return err
	}

	ok, err := h.repo.Discharge(c.Request().Context(), id)
	if err != nil {
		return h.Failed(c, "discharge", id, err)
	}
	h.Affected("discharge", id, ok)
	return h.Done(c, "Patient discharged successfully!")
}
