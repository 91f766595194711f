package chatbot

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/view"
	"github.com/hms/hms/internal/platform/websocket"
)

// Handler serves the public chatbot page, its JSON endpoint and the
// websocket variant.
type Handler struct {
	svc *Service
	ws  *websocket.Handler
}

// NewHandler creates the handler. ws may be nil to disable /chatbot/ws.
func NewHandler(svc *Service, ws *websocket.Handler) *Handler {
	return &Handler{svc: svc, ws: ws}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/chatbot", h.Page)
	e.POST("/chatbot/response", h.Response)
	if h.ws != nil {
		e.GET("/chatbot/ws", h.ws.HandleConnect)
	}
}

func (h *Handler) Page(c echo.Context) error {
	return view.Render(c, "chatbot", nil)
}

func (h *Handler) Response(c echo.Context) error {
	var q websocket.Question
	if err := json.NewDecoder(c.Request().Body).Decode(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	return c.JSON(http.StatusOK, websocket.Answer{Response: h.svc.Respond(c.Request().Context(), q.Message)})
}
