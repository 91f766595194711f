package account

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/flash"
	"github.com/hms/hms/internal/platform/telemetry"
	"github.com/hms/hms/internal/platform/view"
)

const (
	KindAdmin   = "admin"
	KindPatient = "patient"

	adminLoginPath   = "/admin_login"
	patientLoginPath = "/patient_login"
)

// SessionIssuer writes and clears the session cookie.
type SessionIssuer interface {
	Issue(c echo.Context, id *auth.Identity) error
	Clear(c echo.Context)
}

// Limiter throttles login attempts per client.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// AttemptRecorder counts login attempts by kind and outcome.
type AttemptRecorder interface {
	AuthAttempt(kind, outcome string)
}

type Handler struct {
	svc      *Service
	sessions SessionIssuer
	limiter  Limiter
	rec      AttemptRecorder
	logger   zerolog.Logger
}

// NewHandler creates the login handler. limiter and rec may be nil.
func NewHandler(svc *Service, sessions SessionIssuer, limiter Limiter, rec AttemptRecorder, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, limiter: limiter, rec: rec, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, p *auth.Policy) {
	e.GET("/", h.Home, p.Read()...)
	e.GET(auth.LoginPath, h.page("login"))
	e.GET(adminLoginPath, h.page("admin_login"))
	e.POST(adminLoginPath, h.AdminLogin, p.Open()...)
	e.GET(patientLoginPath, h.page("patient_login"))
	e.POST(patientLoginPath, h.PatientLogin, p.Open()...)
	e.GET("/logout", h.Logout)
}

func (h *Handler) Home(c echo.Context) error {
	return view.Render(c, "home", nil)
}

func (h *Handler) page(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return view.Render(c, name, nil)
	}
}

func (h *Handler) AdminLogin(c echo.Context) error {
	return h.login(c, KindAdmin, adminLoginPath, "Invalid username or password!",
		func(ctx context.Context) (*Login, error) {
			return h.svc.LoginAdmin(ctx, c.FormValue("username"), c.FormValue("password"))
		})
}

func (h *Handler) PatientLogin(c echo.Context) error {
	return h.login(c, KindPatient, patientLoginPath, "Invalid Patient ID or Email!",
		func(ctx context.Context) (*Login, error) {
			return h.svc.LoginPatient(ctx, c.FormValue("patient_id"), c.FormValue("email"))
		})
}

func (h *Handler) login(c echo.Context, kind, failPath, failNotice string, attempt func(context.Context) (*Login, error)) error {
	if h.limiter != nil {
		if ok, wait := h.limiter.Allow(c.RealIP()); !ok {
			h.record(kind, telemetry.OutcomeLimited)
			retry := int(math.Ceil(wait.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		}
	}

	login, err := attempt(c.Request().Context())
	if errors.Is(err, ErrInvalidCredentials) {
		h.record(kind, telemetry.OutcomeFailure)
		h.logger.Info().Str("kind", kind).Str("remote_ip", c.RealIP()).Msg("login failed")
		flash.Add(c, flash.Danger, failNotice)
		return c.Redirect(http.StatusFound, failPath)
	}
	if err != nil {
		return err
	}

	if err := h.sessions.Issue(c, login.Identity); err != nil {
		h.logger.Error().Err(err).Str("kind", kind).Msg("issue session failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "could not start session")
	}
	h.record(kind, telemetry.OutcomeSuccess)
	h.logger.Info().Str("kind", kind).Int64("user_id", login.Identity.UserID).Msg("login succeeded")
	flash.Add(c, flash.Success, "Welcome "+login.Greeting+"! Login successful.")
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c echo.Context) error {
	h.sessions.Clear(c)
	flash.Add(c, flash.Info, "You have been logged out successfully.")
	return c.Redirect(http.StatusFound, auth.LoginPath)
}

func (h *Handler) record(kind, outcome string) {
	if h.rec != nil {
		h.rec.AuthAttempt(kind, outcome)
	}
}
