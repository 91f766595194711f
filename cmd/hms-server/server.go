package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/account"
	"github.com/hms/hms/internal/domain/admin"
	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/chatbot"
	"github.com/hms/hms/internal/domain/clinical"
	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/domain/immunization"
	"github.com/hms/hms/internal/domain/scheduling"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/internal/platform/session"
	"github.com/hms/hms/internal/platform/telemetry"
	"github.com/hms/hms/internal/platform/websocket"
)

// server is the assembled HTTP application.
type server struct {
	echo    *echo.Echo
	hub     *websocket.Hub
	metrics *telemetry.Metrics
}

// newServer wires middleware, stores and handlers. The pool is only used once
// requests arrive.
func newServer(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *server {
	metrics := telemetry.New()
	hub := websocket.NewHub(metrics)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           3 * time.Minute,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	sessions := session.NewManager(session.Options{
		Secret: cfg.SessionSecret,
		Secure: cfg.SessionCookieSecure,
		TTL:    cfg.SessionTTL,
	})

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.TLSEnabled))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RateLimit(middleware.NewRateLimiter(rateLimitCfg)))
	e.Use(sessions.Middleware())
	e.Use(metrics.Middleware())
	e.Use(middleware.Audit(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, middleware.WebSocketSkipper))

	// Connections are borrowed per route, after the access policy.
	policy := auth.NewPolicy(metrics).AcquireWith(db.RequestConn(pool, nil))

	// Stores
	departments := admin.NewDepartmentRepo(pool)
	accounts := admin.NewAccountRepo(pool)
	patients := identity.NewPatientRepo(pool)
	doctors := identity.NewDoctorRepo(pool)
	appointments := scheduling.NewAppointmentRepo(pool)
	schedules := scheduling.NewScheduleRepo(pool)
	records := clinical.NewMedicalRecordRepo(pool)
	allotments := admission.NewAllotmentRepo(pool)
	vaccinations := immunization.NewVaccinationRepo(pool)

	// Accounts and login
	loginLimiter := middleware.NewRateLimiter(middleware.LoginRateLimitConfig(cfg.LoginRatePerMin, cfg.LoginRateBurst))
	accountSvc := account.NewService(admin.NewAccountService(accounts), identity.NewService(patients), logger)
	account.NewHandler(accountSvc, sessions, loginLimiter, metrics, logger).RegisterRoutes(e, policy)

	// Resources
	names := identity.NameLookups(patients, doctors)
	admin.NewHandler(departments, logger).RegisterRoutes(e, policy)
	identity.NewDoctorHandler(doctors, departments, logger).RegisterRoutes(e, policy)
	identity.NewPatientHandler(patients, logger).RegisterRoutes(e, policy)
	scheduling.NewAppointmentHandler(appointments, names, logger).RegisterRoutes(e, policy)
	clinical.NewHandler(records, names, logger).RegisterRoutes(e, policy)
	scheduling.NewScheduleHandler(schedules, logger).RegisterRoutes(e, policy)
	admission.NewHandler(allotments, logger).RegisterRoutes(e, policy)
	immunization.NewHandler(vaccinations, logger).RegisterRoutes(e, policy)

	// Chatbot
	chatSvc := chatbot.NewService(chatbot.NewRepo(pool), metrics, logger)
	chatWS := websocket.NewHandler(hub, chatSvc.Respond, logger)
	chatbot.NewHandler(chatSvc, chatWS).RegisterRoutes(e)

	// Infrastructure
	e.GET("/health", db.LivenessHandler)
	e.GET("/health/db", db.HealthHandler(pool, logger))
	e.GET("/metrics", metrics.Handler())

	return &server{echo: e, hub: hub, metrics: metrics}
}
