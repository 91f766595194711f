package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
)

// AuditEntry records one attempted change to hospital data: who tried it,
// against which resource and record, and how it ended.
type AuditEntry struct {
	UserID     int64
	UserName   string
	Role       auth.Role
	Resource   string
	Action     string // add, update, delete, discharge
	RecordID   string
	IPAddress  string
	Method     string
	Path       string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AuditRecorder persists audit entries somewhere other than the log.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

var auditedActions = map[string]bool{
	"add":       true,
	"update":    true,
	"delete":    true,
	"discharge": true,
}

// Audit logs every request that targets a mutating route of the form
// /<resource>/<action>[/:id], including ones the policy refused. GET requests
// to add/update only render forms and are skipped.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			resource, action, ok := auditTarget(c.Path(), c.Request().Method)
			if !ok {
				return next(c)
			}

			err := next(c)

			req := c.Request()
			entry := AuditEntry{
				Resource:   resource,
				Action:     action,
				RecordID:   c.Param("id"),
				IPAddress:  c.RealIP(),
				Method:     req.Method,
				Path:       req.URL.Path,
				StatusCode: c.Response().Status,
				Timestamp:  time.Now().UTC(),
			}
			if he, isHTTP := err.(*echo.HTTPError); isHTTP {
				entry.StatusCode = he.Code
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}
			if id := auth.IdentityFromContext(req.Context()); id != nil {
				entry.UserID = id.UserID
				entry.UserName = id.Name
				entry.Role = id.Role
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			evt := logger.Info()
			if entry.StatusCode >= http.StatusBadRequest || entry.Role != auth.RoleAdmin {
				evt = logger.Warn()
			}
			evt.
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Int64("user_id", entry.UserID).
				Str("user_name", entry.UserName).
				Str("role", string(entry.Role)).
				Str("resource", entry.Resource).
				Str("action", entry.Action).
				Str("record_id", entry.RecordID).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("data_change")

			return err
		}
	}
}

// auditTarget splits a route pattern such as /patients/update/:id into its
// resource and action.
func auditTarget(route, method string) (resource, action string, ok bool) {
	segments := strings.Split(strings.TrimPrefix(route, "/"), "/")
	if len(segments) < 2 {
		return "", "", false
	}
	resource, action = segments[0], segments[1]
	if !auditedActions[action] {
		return "", "", false
	}
	if method == http.MethodGet && (action == "add" || action == "update") {
		return "", "", false
	}
	return resource, action, true
}
