package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets browser hardening headers on every response. Pages
// may load their own scripts and styles but may not be framed, and forms may
// only post back to this origin.
func SecurityHeaders(hsts bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "0")
			h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; form-action 'self'; base-uri 'none'")
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			// MutationGuard redirects back to the referrer, so keep same-origin referrers.
			h.Set("Referrer-Policy", "same-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			// Pages carry patient data.
			h.Set("Cache-Control", "no-store")

			return next(c)
		}
	}
}
