// Package flash carries one-shot user notices across a redirect in a cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CookieName = "hms_flash"
	pendingKey = "flash_pending"
	maxPending = 10
)

// Notice levels used by handlers.
const (
	Success = "success"
	Danger  = "danger"
	Info    = "info"
)

// Notice is a single user-visible message.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Add queues a notice for the next page the browser renders.
func Add(c echo.Context, level, message string) {
	pending := queued(c)
	pending = append(pending, Notice{Level: level, Message: message})
	if len(pending) > maxPending {
		pending = pending[len(pending)-maxPending:]
	}
	c.Set(pendingKey, pending)

	data, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns every queued notice and clears the cookie.
func Pop(c echo.Context) []Notice {
	notices := queued(c)
	c.Set(pendingKey, []Notice(nil))
	if _, err := c.Cookie(CookieName); err == nil {
		c.SetCookie(&http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return notices
}

// queued merges notices added earlier in this request with those carried in
// by the request cookie. Notices added in this request win.
func queued(c echo.Context) []Notice {
	if v, ok := c.Get(pendingKey).([]Notice); ok {
		return v
	}
	return decode(c)
}

func decode(c echo.Context) []Notice {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var notices []Notice
	if err := json.Unmarshal(raw, &notices); err != nil {
		return nil
	}
	if len(notices) > maxPending {
		notices = notices[len(notices)-maxPending:]
	}
	return notices
}
