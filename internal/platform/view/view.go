// Package view renders page documents: the JSON a template layer or single
// page client turns into HTML.
package view

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/flash"
)

// Page is the document every GET handler returns.
type Page struct {
	Page     string         `json:"page"`
	Identity *auth.Identity `json:"identity"`
	Notices  []flash.Notice `json:"notices"`
	Data     any            `json:"data,omitempty"`
}

// Render writes a page for the current identity and drains pending notices.
func Render(c echo.Context, page string, data any) error {
	notices := flash.Pop(c)
	if notices == nil {
		notices = []flash.Notice{}
	}
	return c.JSON(http.StatusOK, Page{
		Page:     page,
		Identity: auth.IdentityFromContext(c.Request().Context()),
		Notices:  notices,
		Data:     data,
	})
}
