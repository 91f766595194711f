package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/flash"
)

const (
	RuleAuthenticated = "authenticated"
	RuleMutationGuard = "mutation_guard"

	LoginPath = "/login"

	loginRequiredNotice = "Please login to access this page."
	readOnlyNotice      = "Patients can only view records, not modify them!"
)

// DenialRecorder observes access policy denials.
type DenialRecorder interface {
	PolicyDenied(rule string)
}

// Policy builds the access-control middleware. Routes take Read or Write,
// which run Authenticated then MutationGuard and only then the acquire
// middleware, so a refused request never waits on the pool. RowScope is
// applied by the list handlers through ScopeFromContext.
type Policy struct {
	recorder DenialRecorder
	acquire  echo.MiddlewareFunc
}

// NewPolicy returns a policy reporting denials to rec, which may be nil.
func NewPolicy(rec DenialRecorder) *Policy {
	return &Policy{recorder: rec}
}

// AcquireWith sets the middleware that runs once the policy has allowed a
// request, typically db.RequestConn.
func (p *Policy) AcquireWith(mw echo.MiddlewareFunc) *Policy {
	p.acquire = mw
	return p
}

// Read is the chain for session-only routes.
func (p *Policy) Read() []echo.MiddlewareFunc {
	return p.chain(p.Authenticated())
}

// Write is the chain for state-changing routes.
func (p *Policy) Write() []echo.MiddlewareFunc {
	return p.chain(p.Authenticated(), p.MutationGuard())
}

// Open is the chain for public routes that still read the store, such as the
// login forms.
func (p *Policy) Open() []echo.MiddlewareFunc {
	return p.chain()
}

func (p *Policy) chain(rules ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if p.acquire != nil {
		rules = append(rules, p.acquire)
	}
	return rules
}

func (p *Policy) denied(rule string) {
	if p.recorder != nil {
		p.recorder.PolicyDenied(rule)
	}
}

// Authenticated redirects anonymous requests to the login page.
func (p *Policy) Authenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFromContext(c.Request().Context()) == nil {
				p.denied(RuleAuthenticated)
				flash.Add(c, flash.Danger, loginRequiredNotice)
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}

// MutationGuard blocks every state-changing action for patient sessions and
// sends them back where they came from.
func (p *Policy) MutationGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFromContext(c.Request().Context())
			if id == nil || !id.IsAdmin() {
				p.denied(RuleMutationGuard)
				flash.Add(c, flash.Danger, readOnlyNotice)
				return c.Redirect(http.StatusFound, backTarget(c.Request()))
			}
			return next(c)
		}
	}
}

// backTarget returns the same-origin referrer path, or "/" for anything else.
func backTarget(req *http.Request) string {
	ref := req.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "/"
	}
	if u.Host != "" && !strings.EqualFold(u.Host, req.Host) {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target
}
