// Package session issues and verifies the signed session cookie that carries
// the caller's identity between requests.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

const (
	CookieName = "hms_session"
	issuer     = "hms"
)

var ErrInvalidSession = errors.New("invalid session")

// Claims is the token payload.
type Claims struct {
	jwt.RegisteredClaims
	Name      string `json:"name"`
	UserType  string `json:"user_type"`
	PatientID int64  `json:"patient_id,omitempty"`
}

// Options configure a Manager.
type Options struct {
	Secret string
	Secure bool
	// TTL of zero issues a browser-session cookie whose token never expires.
	TTL time.Duration
}

// Manager signs and verifies session tokens with HMAC-SHA256.
type Manager struct {
	key    []byte
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(opts Options) *Manager {
	return &Manager{
		key:    []byte(opts.Secret),
		secure: opts.Secure,
		ttl:    opts.TTL,
		now:    time.Now,
	}
}

// Sign produces a token for id.
func (m *Manager) Sign(id *auth.Identity) (string, error) {
	if id == nil || !id.Role.Valid() {
		return "", fmt.Errorf("sign session: %w", ErrInvalidSession)
	}
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  strconv.FormatInt(id.UserID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
		Name:      id.Name,
		UserType:  string(id.Role),
		PatientID: id.PatientID,
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

// Parse verifies a token and returns the identity it carries.
func (m *Manager) Parse(token string) (*auth.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return nil, ErrInvalidSession
	}
	id := &auth.Identity{
		UserID:    uid,
		Name:      claims.Name,
		Role:      auth.Role(claims.UserType),
		PatientID: claims.PatientID,
	}
	switch id.Role {
	case auth.RoleAdmin:
		if id.PatientID != 0 {
			return nil, ErrInvalidSession
		}
	case auth.RolePatient:
		if id.PatientID <= 0 || id.PatientID != id.UserID {
			return nil, ErrInvalidSession
		}
	default:
		return nil, ErrInvalidSession
	}
	return id, nil
}

// Issue signs id and sets the session cookie.
func (m *Manager) Issue(c echo.Context, id *auth.Identity) error {
	token, err := m.Sign(id)
	if err != nil {
		return err
	}
	cookie := m.cookie(token)
	if m.ttl > 0 {
		cookie.MaxAge = int(m.ttl / time.Second)
	}
	c.SetCookie(cookie)
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(c echo.Context) {
	cookie := m.cookie("")
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

func (m *Manager) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware attaches the identity of a valid session cookie to the request
// context. A tampered or expired cookie is cleared and the request continues
// anonymously; the access policy decides what anonymous callers may do.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			id, err := m.Parse(cookie.Value)
			if err != nil {
				m.Clear(c)
				return next(c)
			}

			c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), id)))
			c.Set("identity", id)
			return next(c)
		}
	}
}
