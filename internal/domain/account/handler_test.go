package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/admin"
	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/flash"
	"github.com/hms/hms/internal/platform/session"
	"github.com/hms/hms/internal/platform/telemetry"
)

type fakeAdmins struct{}

func (fakeAdmins) Authenticate(_ context.Context, username, password string) (*admin.Account, error) {
	if username == "root" && password == "s3cret-pass" {
		return &admin.Account{ID: 1, Username: "root"}, nil
	}
	return nil, admin.ErrAccountNotFound
}

type fakePatients struct{}

func (fakePatients) VerifyPatient(_ context.Context, id int64, email string) (*identity.Patient, error) {
	if id != 7 {
		return nil, identity.ErrPatientNotFound
	}
	if email != "asha@example.com" {
		return nil, identity.ErrPatientMismatch
	}
	return &identity.Patient{ID: 7, FirstName: "Asha", LastName: "Rao", Email: email}, nil
}

type denyAll struct{}

func (denyAll) Allow(string) (bool, time.Duration) { return false, 1500 * time.Millisecond }

type attempts struct {
	mu  sync.Mutex
	got []string
}

func (a *attempts) AuthAttempt(kind, outcome string) {
	a.mu.Lock()
	a.got = append(a.got, kind+":"+outcome)
	a.mu.Unlock()
}

const secret = "0123456789abcdef0123456789abcdef"

func newServer(limiter Limiter, rec AttemptRecorder) *echo.Echo {
	sessions := session.NewManager(session.Options{Secret: secret})
	svc := NewService(fakeAdmins{}, fakePatients{}, zerolog.Nop())

	e := echo.New()
	e.Use(sessions.Middleware())
	NewHandler(svc, sessions, limiter, rec, zerolog.Nop()).RegisterRoutes(e, auth.NewPolicy(nil))
	return e
}

func postForm(e *echo.Echo, path string, vals url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(vals.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// notices follows the redirect carrying the flash cookie and returns the
// messages shown on the next page.
func notices(t *testing.T, e *echo.Echo, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, auth.LoginPath, nil)
	if ck := cookieNamed(rec, flash.CookieName); ck != nil {
		req.AddCookie(ck)
	}
	next := httptest.NewRecorder()
	e.ServeHTTP(next, req)

	var page struct {
		Notices []flash.Notice `json:"notices"`
	}
	if err := json.Unmarshal(next.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	var out []string
	for _, n := range page.Notices {
		out = append(out, n.Message)
	}
	return out
}

func TestAdminLogin_Success(t *testing.T) {
	rec := &attempts{}
	e := newServer(nil, rec)
	resp := postForm(e, "/admin_login", url.Values{"username": {"root"}, "password": {"s3cret-pass"}})

	if resp.Code != http.StatusFound || resp.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected redirect to /, got %d %s", resp.Code, resp.Header().Get(echo.HeaderLocation))
	}
	ck := cookieNamed(resp, session.CookieName)
	if ck == nil || ck.Value == "" {
		t.Fatal("expected session cookie")
	}

	id, err := session.NewManager(session.Options{Secret: secret}).Parse(ck.Value)
	if err != nil {
		t.Fatalf("session did not verify: %v", err)
	}
	if !id.IsAdmin() || id.Name != "root" {
		t.Errorf("unexpected identity %+v", id)
	}
	if got := notices(t, e, resp); len(got) != 1 || got[0] != "Welcome Admin! Login successful." {
		t.Errorf("unexpected notices %v", got)
	}
	if len(rec.got) != 1 || rec.got[0] != "admin:"+telemetry.OutcomeSuccess {
		t.Errorf("unexpected attempts %v", rec.got)
	}
}

func TestAdminLogin_Failure(t *testing.T) {
	rec := &attempts{}
	e := newServer(nil, rec)
	resp := postForm(e, "/admin_login", url.Values{"username": {"root"}, "password": {"wrong"}})

	if resp.Header().Get(echo.HeaderLocation) != "/admin_login" {
		t.Fatalf("expected redirect back to form, got %s", resp.Header().Get(echo.HeaderLocation))
	}
	if cookieNamed(resp, session.CookieName) != nil {
		t.Error("failed login must not issue a session")
	}
	if got := notices(t, e, resp); len(got) != 1 || got[0] != "Invalid username or password!" {
		t.Errorf("unexpected notices %v", got)
	}
	if rec.got[0] != "admin:"+telemetry.OutcomeFailure {
		t.Errorf("unexpected attempts %v", rec.got)
	}
}

func TestPatientLogin(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		email    string
		location string
		notice   string
	}{
		{"success", "7", "asha@example.com", "/", "Welcome Asha! Login successful."},
		{"wrong email", "7", "ASHA@example.com", "/patient_login", "Invalid Patient ID or Email!"},
		{"unknown id", "8", "asha@example.com", "/patient_login", "Invalid Patient ID or Email!"},
		{"non-numeric id", "seven", "asha@example.com", "/patient_login", "Invalid Patient ID or Email!"},
		{"blank id", "", "", "/patient_login", "Invalid Patient ID or Email!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newServer(nil, nil)
			resp := postForm(e, "/patient_login", url.Values{"patient_id": {tt.id}, "email": {tt.email}})
			if loc := resp.Header().Get(echo.HeaderLocation); loc != tt.location {
				t.Fatalf("expected redirect to %s, got %s", tt.location, loc)
			}
			if got := notices(t, e, resp); len(got) != 1 || got[0] != tt.notice {
				t.Errorf("unexpected notices %v", got)
			}
			hasSession := cookieNamed(resp, session.CookieName) != nil
			if hasSession != (tt.location == "/") {
				t.Errorf("session cookie issued = %v", hasSession)
			}
		})
	}
}

func TestPatientLogin_BindsPatientID(t *testing.T) {
	e := newServer(nil, nil)
	resp := postForm(e, "/patient_login", url.Values{"patient_id": {"7"}, "email": {"asha@example.com"}})
	ck := cookieNamed(resp, session.CookieName)
	if ck == nil {
		t.Fatal("expected session cookie")
	}
	id, err := session.NewManager(session.Options{Secret: secret}).Parse(ck.Value)
	if err != nil {
		t.Fatalf("session did not verify: %v", err)
	}
	if !id.IsPatient() || id.PatientID != 7 || id.Name != "Asha Rao" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	rec := &attempts{}
	e := newServer(denyAll{}, rec)
	resp := postForm(e, "/admin_login", url.Values{"username": {"root"}, "password": {"s3cret-pass"}})

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "2" {
		t.Errorf("expected Retry-After 2, got %q", resp.Header().Get("Retry-After"))
	}
	if cookieNamed(resp, session.CookieName) != nil {
		t.Error("limited login must not issue a session")
	}
	if rec.got[0] != "admin:"+telemetry.OutcomeLimited {
		t.Errorf("unexpected attempts %v", rec.got)
	}
}

func TestLogout(t *testing.T) {
	e := newServer(nil, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != auth.LoginPath {
		t.Fatalf("expected redirect to login, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	ck := cookieNamed(rec, session.CookieName)
	if ck == nil || ck.MaxAge >= 0 {
		t.Error("expected session cookie to be expired")
	}
	if got := notices(t, e, rec); len(got) != 1 || got[0] != "You have been logged out successfully." {
		t.Errorf("unexpected notices %v", got)
	}
}

func TestHome_RequiresSession(t *testing.T) {
	e := newServer(nil, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != auth.LoginPath {
		t.Errorf("expected redirect to login, got %d", rec.Code)
	}

	resp := postForm(e, "/admin_login", url.Values{"username": {"root"}, "password": {"s3cret-pass"}})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookieNamed(resp, session.CookieName))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"page":"home"`) {
		t.Errorf("expected home page, got %d %s", rec.Code, rec.Body.String())
	}
}
