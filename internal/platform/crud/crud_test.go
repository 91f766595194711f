package crud

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/flash"
	"github.com/hms/hms/internal/platform/form"
)

// -- in-memory store --

type item struct {
	ID        int64  `json:"id"`
	PatientID int64  `json:"patient_id"`
	Name      string `json:"name"`
}

type memStore struct {
	mu      sync.Mutex
	rows    map[int64]*item
	nextID  int64
	failErr error
	calls   int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int64]*item), nextID: 1}
}

func (m *memStore) List(_ context.Context, scope auth.RowScope) ([]*item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failErr != nil {
		return nil, m.failErr
	}
	var out []*item
	for _, r := range m.rows {
		if scope.Allows(r.PatientID) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Create(_ context.Context, v *item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failErr != nil {
		return m.failErr
	}
	v.ID = m.nextID
	m.nextID++
	cp := *v
	m.rows[v.ID] = &cp
	return nil
}

func (m *memStore) Update(_ context.Context, id int64, v *item) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failErr != nil {
		return false, m.failErr
	}
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	cp := *v
	cp.ID = id
	m.rows[id] = &cp
	return true, nil
}

func (m *memStore) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failErr != nil {
		return false, m.failErr
	}
	_, ok := m.rows[id]
	delete(m.rows, id)
	return ok, nil
}

func decodeItem(r *form.Reader) *item {
	return &item{
		PatientID: r.Int("patient_id"),
		Name:      r.String("name"),
	}
}

// -- harness --

var (
	admin   = &auth.Identity{UserID: 1, Name: "root", Role: auth.RoleAdmin}
	patient = &auth.Identity{UserID: 7, Name: "Asha Rao", Role: auth.RolePatient, PatientID: 7}
)

func newServer(store *memStore, id *auth.Identity) *echo.Echo {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id != nil {
				c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), id)))
			}
			return next(c)
		}
	})
	h := NewHandler(Resource[item]{
		Name:   "items",
		Label:  "Item",
		Store:  store,
		Decode: decodeItem,
	}, zerolog.Nop())
	h.RegisterRoutes(e, auth.NewPolicy(nil))
	return e
}

func do(e *echo.Echo, method, target string, vals url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if vals != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(vals.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func notices(t *testing.T, rec *httptest.ResponseRecorder) []flash.Notice {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name != flash.CookieName || ck.Value == "" {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
		if err != nil {
			t.Fatalf("bad flash cookie: %v", err)
		}
		var out []flash.Notice
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("bad flash payload: %v", err)
		}
		return out
	}
	return nil
}

func listRows(t *testing.T, e *echo.Echo) []item {
	t.Helper()
	rec := do(e, http.MethodGet, "/items", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var page struct {
		Data struct {
			Rows []item `json:"rows"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("list: invalid json: %v", err)
	}
	return page.Data.Rows
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location, level, msg string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != location {
		t.Errorf("expected redirect to %s, got %s", location, got)
	}
	ns := notices(t, rec)
	if len(ns) == 0 {
		t.Fatalf("expected notice %q, got none", msg)
	}
	last := ns[len(ns)-1]
	if last.Level != level || last.Message != msg {
		t.Errorf("expected %s notice %q, got %s %q", level, msg, last.Level, last.Message)
	}
}

// -- tests --

func TestAddThenList(t *testing.T) {
	store := newMemStore()
	e := newServer(store, admin)

	rec := do(e, http.MethodPost, "/items/add", url.Values{"patient_id": {"7"}, "name": {"Cardiology"}})
	expectRedirect(t, rec, "/items", flash.Success, "Item added successfully!")

	rows := listRows(t, e)
	if len(rows) != 1 || rows[0].Name != "Cardiology" {
		t.Fatalf("expected the added row, got %+v", rows)
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	e := newServer(newMemStore(), admin)
	rec := do(e, http.MethodGet, "/items", nil)
	if !strings.Contains(rec.Body.String(), `"rows":[]`) {
		t.Errorf("expected empty rows array, got %s", rec.Body.String())
	}
}

func TestList_RowScopeForPatient(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	store.Create(ctx, &item{PatientID: 7, Name: "mine"})
	store.Create(ctx, &item{PatientID: 8, Name: "other"})
	store.Create(ctx, &item{PatientID: 7, Name: "mine too"})

	rows := listRows(t, newServer(store, patient))
	if len(rows) != 2 {
		t.Fatalf("expected 2 own rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.PatientID != 7 {
			t.Errorf("patient saw row of patient %d", r.PatientID)
		}
	}

	if got := listRows(t, newServer(store, admin)); len(got) != 3 {
		t.Errorf("admin expected 3 rows, got %d", len(got))
	}
}

func TestList_AnonymousRedirectsToLogin(t *testing.T) {
	store := newMemStore()
	rec := do(newServer(store, nil), http.MethodGet, "/items", nil)
	expectRedirect(t, rec, "/login", flash.Danger, "Please login to access this page.")
	if store.calls != 0 {
		t.Error("store must not be called for anonymous requests")
	}
}

func TestMutationGuard_PatientCannotWrite(t *testing.T) {
	store := newMemStore()
	store.Create(context.Background(), &item{PatientID: 7, Name: "seed"})
	store.calls = 0
	e := newServer(store, patient)

	cases := []struct {
		method string
		target string
		vals   url.Values
	}{
		{http.MethodPost, "/items/add", url.Values{"patient_id": {"7"}, "name": {"x"}}},
		{http.MethodPost, "/items/update/1", url.Values{"patient_id": {"7"}, "name": {"x"}}},
		{http.MethodGet, "/items/delete/1", nil},
	}
	for _, tc := range cases {
		rec := do(e, tc.method, tc.target, tc.vals)
		expectRedirect(t, rec, "/", flash.Danger, "Patients can only view records, not modify them!")
	}
	if store.calls != 0 {
		t.Errorf("store was called %d times", store.calls)
	}
	if len(store.rows) != 1 || store.rows[1].Name != "seed" {
		t.Error("store contents changed")
	}
}

func TestUpdate_Idempotent(t *testing.T) {
	store := newMemStore()
	store.Create(context.Background(), &item{PatientID: 7, Name: "old"})
	e := newServer(store, admin)
	vals := url.Values{"patient_id": {"7"}, "name": {"new"}}

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodPost, "/items/update/1", vals)
		expectRedirect(t, rec, "/items", flash.Success, "Item updated successfully!")
	}
	rows := listRows(t, e)
	if len(rows) != 1 || rows[0].Name != "new" {
		t.Errorf("unexpected rows after update: %+v", rows)
	}
}

func TestUpdate_MissingIDIsSilent(t *testing.T) {
	e := newServer(newMemStore(), admin)
	rec := do(e, http.MethodPost, "/items/update/99", url.Values{"patient_id": {"7"}, "name": {"x"}})
	expectRedirect(t, rec, "/items", flash.Success, "Item updated successfully!")
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	store.Create(context.Background(), &item{PatientID: 7, Name: "gone"})
	e := newServer(store, admin)

	rec := do(e, http.MethodGet, "/items/delete/1", nil)
	expectRedirect(t, rec, "/items", flash.Success, "Item deleted successfully!")
	if rows := listRows(t, e); len(rows) != 0 {
		t.Errorf("expected no rows, got %+v", rows)
	}

	rec = do(e, http.MethodGet, "/items/delete/1", nil)
	expectRedirect(t, rec, "/items", flash.Success, "Item deleted successfully!")
}

func TestAdd_MissingFieldIs400(t *testing.T) {
	store := newMemStore()
	e := newServer(store, admin)

	rec := do(e, http.MethodPost, "/items/add", url.Values{"patient_id": {"7"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing required field: name") {
		t.Errorf("expected field in message, got %s", rec.Body.String())
	}
	if store.calls != 0 {
		t.Error("store must not be called on validation failure")
	}
}

func TestAdd_BadIntegerIs400(t *testing.T) {
	e := newServer(newMemStore(), admin)
	rec := do(e, http.MethodPost, "/items/add", url.Values{"patient_id": {"seven"}, "name": {"x"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestNonNumericIDIs404(t *testing.T) {
	e := newServer(newMemStore(), admin)
	for _, target := range []string{"/items/delete/abc", "/items/delete/-1", "/items/delete/0"} {
		rec := do(e, http.MethodGet, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, rec.Code)
		}
	}
}

func TestPersistenceErrorIsSanitized(t *testing.T) {
	store := newMemStore()
	store.failErr = &pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "items_name_key"`}
	e := newServer(store, admin)

	rec := do(e, http.MethodPost, "/items/add", url.Values{"patient_id": {"7"}, "name": {"dup"}})
	expectRedirect(t, rec, "/items", flash.Danger, "Error: a record with the same unique value already exists")
}

func TestListErrorIs500(t *testing.T) {
	store := newMemStore()
	store.failErr = errors.New("connection reset")
	rec := do(newServer(store, admin), http.MethodGet, "/items", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestAddedNoticeOverride(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), admin)))
			return next(c)
		}
	})
	NewHandler(Resource[item]{
		Name:        "appointments",
		Label:       "Appointment",
		Store:       newMemStore(),
		Decode:      decodeItem,
		AddedNotice: "Appointment scheduled successfully!",
	}, zerolog.Nop()).RegisterRoutes(e, auth.NewPolicy(nil))

	rec := do(e, http.MethodPost, "/appointments/add", url.Values{"patient_id": {"7"}, "name": {"x"}})
	expectRedirect(t, rec, "/appointments", flash.Success, "Appointment scheduled successfully!")
}

func TestLookupsIncluded(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), patient)))
			return next(c)
		}
	})
	var gotScope auth.RowScope
	NewHandler(Resource[item]{
		Name:   "items",
		Label:  "Item",
		Store:  newMemStore(),
		Decode: decodeItem,
		Lookups: func(_ context.Context, scope auth.RowScope) (map[string]any, error) {
			gotScope = scope
			return map[string]any{"patients": []string{"Asha Rao"}}, nil
		},
	}, zerolog.Nop()).RegisterRoutes(e, auth.NewPolicy(nil))

	rec := do(e, http.MethodGet, "/items", nil)
	if !strings.Contains(rec.Body.String(), `"lookups":{"patients":["Asha Rao"]}`) {
		t.Errorf("lookups missing: %s", rec.Body.String())
	}
	if pid, ok := gotScope.PatientID(); !ok || pid != 7 {
		t.Errorf("lookups must receive the patient scope, got %+v", gotScope)
	}
}
