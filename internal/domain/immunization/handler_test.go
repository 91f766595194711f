package immunization

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/form"
)

type mockVaccinationRepo struct {
	mu     sync.Mutex
	store  map[int64]*VaccinationRecord
	nextID int64
}

func newMockVaccinationRepo() *mockVaccinationRepo {
	return &mockVaccinationRepo{store: make(map[int64]*VaccinationRecord), nextID: 1}
}

func (m *mockVaccinationRepo) List(_ context.Context, scope auth.RowScope) ([]*VaccinationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*VaccinationRecord
	for _, v := range m.store {
		if scope.AllowsRef(v.PatientIDRef) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockVaccinationRepo) Create(_ context.Context, v *VaccinationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = m.nextID
	m.nextID++
	cp := *v
	m.store[v.ID] = &cp
	return nil
}

func (m *mockVaccinationRepo) Update(_ context.Context, id int64, v *VaccinationRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return false, nil
	}
	cp := *v
	cp.ID = id
	m.store[id] = &cp
	return true, nil
}

func (m *mockVaccinationRepo) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[id]
	delete(m.store, id)
	return ok, nil
}

func TestVaccinations_PatientScopeByReference(t *testing.T) {
	repo := newMockVaccinationRepo()
	ctx := context.Background()
	repo.Create(ctx, &VaccinationRecord{PatientIDRef: "5", VaccineName: "BCG"})
	repo.Create(ctx, &VaccinationRecord{PatientIDRef: "05", VaccineName: "Polio"})
	repo.Create(ctx, &VaccinationRecord{PatientIDRef: "6", VaccineName: "MMR"})

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := &auth.Identity{UserID: 5, Name: "Kiran", Role: auth.RolePatient, PatientID: 5}
			c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	})
	NewHandler(repo, zerolog.Nop()).RegisterRoutes(e, auth.NewPolicy(nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vaccination_records", nil))

	var page struct {
		Data struct {
			Rows []VaccinationRecord `json:"rows"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(page.Data.Rows) != 1 || page.Data.Rows[0].VaccineName != "BCG" {
		t.Errorf("expected only the exact reference match, got %+v", page.Data.Rows)
	}
}

func TestDecodeVaccinationRecord(t *testing.T) {
	r := form.New(url.Values{
		"patient_id_ref":   {"5"},
		"patient_name":     {"Kiran"},
		"age":              {"thirty"},
		"vaccine_name":     {"BCG"},
		"dose_number":      {"1"},
		"vaccination_date": {"2026-02-01"},
	})
	DecodeVaccinationRecord(r)
	verr, ok := r.Err().(*form.ValidationError)
	if !ok || verr.Field != "age" {
		t.Errorf("expected age failure, got %v", r.Err())
	}
}
