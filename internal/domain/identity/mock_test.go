package identity

import (
	"context"
	"sort"
	"sync"

	"github.com/hms/hms/internal/domain/admin"
	"github.com/hms/hms/internal/platform/auth"
)

type mockPatientRepo struct {
	mu     sync.Mutex
	store  map[int64]*Patient
	nextID int64
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{store: make(map[int64]*Patient), nextID: 1}
}

func (m *mockPatientRepo) List(_ context.Context, scope auth.RowScope) ([]*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Patient
	for _, p := range m.store {
		if scope.Allows(p.ID) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockPatientRepo) Get(_ context.Context, id int64) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) Update(_ context.Context, id int64, p *Patient) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return false, nil
	}
	cp := *p
	cp.ID = id
	m.store[id] = &cp
	return true, nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[id]
	delete(m.store, id)
	return ok, nil
}

func (m *mockPatientRepo) Options(ctx context.Context, scope auth.RowScope) ([]NameOption, error) {
	ps, _ := m.List(ctx, scope)
	var out []NameOption
	for _, p := range ps {
		out = append(out, NameOption{ID: p.ID, Name: p.FullName()})
	}
	return out, nil
}

type mockDoctorRepo struct {
	mu     sync.Mutex
	store  map[int64]*Doctor
	nextID int64
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{store: make(map[int64]*Doctor), nextID: 1}
}

func (m *mockDoctorRepo) List(_ context.Context, _ auth.RowScope) ([]*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Doctor
	for _, d := range m.store {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.nextID
	m.nextID++
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *mockDoctorRepo) Update(_ context.Context, id int64, d *Doctor) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return false, nil
	}
	cp := *d
	cp.ID = id
	m.store[id] = &cp
	return true, nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[id]
	delete(m.store, id)
	return ok, nil
}

func (m *mockDoctorRepo) Options(ctx context.Context) ([]NameOption, error) {
	ds, _ := m.List(ctx, auth.Unscoped())
	var out []NameOption
	for _, d := range ds {
		out = append(out, NameOption{ID: d.ID, Name: d.FirstName + " " + d.LastName})
	}
	return out, nil
}

type staticDepartments []admin.DepartmentOption

func (s staticDepartments) Options(context.Context) ([]admin.DepartmentOption, error) {
	return s, nil
}
