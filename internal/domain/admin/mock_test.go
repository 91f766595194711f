package admin

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hms/hms/internal/platform/auth"
)

type mockDeptRepo struct {
	mu     sync.Mutex
	store  map[int64]*Department
	nextID int64
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{store: make(map[int64]*Department), nextID: 1}
}

func (m *mockDeptRepo) List(_ context.Context, _ auth.RowScope) ([]*Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Department
	for _, d := range m.store {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDeptRepo) Create(_ context.Context, d *Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.nextID
	m.nextID++
	d.CreatedAt = time.Now()
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *mockDeptRepo) Update(_ context.Context, id int64, d *Department) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.store[id]
	if !ok {
		return false, nil
	}
	existing.Name = d.Name
	existing.Description = d.Description
	return true, nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[id]
	delete(m.store, id)
	return ok, nil
}

func (m *mockDeptRepo) Options(ctx context.Context) ([]DepartmentOption, error) {
	depts, _ := m.List(ctx, auth.Unscoped())
	var out []DepartmentOption
	for _, d := range depts {
		out = append(out, DepartmentOption{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

type mockAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*Account
	nextID   int64
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[string]*Account), nextID: 1}
}

func (m *mockAccountRepo) GetByUsername(_ context.Context, username string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepo) Upsert(_ context.Context, username, hash string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[username]; ok {
		a.PasswordHash = hash
		cp := *a
		return &cp, nil
	}
	a := &Account{ID: m.nextID, Username: username, PasswordHash: hash, CreatedAt: time.Now()}
	m.nextID++
	m.accounts[username] = a
	cp := *a
	return &cp, nil
}
