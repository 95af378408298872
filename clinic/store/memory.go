// Package store provides in-memory implementations of the clinic
// persistence interfaces, used for tests and the dev backend.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/auratheracare/clinic-engine/clinic"
)

// =============================================================================
// MEMORY STORE - Implements clinic.UserStore and clinic.RecordStore
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	users   map[string]memUser
	byEmail map[string]string // lowercased email -> user id
	records map[string][]clinic.AttendanceRecord
}

type memUser struct {
	user clinic.User
	hash string
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]memUser),
		byEmail: make(map[string]string),
		records: make(map[string][]clinic.AttendanceRecord),
	}
}

// =============================================================================
// USER STORE
// =============================================================================

func (m *Memory) Create(_ context.Context, u clinic.User, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, exists := m.byEmail[email]; exists {
		return clinic.ErrDuplicateEmail
	}
	m.users[u.ID] = memUser{user: u, hash: passwordHash}
	m.byEmail[email] = u.ID
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*clinic.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mu, ok := m.users[id]
	if !ok {
		return nil, clinic.ErrNotFound
	}
	u := mu.user
	return &u, nil
}

func (m *Memory) GetByEmail(ctx context.Context, email string) (*clinic.User, error) {
	u, _, err := m.Credentials(ctx, email)
	return u, err
}

func (m *Memory) Credentials(_ context.Context, email string) (*clinic.User, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, "", clinic.ErrNotFound
	}
	mu := m.users[id]
	u := mu.user
	return &u, mu.hash, nil
}

func (m *Memory) List(_ context.Context) ([]clinic.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(clinic.User) bool { return true }), nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]clinic.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(u clinic.User) bool { return u.Role == clinic.RoleCustomer }), nil
}

func (m *Memory) listLocked(keep func(clinic.User) bool) []clinic.User {
	var out []clinic.User
	for _, mu := range m.users {
		if keep(mu.user) {
			out = append(out, mu.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mu, ok := m.users[id]
	if !ok {
		return clinic.ErrNotFound
	}
	delete(m.users, id)
	delete(m.byEmail, strings.ToLower(mu.user.Email))
	return nil
}

// DeleteUserCascade removes the user and all their records under one
// lock, so readers never observe a partial state.
func (m *Memory) DeleteUserCascade(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mu, ok := m.users[userID]
	if !ok {
		return clinic.ErrNotFound
	}
	delete(m.records, userID)
	delete(m.users, userID)
	delete(m.byEmail, strings.ToLower(mu.user.Email))
	return nil
}

// =============================================================================
// RECORD STORE - Append-only log per customer, insertion order kept
// =============================================================================

func (m *Memory) Insert(_ context.Context, rec clinic.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.CustomerID] = append(m.records[rec.CustomerID], rec)
	return nil
}

func (m *Memory) FindByCustomer(_ context.Context, customerID string) ([]clinic.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]clinic.AttendanceRecord, len(m.records[customerID]))
	copy(out, m.records[customerID])
	return out, nil
}

func (m *Memory) FindByCustomerAndRange(_ context.Context, customerID string, from, to clinic.Date) ([]clinic.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []clinic.AttendanceRecord
	for _, rec := range m.records[customerID] {
		if rec.Date.Between(from, to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) DeleteRecord(_ context.Context, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for customerID, recs := range m.records {
		for i, rec := range recs {
			if rec.ID == recordID {
				m.records[customerID] = append(recs[:i:i], recs[i+1:]...)
				return nil
			}
		}
	}
	return clinic.ErrNotFound
}

func (m *Memory) DeleteByCustomer(_ context.Context, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, customerID)
	return nil
}
