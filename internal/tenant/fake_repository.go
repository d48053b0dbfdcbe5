package tenant

import (
	"fmt"
	"sync"
)

// FakeTenantRepository is an in-memory TenantRepository used by this
// package's tests and by the admission workflow tests. Uniqueness behavior
// mirrors the database constraints.
type FakeTenantRepository struct {
	mu           sync.Mutex
	nextID       uint
	tenants      map[uint]*Tenant
	memberships  []*Membership
	joinRequests []*PendingJoinRequest
}

func NewFakeTenantRepository() *FakeTenantRepository {
	return &FakeTenantRepository{
		nextID:  1,
		tenants: make(map[uint]*Tenant),
	}
}

func (f *FakeTenantRepository) CreateTenant(t *Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tenants {
		if existing.Slug == t.Slug {
			return fmt.Errorf("duplicate key value violates unique constraint on slug %q", t.Slug)
		}
		if existing.JoinCode == t.JoinCode {
			return fmt.Errorf("duplicate key value violates unique constraint on join code %q", t.JoinCode)
		}
	}
	t.ID = f.nextID
	f.nextID++
	f.tenants[t.ID] = t
	return nil
}

func (f *FakeTenantRepository) GetTenantByID(id uint) (*Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *FakeTenantRepository) SlugExists(slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeTenantRepository) JoinCodeExists(code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeTenantRepository) FindTenantByCode(code string) (*Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.JoinCode == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FakeTenantRepository) UpdateJoinCode(tenantID uint, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[tenantID]
	if !ok {
		return fmt.Errorf("tenant %d not found", tenantID)
	}
	t.JoinCode = code
	return nil
}

func (f *FakeTenantRepository) DeleteTenant(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tenants, id)
	kept := f.memberships[:0]
	for _, m := range f.memberships {
		if m.TenantID != id {
			kept = append(kept, m)
		}
	}
	f.memberships = kept
	return nil
}

func (f *FakeTenantRepository) BindMembership(m *Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.memberships {
		if existing.TenantID == m.TenantID && existing.UserID == m.UserID {
			return ErrDuplicateMembership
		}
	}
	m.ID = f.nextID
	f.nextID++
	f.memberships = append(f.memberships, m)
	return nil
}

func (f *FakeTenantRepository) GetMembership(tenantID, userID uint) (*Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.memberships {
		if m.TenantID == tenantID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FakeTenantRepository) CreateJoinRequest(r *PendingJoinRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID
	f.nextID++
	if r.Status == "" {
		r.Status = JoinRequestPending
	}
	f.joinRequests = append(f.joinRequests, r)
	return nil
}

func (f *FakeTenantRepository) GetPendingJoinRequest(tenantID, userID uint) (*PendingJoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.joinRequests {
		if r.TenantID == tenantID && r.UserID == userID && r.Status == JoinRequestPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

// WithTransaction runs txFunc against the same store. The fake offers no
// rollback; tests that need failure paths inject them via the functions
// themselves.
func (f *FakeTenantRepository) WithTransaction(txFunc func(TenantRepository) error) error {
	return txFunc(f)
}

// Memberships returns a snapshot for assertions.
func (f *FakeTenantRepository) Memberships() []Membership {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Membership, 0, len(f.memberships))
	for _, m := range f.memberships {
		out = append(out, *m)
	}
	return out
}

// JoinRequests returns a snapshot for assertions.
func (f *FakeTenantRepository) JoinRequests() []PendingJoinRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PendingJoinRequest, 0, len(f.joinRequests))
	for _, r := range f.joinRequests {
		out = append(out, *r)
	}
	return out
}
