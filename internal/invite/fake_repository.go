package invite

import (
	"sync"
	"time"
)

// FakeTokenRepository is an in-memory TokenRepository mirroring the
// conditional-update semantics of the SQL implementation. Used by tests here
// and by the admission workflow tests.
type FakeTokenRepository struct {
	mu       sync.Mutex
	nextID   uint
	invites  map[string]*InviteToken
	verifies map[string]*VerifyToken
}

func NewFakeTokenRepository() *FakeTokenRepository {
	return &FakeTokenRepository{
		nextID:   1,
		invites:  make(map[string]*InviteToken),
		verifies: make(map[string]*VerifyToken),
	}
}

func (f *FakeTokenRepository) CreateInvite(t *InviteToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID
	f.nextID++
	f.invites[t.Token] = t
	return nil
}

func (f *FakeTokenRepository) GetInviteByID(id uint) (*InviteToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.invites {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FakeTokenRepository) ConsumeInvite(token string) (*InviteToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.invites[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	if t.ConsumedAt != nil {
		return nil, ErrTokenAlreadyUsed
	}
	now := time.Now()
	if !t.ExpiresAt.After(now) {
		return nil, ErrTokenExpired
	}
	t.ConsumedAt = &now
	cp := *t
	return &cp, nil
}

func (f *FakeTokenRepository) ExpireInvite(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.invites {
		if t.ID == id {
			t.ExpiresAt = time.Now().Add(-time.Second)
			return nil
		}
	}
	return ErrTokenNotFound
}

func (f *FakeTokenRepository) CreateVerify(t *VerifyToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID
	f.nextID++
	f.verifies[t.Token] = t
	return nil
}

func (f *FakeTokenRepository) ConsumeVerify(token string) (*VerifyToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.verifies[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	if t.ConsumedAt != nil {
		return nil, ErrTokenAlreadyUsed
	}
	now := time.Now()
	if !t.ExpiresAt.After(now) {
		return nil, ErrTokenExpired
	}
	t.ConsumedAt = &now
	cp := *t
	return &cp, nil
}
