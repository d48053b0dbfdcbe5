package identity

import (
	"fmt"
	"sync"
)

// Fake is a deterministic in-memory identity collaborator for tests and
// local development. Ids are allocated sequentially per email.
type Fake struct {
	mu       sync.Mutex
	nextID   uint
	byEmail  map[string]uint
	Verified map[uint]bool
}

func NewFake() *Fake {
	return &Fake{
		nextID:   1,
		byEmail:  make(map[string]uint),
		Verified: make(map[uint]bool),
	}
}

func (f *Fake) EnsureUser(email, password string, profile Profile) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byEmail[email]; ok {
		return id, nil
	}
	id := f.nextID
	f.nextID++
	f.byEmail[email] = id
	return id, nil
}

func (f *Fake) MarkUserVerified(userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if userID == 0 {
		return fmt.Errorf("identity: unknown user %d", userID)
	}
	f.Verified[userID] = true
	return nil
}
