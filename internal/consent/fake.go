package consent

import (
	"errors"
	"sync"
)

var errConsentStore = errors.New("consent store unavailable")

// FakeRepository is an in-memory consent store for workflow tests. Links
// mirror the (tenant, parent, player) upsert semantics.
type FakeRepository struct {
	mu      sync.Mutex
	Fail    bool // when set, RecordConsent fails
	records []Record
	links   []ParentPlayerLink
}

func NewFakeRepository() *FakeRepository { return &FakeRepository{} }

func (f *FakeRepository) RecordConsent(tenantID, minorID, parentID uint, method, policyVersion string, context map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail {
		return errConsentStore
	}
	f.records = append(f.records, Record{
		TenantID:      tenantID,
		MinorUserID:   minorID,
		ParentUserID:  parentID,
		Method:        method,
		PolicyVersion: policyVersion,
	})
	return nil
}

func (f *FakeRepository) LinkParentPlayer(tenantID, parentID, playerID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.TenantID == tenantID && l.ParentUserID == parentID && l.PlayerUserID == playerID {
			return nil
		}
	}
	f.links = append(f.links, ParentPlayerLink{
		TenantID:     tenantID,
		ParentUserID: parentID,
		PlayerUserID: playerID,
	})
	return nil
}

// Records returns a snapshot for assertions.
func (f *FakeRepository) Records() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Record, len(f.records))
	copy(out, f.records)
	return out
}

// Links returns a snapshot for assertions.
func (f *FakeRepository) Links() []ParentPlayerLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ParentPlayerLink, len(f.links))
	copy(out, f.links)
	return out
}
