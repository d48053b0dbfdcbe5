package billing

import (
	"fmt"
	"sync"
	"time"
)

// FakeSubscriptionRepository is an in-memory SubscriptionRepository for
// tests, enforcing the one-row-per-tenant invariant.
type FakeSubscriptionRepository struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*Subscription // keyed by tenant id
}

func NewFakeSubscriptionRepository() *FakeSubscriptionRepository {
	return &FakeSubscriptionRepository{nextID: 1, rows: make(map[uint]*Subscription)}
}

func (f *FakeSubscriptionRepository) Create(s *Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.rows[s.TenantID]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint on tenant %d", s.TenantID)
	}
	s.ID = f.nextID
	f.nextID++
	f.rows[s.TenantID] = s
	return nil
}

func (f *FakeSubscriptionRepository) GetByTenant(tenantID uint) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[tenantID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *FakeSubscriptionRepository) ApplyCheckoutCompleted(tenantID uint, customerID, subscriptionID, plan string, currentPeriodEnd *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[tenantID]
	if !ok {
		return nil // matches the SQL UPDATE touching zero rows
	}
	s.ProcessorCustomerID = customerID
	s.ProcessorSubscriptionID = &subscriptionID
	s.Plan = plan
	s.Status = StatusActive
	s.CurrentPeriodEnd = currentPeriodEnd
	return nil
}

func (f *FakeSubscriptionRepository) MarkCanceled(tenantID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.rows[tenantID]; ok {
		s.Status = StatusCanceled
	}
	return nil
}

// FakeProcessor is a deterministic processor stub. Set Fail to simulate an
// unreachable processor.
type FakeProcessor struct {
	mu        sync.Mutex
	Fail      bool
	customers int
	sessions  int

	// LastCheckoutMetadata captures the metadata attached to the most
	// recent checkout session for assertions.
	LastCheckoutMetadata map[string]string
}

func NewFakeProcessor() *FakeProcessor { return &FakeProcessor{} }

func (p *FakeProcessor) CreateCustomer(email, name string, metadata map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return "", fmt.Errorf("processor unreachable")
	}
	p.customers++
	return fmt.Sprintf("cus_fake_%d", p.customers), nil
}

func (p *FakeProcessor) CreateCheckoutSession(customerID, priceRef, successURL, cancelURL string, metadata map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return "", fmt.Errorf("processor unreachable")
	}
	p.sessions++
	p.LastCheckoutMetadata = metadata
	return fmt.Sprintf("https://checkout.example.com/s/%d", p.sessions), nil
}
