package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
)

// ErrInvalidSignature marks a webhook payload that failed cryptographic
// verification. The endpoint maps it to 400; nothing is parsed or applied.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// ErrNoCustomer is returned when checkout is requested for a tenant without
// a processor customer record.
var ErrNoCustomer = errors.New("no billing customer for this organization")

// TenantMetadataKey is the metadata key carrying the tenant id on processor
// objects.
const TenantMetadataKey = "tenant_id"

// Service keeps tenant subscription state synchronized with the processor.
type Service struct {
	subs          SubscriptionRepository
	processor     Processor
	recorder      audit.Recorder
	webhookSecret string
	baseURL       string
}

func NewService(subs SubscriptionRepository, processor Processor, recorder audit.Recorder, webhookSecret, baseURL string) *Service {
	return &Service{
		subs:          subs,
		processor:     processor,
		recorder:      recorder,
		webhookSecret: webhookSecret,
		baseURL:       baseURL,
	}
}

// OpenCustomer creates the processor-side customer for a tenant being
// onboarded. Called before any local rows are written so a processor
// failure aborts onboarding with nothing to unwind.
func (s *Service) OpenCustomer(contactEmail, orgName string) (string, error) {
	return s.processor.CreateCustomer(contactEmail, orgName, map[string]string{"source": "onboarding"})
}

// InitializeSubscription writes the tenant's subscription row: free plan,
// inactive, carrying the processor customer id.
func (s *Service) InitializeSubscription(tenantID uint, customerID string) error {
	return s.subs.Create(&Subscription{
		TenantID:            tenantID,
		ProcessorCustomerID: customerID,
		Plan:                PlanFree,
		Status:              StatusInactive,
	})
}

// CreateCheckoutSession opens a processor checkout session for the tenant,
// attaching the tenant id as opaque metadata so the asynchronous completion
// event can be correlated back.
func (s *Service) CreateCheckoutSession(tenantID uint, priceRef string) (string, error) {
	sub, err := s.subs.GetByTenant(tenantID)
	if err != nil {
		return "", err
	}
	if sub == nil || sub.ProcessorCustomerID == "" {
		return "", ErrNoCustomer
	}

	metadata := map[string]string{TenantMetadataKey: strconv.FormatUint(uint64(tenantID), 10)}
	successURL := s.baseURL + "/billing/success"
	cancelURL := s.baseURL + "/billing/cancelled"

	return s.processor.CreateCheckoutSession(sub.ProcessorCustomerID, priceRef, successURL, cancelURL, metadata)
}

// ApplyWebhookEvent verifies the signature over the exact raw bytes received
// and applies the event. Recognized kinds update subscription state with an
// absolute write; unrecognized kinds are accepted and ignored so the
// processor does not retry them forever. Redelivery of an applied event is a
// no-op by construction.
func (s *Service) ApplyWebhookEvent(payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.applyCheckoutCompleted(event)
	case "customer.subscription.deleted", "customer.subscription.paused":
		return s.applySubscriptionEnded(event)
	default:
		log.Printf("billing: ignoring webhook event kind %s", event.Type)
		return nil
	}
}

func (s *Service) applyCheckoutCompleted(event stripe.Event) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return fmt.Errorf("billing: decode checkout session: %w", err)
	}

	tenantID, ok := tenantFromMetadata(cs.Metadata)
	if !ok {
		// Sessions created outside this system have no tenant id; not an
		// error, just not ours to apply.
		log.Printf("billing: checkout.session.completed %s without tenant metadata, ignoring", cs.ID)
		return nil
	}

	var customerID, subscriptionID string
	if cs.Customer != nil {
		customerID = cs.Customer.ID
	}
	if cs.Subscription != nil {
		subscriptionID = cs.Subscription.ID
	}

	if err := s.subs.ApplyCheckoutCompleted(tenantID, customerID, subscriptionID, PlanClub, nil); err != nil {
		return err
	}
	s.recorder.Record(tenantID, 0, audit.EventSubscriptionSync, 0, map[string]interface{}{
		"event":        string(event.Type),
		"subscription": subscriptionID,
		"status":       StatusActive,
	})
	return nil
}

func (s *Service) applySubscriptionEnded(event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("billing: decode subscription: %w", err)
	}

	tenantID, ok := tenantFromMetadata(sub.Metadata)
	if !ok {
		log.Printf("billing: %s for %s without tenant metadata, ignoring", event.Type, sub.ID)
		return nil
	}

	if err := s.subs.MarkCanceled(tenantID); err != nil {
		return err
	}
	s.recorder.Record(tenantID, 0, audit.EventSubscriptionSync, 0, map[string]interface{}{
		"event":  string(event.Type),
		"status": StatusCanceled,
	})
	return nil
}

func tenantFromMetadata(metadata map[string]string) (uint, bool) {
	raw, ok := metadata[TenantMetadataKey]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
