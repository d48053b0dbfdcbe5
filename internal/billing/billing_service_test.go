package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/audit"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload produces a Stripe-Signature header over payload, the same
// t=...,v1=... scheme the processor uses.
func signPayload(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutCompletedPayload(tenantID uint) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_checkout_1",
		"object": "event",
		"api_version": "2025-03-31",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"object": "checkout.session",
				"customer": "cus_test_42",
				"subscription": "sub_test_42",
				"metadata": {"tenant_id": "%d"}
			}
		}
	}`, tenantID))
}

func subscriptionDeletedPayload(tenantID uint) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_subdel_1",
		"object": "event",
		"api_version": "2025-03-31",
		"type": "customer.subscription.deleted",
		"data": {
			"object": {
				"id": "sub_test_42",
				"object": "subscription",
				"metadata": {"tenant_id": "%d"}
			}
		}
	}`, tenantID))
}

func newTestBilling() (*Service, *FakeSubscriptionRepository, *FakeProcessor, *audit.CaptureRecorder) {
	subs := NewFakeSubscriptionRepository()
	proc := NewFakeProcessor()
	rec := audit.NewCaptureRecorder()
	svc := NewService(subs, proc, rec, testWebhookSecret, "https://app.example.com")
	return svc, subs, proc, rec
}

func TestApplyWebhookCheckoutCompleted(t *testing.T) {
	svc, subs, _, rec := newTestBilling()
	require.NoError(t, svc.InitializeSubscription(7, "cus_initial"))

	payload := checkoutCompletedPayload(7)
	sig := signPayload(payload, testWebhookSecret, time.Now())

	require.NoError(t, svc.ApplyWebhookEvent(payload, sig))

	sub, err := subs.GetByTenant(7)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, PlanClub, sub.Plan)
	assert.Equal(t, "cus_test_42", sub.ProcessorCustomerID)
	require.NotNil(t, sub.ProcessorSubscriptionID)
	assert.Equal(t, "sub_test_42", *sub.ProcessorSubscriptionID)

	assert.Len(t, rec.ByType(audit.EventSubscriptionSync), 1)
}

func TestApplyWebhookIsIdempotent(t *testing.T) {
	svc, subs, _, _ := newTestBilling()
	require.NoError(t, svc.InitializeSubscription(7, "cus_initial"))

	payload := checkoutCompletedPayload(7)

	// The channel is at-least-once: the same event arrives twice with
	// fresh signatures.
	require.NoError(t, svc.ApplyWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now())))
	first, err := subs.GetByTenant(7)
	require.NoError(t, err)

	require.NoError(t, svc.ApplyWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now())))
	second, err := subs.GetByTenant(7)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Plan, second.Plan)
	assert.Equal(t, *first.ProcessorSubscriptionID, *second.ProcessorSubscriptionID)
}

func TestApplyWebhookSubscriptionDeleted(t *testing.T) {
	svc, subs, _, _ := newTestBilling()
	require.NoError(t, svc.InitializeSubscription(7, "cus_initial"))

	payload := subscriptionDeletedPayload(7)
	require.NoError(t, svc.ApplyWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now())))

	sub, err := subs.GetByTenant(7)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, sub.Status)
}

func TestApplyWebhookRejectsBadSignature(t *testing.T) {
	svc, subs, _, _ := newTestBilling()
	require.NoError(t, svc.InitializeSubscription(7, "cus_initial"))

	payload := checkoutCompletedPayload(7)

	err := svc.ApplyWebhookEvent(payload, signPayload(payload, "whsec_wrong", time.Now()))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	err = svc.ApplyWebhookEvent(payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// No mutation happened before verification.
	sub, err := subs.GetByTenant(7)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, sub.Status)
	assert.Equal(t, "cus_initial", sub.ProcessorCustomerID)
}

func TestApplyWebhookIgnoresUnknownKind(t *testing.T) {
	svc, subs, _, _ := newTestBilling()
	require.NoError(t, svc.InitializeSubscription(7, "cus_initial"))

	payload := []byte(`{
		"id": "evt_new_1",
		"object": "event",
		"api_version": "2025-03-31",
		"type": "invoice.finalization_failed",
		"data": {"object": {"id": "in_1", "object": "invoice"}}
	}`)

	// New event kinds must be accepted, otherwise the processor retries
	// them forever.
	assert.NoError(t, svc.ApplyWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now())))

	sub, err := subs.GetByTenant(7)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, sub.Status)
}

func TestApplyWebhookIgnoresForeignSession(t *testing.T) {
	svc, _, _, rec := newTestBilling()

	payload := []byte(`{
		"id": "evt_foreign",
		"object": "event",
		"api_version": "2025-03-31",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_foreign", "object": "checkout.session", "metadata": {}}}
	}`)

	assert.NoError(t, svc.ApplyWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now())))
	assert.Empty(t, rec.Events())
}

func TestCreateCheckoutSession(t *testing.T) {
	svc, _, proc, _ := newTestBilling()
	require.NoError(t, svc.InitializeSubscription(9, "cus_9"))

	url, err := svc.CreateCheckoutSession(9, "price_club_monthly")
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, "9", proc.LastCheckoutMetadata[TenantMetadataKey])
}

func TestCreateCheckoutSessionWithoutCustomer(t *testing.T) {
	svc, _, _, _ := newTestBilling()
	_, err := svc.CreateCheckoutSession(404, "price_club_monthly")
	assert.ErrorIs(t, err, ErrNoCustomer)
}
