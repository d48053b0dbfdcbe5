package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
)

// Processor is the outbound face of the payment processor: open a customer
// at onboarding, open a checkout session on demand. Everything else arrives
// through the webhook channel.
type Processor interface {
	CreateCustomer(email, name string, metadata map[string]string) (customerID string, err error)
	CreateCheckoutSession(customerID, priceRef, successURL, cancelURL string, metadata map[string]string) (redirectURL string, err error)
}

// StripeProcessor implements Processor against the Stripe API.
type StripeProcessor struct{}

// NewStripeProcessor configures the global Stripe client key and returns the
// processor.
func NewStripeProcessor(secretKey string) *StripeProcessor {
	stripe.Key = secretKey
	return &StripeProcessor{}
}

func (p *StripeProcessor) CreateCustomer(email, name string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.SetIdempotencyKey(uuid.NewString())

	cus, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create customer: %w", err)
	}
	return cus.ID, nil
}

func (p *StripeProcessor) CreateCheckoutSession(customerID, priceRef, successURL, cancelURL string, metadata map[string]string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceRef),
				Quantity: stripe.Int64(1),
			},
		},
		// Metadata rides on both the session and the subscription it
		// creates, so every later webhook event can be correlated back to
		// the tenant without a lookup table.
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.SetIdempotencyKey(uuid.NewString())

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return s.URL, nil
}
