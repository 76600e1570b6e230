package payments

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeClient verifies card payments made through Stripe PaymentIntents.
type StripeClient struct {
	api *client.API
}

func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{api: client.New(secretKey, nil)}
}

// Verify checks that the PaymentIntent succeeded for the expected amount.
func (s *StripeClient) Verify(ctx context.Context, intentID string, amount float64, currency string) (*Verification, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: intent %s is %s", ErrPaymentNotCompleted, intentID, pi.Status)
	}

	paid := float64(pi.AmountReceived) / 100
	if pi.AmountReceived != toMinorUnits(amount) || !strings.EqualFold(string(pi.Currency), currency) {
		return nil, fmt.Errorf("%w: got %.2f %s, want %.2f %s", ErrAmountMismatch, paid, pi.Currency, amount, currency)
	}

	return &Verification{
		Reference: pi.ID,
		Status:    string(pi.Status),
		Amount:    paid,
		Currency:  strings.ToUpper(string(pi.Currency)),
		Raw: map[string]interface{}{
			"provider":  "stripe",
			"intent_id": pi.ID,
			"status":    string(pi.Status),
		},
	}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
