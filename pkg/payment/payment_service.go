package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// ServiceInterface is the payment boundary the order coordinator calls for
// non-COD orders. The returned string is the provider's intent identifier.
type ServiceInterface interface {
	Authorize(ctx context.Context, userID string, amount float64, method string) (string, error)
}

// StripeService creates a PaymentIntent for the order total. Amounts are
// rupees; Stripe wants paise.
type StripeService struct{}

func NewStripeService(apiKey string) *StripeService {
	stripe.Key = apiKey
	return &StripeService{}
}

func (s *StripeService) Authorize(ctx context.Context, userID string, amount float64, method string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("payment.Authorize: invalid amount %.2f", amount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(string(stripe.CurrencyINR)),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card", "upi",
		}),
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("method", method)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("payment.Authorize: %w", err)
	}
	return intent.ID, nil
}
