// Package payments talks to the card payment gateway.
package payments

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
)

// Gateway creates payment intents the client completes with the returned secret.
type Gateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (string, error)
}

// Confirmation is the gateway's record of a payment intent.
type Confirmation struct {
	TransactionID string
	AmountMinor   int64
	Currency      string
	Succeeded     bool
}

// StripeClient is a thin wrapper around stripe-go PaymentIntents.
type StripeClient struct{}

// NewStripeClient sets the process-wide stripe key.
func NewStripeClient(secretKey string) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{}
}

// ToMinorUnits converts a major-unit amount into the integer cents stripe expects.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// CreateIntent returns the client secret of a new card PaymentIntent.
func (s *StripeClient) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (string, error) {
	minor := ToMinorUnits(amount)
	if minor <= 0 {
		return "", apperr.BadRequest("amount must be greater than zero")
	}
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(minor),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", apperr.Internal(err, "failed to create payment intent")
	}
	return pi.ClientSecret, nil
}

// Confirm looks up a PaymentIntent so a client-reported payment can be
// checked against what the gateway actually charged.
func (s *StripeClient) Confirm(ctx context.Context, transactionID string) (*Confirmation, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(transactionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, apperr.BadRequest("unknown transaction %s", transactionID)
		}
		return nil, apperr.Internal(err, "failed to confirm payment")
	}
	return &Confirmation{
		TransactionID: pi.ID,
		AmountMinor:   pi.Amount,
		Currency:      string(pi.Currency),
		Succeeded:     pi.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}
