package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/delivery"
	"github.com/chachabrian/mooveit-parcels/internal/payments"
)

// PaymentInput carries the gateway's view of a completed payment; Amount is
// in minor units.
type PaymentInput struct {
	ParcelID      uint   `json:"parcelId" binding:"required"`
	TransactionID string `json:"transactionId" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	Currency      string `json:"currency"`
	Method        string `json:"method"`
}

type PaymentIntentInput struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func RecordPayment(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input PaymentInput
		if !bindJSON(c, &input) {
			return
		}

		payment, err := lifecycle.RecordPayment(c.Request.Context(), delivery.PaymentInput{
			ParcelID:      input.ParcelID,
			Email:         caller(c).Email,
			TransactionID: input.TransactionID,
			AmountMinor:   input.Amount,
			Currency:      strings.ToLower(input.Currency),
			Method:        input.Method,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusCreated, "Payment recorded", payment)
	}
}

func ListPayments(lifecycle *delivery.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := lifecycle.Payments(c.Request.Context(), scopedEmail(caller(c), c.Query("email")))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, list)
	}
}

// CreatePaymentIntent starts a card payment and hands the client secret to the app.
func CreatePaymentIntent(gateway payments.Gateway, defaultCurrency string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gateway == nil {
			respondError(c, apperr.Internal(nil, "payments are not configured"))
			return
		}
		var input PaymentIntentInput
		if !bindJSON(c, &input) {
			return
		}
		currency := strings.ToLower(input.Currency)
		if currency == "" {
			currency = defaultCurrency
		}

		secret, err := gateway.CreateIntent(c.Request.Context(), input.Amount, currency)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"clientSecret": secret})
	}
}
