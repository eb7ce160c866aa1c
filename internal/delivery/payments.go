package delivery

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/events"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/internal/observability"
	"github.com/chachabrian/mooveit-parcels/internal/repository"
)

// PaymentInput is a payment confirmed by the card gateway. AmountMinor is in
// minor currency units (cents), exactly as the gateway reports it.
type PaymentInput struct {
	ParcelID      uint
	Email         string
	TransactionID string
	AmountMinor   int64
	Currency      string
	Method        string
}

// MinorToMajor converts a gateway amount in minor units into the ledger amount.
func MinorToMajor(amountMinor int64) decimal.Decimal {
	return decimal.New(amountMinor, -2)
}

// RecordPayment marks the parcel paid and appends the payment to the ledger
// in one transaction. Only the parcel's creator pays, the amount must equal
// the parcel cost and, with a Confirmer, the gateway must agree.
func (l *Lifecycle) RecordPayment(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	var missing []string
	if in.ParcelID == 0 {
		missing = append(missing, "parcelId")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.TransactionID == "" {
		missing = append(missing, "transactionId")
	}
	if in.AmountMinor <= 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, apperr.BadRequest("missing required fields: %s", strings.Join(missing, ", "))
	}
	if in.Currency == "" {
		in.Currency = "usd"
	}
	if in.Method == "" {
		in.Method = "card"
	}

	current, err := l.deps.Store.Parcels.Get(ctx, in.ParcelID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(current.CreatedBy, in.Email) {
		return nil, apperr.Forbidden("only the sender of parcel %d can pay for it", in.ParcelID)
	}
	amount := MinorToMajor(in.AmountMinor)
	if !amount.Equal(current.Cost) {
		return nil, apperr.BadRequest("amount %s does not match parcel cost %s", amount, current.Cost)
	}
	if err := l.confirmPayment(ctx, in); err != nil {
		return nil, err
	}

	now := l.deps.Now()
	payment := &models.Payment{
		ParcelID:      in.ParcelID,
		Email:         in.Email,
		TransactionID: in.TransactionID,
		Amount:        amount,
		Currency:      in.Currency,
		Method:        in.Method,
		PaidAt:        now,
	}
	var parcel *models.Parcel

	err = l.deps.Store.WithTx(ctx, func(tx *repository.Store) error {
		ok, err := tx.Parcels.MarkPaid(ctx, in.ParcelID, now)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := tx.Parcels.Get(ctx, in.ParcelID); err != nil {
				return err
			}
			observability.TransitionConflicts.WithLabelValues("payment").Inc()
			return apperr.Conflict("parcel %d is already paid", in.ParcelID)
		}

		inserted, err := tx.Payments.Insert(ctx, payment)
		if err != nil {
			return err
		}
		if !inserted {
			return apperr.Conflict("transaction %s is already recorded", in.TransactionID)
		}

		if parcel, err = tx.Parcels.Get(ctx, in.ParcelID); err != nil {
			return err
		}
		return tx.Tracking.Append(ctx, &models.TrackingLog{
			TrackingID: parcel.TrackingID,
			ParcelID:   &parcel.ID,
			Status:     string(models.PaymentPaid),
			Message:    "Payment received, awaiting rider assignment",
			UpdatedBy:  in.Email,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	observability.PaymentsRecorded.Inc()
	l.deps.Log.Info("payment recorded",
		"parcel_id", in.ParcelID,
		"transaction_id", in.TransactionID,
		"amount", payment.Amount.String(),
	)
	evt := parcelEvent(events.ParcelPaid, parcel, now)
	evt.Amount = &payment.Amount
	l.deps.Publisher.Publish(ctx, evt)
	return payment, nil
}

func (l *Lifecycle) confirmPayment(ctx context.Context, in PaymentInput) error {
	if l.deps.Confirmer == nil {
		return nil
	}
	c, err := l.deps.Confirmer.Confirm(ctx, in.TransactionID)
	if err != nil {
		return err
	}
	if !c.Succeeded {
		return apperr.BadRequest("transaction %s has not succeeded", in.TransactionID)
	}
	if c.AmountMinor != in.AmountMinor || !strings.EqualFold(c.Currency, in.Currency) {
		return apperr.BadRequest("transaction %s does not match the reported amount", in.TransactionID)
	}
	return nil
}

// Payments lists the payment ledger, optionally for one payer.
func (l *Lifecycle) Payments(ctx context.Context, email string) ([]models.Payment, error) {
	return l.deps.Store.Payments.List(ctx, email)
}
