package delivery

import (
	"context"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/events"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/internal/observability"
)

// Cashouts pays riders their earning for delivered parcels, once per parcel.
type Cashouts struct {
	deps Deps
}

func NewCashouts(deps Deps) *Cashouts {
	return &Cashouts{deps: deps.withDefaults()}
}

// Cashout records the payout for a parcel the rider delivered. The ledger's
// unique parcel index decides the winner among concurrent duplicates.
func (c *Cashouts) Cashout(ctx context.Context, parcelID uint, rider models.Identity) (*models.Cashout, error) {
	parcel, err := c.deps.Store.Parcels.Get(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if !parcel.AssignedTo(rider.Email) {
		return nil, apperr.NotFound("parcel %d is not assigned to you", parcelID)
	}
	if parcel.DeliveryStatus != models.DeliveryDelivered || !parcel.RiderEarning.Valid {
		return nil, apperr.NotFound("parcel %d is not delivered yet", parcelID)
	}

	now := c.deps.Now()
	cashout := &models.Cashout{
		ParcelID:    parcel.ID,
		RiderEmail:  rider.Email,
		RiderName:   parcel.RiderName,
		ParcelName:  parcel.ParcelName,
		TrackingID:  parcel.TrackingID,
		Earning:     parcel.RiderEarning.Decimal,
		CashedOutAt: now,
	}
	ok, err := c.deps.Store.Cashouts.Insert(ctx, cashout)
	if err != nil {
		return nil, err
	}
	if !ok {
		observability.TransitionConflicts.WithLabelValues("cashout").Inc()
		return nil, apperr.Conflict("parcel %d is already cashed out", parcelID)
	}

	observability.CashoutsRecorded.Inc()
	c.deps.Log.Info("rider cashed out",
		"parcel_id", parcel.ID,
		"rider_email", rider.Email,
		"earning", cashout.Earning.String(),
	)
	evt := parcelEvent(events.ParcelCashedOut, parcel, now)
	evt.Amount = &cashout.Earning
	c.deps.Publisher.Publish(ctx, evt)
	return cashout, nil
}

// List returns the cashouts of riderEmail; an empty email lists every rider's.
func (c *Cashouts) List(ctx context.Context, riderEmail string) ([]models.Cashout, error) {
	return c.deps.Store.Cashouts.ListByRider(ctx, riderEmail)
}

// Summary totals what riderEmail has earned and cashed out.
func (c *Cashouts) Summary(ctx context.Context, riderEmail string) (*models.EarningSummary, error) {
	delivered, earned, err := c.deps.Store.Parcels.DeliveredTotals(ctx, riderEmail)
	if err != nil {
		return nil, err
	}
	cashedOut, err := c.deps.Store.Cashouts.Total(ctx, riderEmail)
	if err != nil {
		return nil, err
	}
	return &models.EarningSummary{
		RiderEmail:     riderEmail,
		Delivered:      delivered,
		TotalEarned:    earned,
		TotalCashedOut: cashedOut,
		Pending:        earned.Sub(cashedOut),
	}, nil
}
