// Package delivery owns the parcel delivery lifecycle, rider approval and
// rider earning bookkeeping. Every transition is a conditional write in the
// repository layer, so concurrent duplicate requests cannot both succeed.
package delivery

import (
	"context"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/events"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/internal/observability"
	"github.com/chachabrian/mooveit-parcels/internal/payments"
	"github.com/chachabrian/mooveit-parcels/internal/repository"
)

// Publisher receives committed parcel events.
type Publisher interface {
	Publish(ctx context.Context, e events.ParcelEvent)
}

// ImageUploader stores an uploaded file and returns its URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
}

// PaymentConfirmer looks a transaction up at the card gateway. When nil,
// payments are recorded on the client's word.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, transactionID string) (*payments.Confirmation, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.ParcelEvent) {}

// Deps are the collaborators shared by the delivery services.
type Deps struct {
	Store     *repository.Store
	Publisher Publisher
	Uploader  ImageUploader
	Confirmer PaymentConfirmer
	Log       *slog.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func parcelEvent(t events.Type, p *models.Parcel, at time.Time) events.ParcelEvent {
	return events.ParcelEvent{
		Type:       t,
		ParcelID:   p.ID,
		TrackingID: p.TrackingID,
		ParcelName: p.ParcelName,
		Status:     string(p.DeliveryStatus),
		CreatedBy:  p.CreatedBy,
		RiderEmail: p.RiderEmail,
		RiderName:  p.RiderName,
		Receiver:   p.ReceiverPhone,
		At:         at,
	}
}

// explainMiss turns a conditional write that matched nothing into the error
// the caller should see. riderEmail is empty for transitions not owned by a rider.
func explainMiss(ctx context.Context, store *repository.Store, id uint, riderEmail string, target models.DeliveryStatus) error {
	parcel, err := store.Parcels.Get(ctx, id)
	if err != nil {
		return err
	}
	if riderEmail != "" && !parcel.AssignedTo(riderEmail) {
		return apperr.NotFound("parcel %d is not assigned to you", id)
	}

	observability.TransitionConflicts.WithLabelValues(string(target)).Inc()
	if parcel.DeliveryStatus == target {
		return apperr.Conflict("parcel is already %s", target)
	}
	return apperr.Conflict("parcel is %s and cannot move to %s", parcel.DeliveryStatus, target)
}
