package delivery

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/events"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/internal/observability"
	"github.com/chachabrian/mooveit-parcels/internal/repository"
	"github.com/chachabrian/mooveit-parcels/pkg/utils"
)

// Lifecycle drives a parcel through pending, assigned, on_the_way and delivered,
// and records its payment.
type Lifecycle struct {
	deps Deps
}

func NewLifecycle(deps Deps) *Lifecycle {
	return &Lifecycle{deps: deps.withDefaults()}
}

// Create stores a new unpaid, pending parcel owned by creator.
func (l *Lifecycle) Create(ctx context.Context, p *models.Parcel, creator models.Identity) (*models.Parcel, error) {
	if p.ParcelName == "" || p.SenderDistrict == "" || p.ReceiverDistrict == "" {
		return nil, apperr.BadRequest("parcelName, senderDistrict and receiverDistrict are required")
	}
	if !p.Cost.IsPositive() {
		return nil, apperr.BadRequest("cost must be greater than zero")
	}

	now := l.deps.Now()
	p.ID = 0
	p.TrackingID = utils.NewTrackingID(now)
	p.CreatedBy = creator.Email
	p.PaymentStatus = models.PaymentUnpaid
	p.DeliveryStatus = models.DeliveryPending
	p.RiderID = nil
	p.RiderName, p.RiderEmail, p.RiderPhone = "", "", ""
	p.AssignedAt, p.PickedAt, p.DeliveredAt, p.PaidAt = nil, nil, nil, nil
	p.RiderEarning = decimal.NullDecimal{}

	err := l.deps.Store.WithTx(ctx, func(tx *repository.Store) error {
		if err := tx.Parcels.Create(ctx, p); err != nil {
			return err
		}
		return tx.Tracking.Append(ctx, &models.TrackingLog{
			TrackingID: p.TrackingID,
			ParcelID:   &p.ID,
			Status:     string(events.ParcelCreated),
			Message:    "Parcel created",
			UpdatedBy:  creator.Email,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	l.deps.Log.Info("parcel created", "parcel_id", p.ID, "tracking_id", p.TrackingID, "created_by", p.CreatedBy)
	l.deps.Publisher.Publish(ctx, parcelEvent(events.ParcelCreated, p, now))
	return p, nil
}

func (l *Lifecycle) Get(ctx context.Context, id uint) (*models.Parcel, error) {
	return l.deps.Store.Parcels.Get(ctx, id)
}

func (l *Lifecycle) List(ctx context.Context, f models.ParcelFilter) ([]models.Parcel, error) {
	if f.PaymentStatus != "" && !f.PaymentStatus.IsValid() {
		return nil, apperr.BadRequest("unknown payment_status %q", f.PaymentStatus)
	}
	if f.DeliveryStatus != "" && !f.DeliveryStatus.IsValid() {
		return nil, apperr.BadRequest("unknown delivery_status %q", f.DeliveryStatus)
	}
	return l.deps.Store.Parcels.List(ctx, f)
}

func (l *Lifecycle) Delete(ctx context.Context, id uint, admin models.Identity) error {
	if err := l.deps.Store.Parcels.Delete(ctx, id); err != nil {
		return err
	}
	l.deps.Log.Info("parcel deleted", "parcel_id", id, "deleted_by", admin.Email)
	return nil
}

// Assign binds an approved rider to a pending parcel, copying the rider's
// contact details onto it.
func (l *Lifecycle) Assign(ctx context.Context, parcelID, riderID uint, admin models.Identity) (*models.Parcel, error) {
	var parcel *models.Parcel
	now := l.deps.Now()

	err := l.deps.Store.WithTx(ctx, func(tx *repository.Store) error {
		rider, err := tx.Riders.Get(ctx, riderID)
		if err != nil {
			return err
		}
		if rider.Status != models.RiderApproved {
			return apperr.Conflict("rider %d is %s, only approved riders can be assigned", riderID, rider.Status)
		}

		ok, err := tx.Parcels.Transition(ctx, parcelID, models.DeliveryAssigned, repository.Guard{}, map[string]any{
			"rider_id":    rider.ID,
			"rider_name":  rider.Name,
			"rider_email": rider.Email,
			"rider_phone": rider.Phone,
			"assigned_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return explainMiss(ctx, tx, parcelID, "", models.DeliveryAssigned)
		}

		if parcel, err = tx.Parcels.Get(ctx, parcelID); err != nil {
			return err
		}
		return tx.Tracking.Append(ctx, &models.TrackingLog{
			TrackingID: parcel.TrackingID,
			ParcelID:   &parcel.ID,
			Status:     string(models.DeliveryAssigned),
			Message:    fmt.Sprintf("Assigned to rider %s", rider.Name),
			UpdatedBy:  admin.Email,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	l.committed(ctx, events.ParcelAssigned, parcel, now)
	return parcel, nil
}

// Pick records that the assigned rider has collected the parcel.
func (l *Lifecycle) Pick(ctx context.Context, parcelID uint, rider models.Identity) (*models.Parcel, error) {
	var parcel *models.Parcel
	now := l.deps.Now()

	err := l.deps.Store.WithTx(ctx, func(tx *repository.Store) error {
		ok, err := tx.Parcels.Transition(ctx, parcelID, models.DeliveryOnTheWay, repository.Guard{RiderEmail: rider.Email}, map[string]any{
			"picked_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return explainMiss(ctx, tx, parcelID, rider.Email, models.DeliveryOnTheWay)
		}

		if parcel, err = tx.Parcels.Get(ctx, parcelID); err != nil {
			return err
		}
		return tx.Tracking.Append(ctx, &models.TrackingLog{
			TrackingID: parcel.TrackingID,
			ParcelID:   &parcel.ID,
			Status:     string(models.DeliveryOnTheWay),
			Message:    "Picked up by rider",
			UpdatedBy:  rider.Email,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	l.committed(ctx, events.ParcelPicked, parcel, now)
	return parcel, nil
}

// Deliver completes a parcel carried by rider and fixes the rider's earning.
func (l *Lifecycle) Deliver(ctx context.Context, parcelID uint, rider models.Identity) (*models.Parcel, error) {
	var parcel *models.Parcel
	now := l.deps.Now()

	err := l.deps.Store.WithTx(ctx, func(tx *repository.Store) error {
		current, err := tx.Parcels.Get(ctx, parcelID)
		if err != nil {
			return err
		}
		if !current.AssignedTo(rider.Email) {
			return apperr.NotFound("parcel %d is not assigned to you", parcelID)
		}

		earning := models.RiderEarning(current.Cost, current.SenderDistrict, current.ReceiverDistrict)
		ok, err := tx.Parcels.Transition(ctx, parcelID, models.DeliveryDelivered, repository.Guard{RiderEmail: rider.Email}, map[string]any{
			"delivered_at":  now,
			"rider_earning": earning,
		})
		if err != nil {
			return err
		}
		if !ok {
			return explainMiss(ctx, tx, parcelID, rider.Email, models.DeliveryDelivered)
		}

		if parcel, err = tx.Parcels.Get(ctx, parcelID); err != nil {
			return err
		}
		return tx.Tracking.Append(ctx, &models.TrackingLog{
			TrackingID: parcel.TrackingID,
			ParcelID:   &parcel.ID,
			Status:     string(models.DeliveryDelivered),
			Message:    "Delivered to receiver",
			UpdatedBy:  rider.Email,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	l.committed(ctx, events.ParcelDelivered, parcel, now)
	return parcel, nil
}

// UpdateRiderStatus applies the rider-driven transition named by target.
func (l *Lifecycle) UpdateRiderStatus(ctx context.Context, parcelID uint, rider models.Identity, target models.DeliveryStatus) (*models.Parcel, error) {
	switch target {
	case models.DeliveryOnTheWay:
		return l.Pick(ctx, parcelID, rider)
	case models.DeliveryDelivered:
		return l.Deliver(ctx, parcelID, rider)
	default:
		return nil, apperr.BadRequest("riders can only set delivery_status to %s or %s", models.DeliveryOnTheWay, models.DeliveryDelivered)
	}
}

// AttachImage uploads a photo of the parcel. Only its creator or an admin may do so.
func (l *Lifecycle) AttachImage(ctx context.Context, parcelID uint, file *multipart.FileHeader, caller models.Identity) (*models.Parcel, error) {
	if l.deps.Uploader == nil {
		return nil, apperr.Internal(nil, "image storage is not configured")
	}
	parcel, err := l.deps.Store.Parcels.Get(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if parcel.CreatedBy != caller.Email && !caller.IsAdmin() {
		return nil, apperr.Forbidden("only the parcel owner can attach an image")
	}

	url, err := l.deps.Uploader.UploadImage(ctx, file, "parcels")
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Internal(err, "failed to upload image")
	}
	if err := l.deps.Store.Parcels.SetImage(ctx, parcelID, url); err != nil {
		return nil, err
	}
	parcel.ParcelImage = url
	return parcel, nil
}

func (l *Lifecycle) committed(ctx context.Context, t events.Type, p *models.Parcel, at time.Time) {
	observability.ParcelTransitions.WithLabelValues(string(p.DeliveryStatus)).Inc()
	l.deps.Log.Info("parcel transition",
		"event", t,
		"parcel_id", p.ID,
		"status", p.DeliveryStatus,
		"rider_email", p.RiderEmail,
	)
	l.deps.Publisher.Publish(ctx, parcelEvent(t, p, at))
}
