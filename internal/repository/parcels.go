package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

type Parcels struct {
	db *gorm.DB
}

func (r *Parcels) Create(ctx context.Context, p *models.Parcel) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return apperr.Internal(err, "failed to create parcel")
	}
	return nil
}

func (r *Parcels) Get(ctx context.Context, id uint) (*models.Parcel, error) {
	var parcel models.Parcel
	if err := r.db.WithContext(ctx).First(&parcel, id).Error; err != nil {
		return nil, notFoundOr(err, "parcel")
	}
	return &parcel, nil
}

// List returns the parcels matching f, newest first.
func (r *Parcels) List(ctx context.Context, f models.ParcelFilter) ([]models.Parcel, error) {
	q := r.db.WithContext(ctx).Model(&models.Parcel{})
	if f.CreatedBy != "" {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	if f.RiderEmail != "" {
		q = q.Where("rider_email = ?", f.RiderEmail)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.DeliveryStatus != "" {
		q = q.Where("delivery_status = ?", f.DeliveryStatus)
	}

	var parcels []models.Parcel
	if err := q.Order("created_at DESC").Order("id DESC").Find(&parcels).Error; err != nil {
		return nil, apperr.Internal(err, "failed to fetch parcels")
	}
	return parcels, nil
}

func (r *Parcels) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Parcel{}, id)
	if res.Error != nil {
		return apperr.Internal(res.Error, "failed to delete parcel")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("parcel not found")
	}
	return nil
}

func (r *Parcels) SetImage(ctx context.Context, id uint, url string) error {
	res := r.db.WithContext(ctx).Model(&models.Parcel{}).Where("id = ?", id).Update("parcel_image", url)
	if res.Error != nil {
		return apperr.Internal(res.Error, "failed to save parcel image")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("parcel not found")
	}
	return nil
}

// Guard narrows a transition to parcels bound to a specific rider.
type Guard struct {
	RiderEmail string
}

// Transition moves parcel id into status to, applying updates in the same
// statement. The source status comes from the delivery state machine, so the
// write only matches a parcel that is currently allowed to make the move.
// It reports false when nothing matched.
func (r *Parcels) Transition(ctx context.Context, id uint, to models.DeliveryStatus, guard Guard, updates map[string]any) (bool, error) {
	from, ok := models.SourceOf(to)
	if !ok {
		return false, apperr.BadRequest("cannot move a parcel to %q", to)
	}

	values := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["delivery_status"] = to

	q := r.db.WithContext(ctx).Model(&models.Parcel{}).Where("id = ? AND delivery_status = ?", id, from)
	if guard.RiderEmail != "" {
		q = q.Where("rider_email = ?", guard.RiderEmail)
	}
	res := q.Updates(values)
	if res.Error != nil {
		return false, apperr.Internal(res.Error, fmt.Sprintf("failed to mark parcel %s", to))
	}
	return res.RowsAffected == 1, nil
}

// MarkPaid flips payment_status from unpaid to paid. It reports false when
// the parcel is missing or already paid.
func (r *Parcels) MarkPaid(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Parcel{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentUnpaid).
		Updates(map[string]any{"payment_status": models.PaymentPaid, "paid_at": at})
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "failed to mark parcel paid")
	}
	return res.RowsAffected == 1, nil
}

// DeliveredTotals counts the delivered parcels of a rider and sums their earnings.
func (r *Parcels) DeliveredTotals(ctx context.Context, riderEmail string) (int64, decimal.Decimal, error) {
	var row struct {
		Delivered int64
		Total     decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&models.Parcel{}).
		Select("COUNT(*) AS delivered, SUM(rider_earning) AS total").
		Where("rider_email = ? AND delivery_status = ?", riderEmail, models.DeliveryDelivered).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, apperr.Internal(err, "failed to total rider earnings")
	}
	return row.Delivered, row.Total.Decimal, nil
}
