package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

type Payments struct {
	db *gorm.DB
}

// Insert appends p. It reports false when a payment for the same parcel or
// transaction id already exists.
func (r *Payments) Insert(ctx context.Context, p *models.Payment) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "failed to record payment")
	}
	return res.RowsAffected == 1, nil
}

// List returns payments newest first, optionally only those of email.
func (r *Payments) List(ctx context.Context, email string) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).Model(&models.Payment{})
	if email != "" {
		q = q.Where("email = ?", email)
	}
	var payments []models.Payment
	if err := q.Order("paid_at DESC").Order("id DESC").Find(&payments).Error; err != nil {
		return nil, apperr.Internal(err, "failed to fetch payments")
	}
	return payments, nil
}

type Cashouts struct {
	db *gorm.DB
}

// Insert appends c. It reports false when the parcel was already cashed out.
func (r *Cashouts) Insert(ctx context.Context, c *models.Cashout) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "parcel_id"}},
		DoNothing: true,
	}).Create(c)
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "failed to record cashout")
	}
	return res.RowsAffected == 1, nil
}

// ListByRider returns the cashouts of riderEmail newest first. An empty email lists all.
func (r *Cashouts) ListByRider(ctx context.Context, riderEmail string) ([]models.Cashout, error) {
	q := r.db.WithContext(ctx).Model(&models.Cashout{}).
		Select("id", "parcel_id", "rider_email", "rider_name", "parcel_name", "tracking_id", "earning", "cashed_out_at")
	if riderEmail != "" {
		q = q.Where("rider_email = ?", riderEmail)
	}
	var cashouts []models.Cashout
	if err := q.Order("cashed_out_at DESC").Order("id DESC").Find(&cashouts).Error; err != nil {
		return nil, apperr.Internal(err, "failed to fetch cashouts")
	}
	return cashouts, nil
}

func (r *Cashouts) Total(ctx context.Context, riderEmail string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&models.Cashout{}).
		Select("SUM(earning) AS total").
		Where("rider_email = ?", riderEmail).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, apperr.Internal(err, "failed to total cashouts")
	}
	return row.Total.Decimal, nil
}

type Tracking struct {
	db *gorm.DB
}

func (r *Tracking) Append(ctx context.Context, entry *models.TrackingLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperr.Internal(err, "failed to append tracking log")
	}
	return nil
}

// History returns the log of trackingID oldest first.
func (r *Tracking) History(ctx context.Context, trackingID string) ([]models.TrackingLog, error) {
	var logs []models.TrackingLog
	err := r.db.WithContext(ctx).
		Where("tracking_id = ?", trackingID).
		Order("created_at ASC").Order("id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch tracking history")
	}
	return logs, nil
}
