package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

type Riders struct {
	db *gorm.DB
}

// Create inserts a rider application. It reports false when a rider with the
// same email already exists.
func (r *Riders) Create(ctx context.Context, rider *models.Rider) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rider)
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "failed to save rider")
	}
	return res.RowsAffected == 1, nil
}

func (r *Riders) Get(ctx context.Context, id uint) (*models.Rider, error) {
	var rider models.Rider
	if err := r.db.WithContext(ctx).First(&rider, id).Error; err != nil {
		return nil, notFoundOr(err, "rider")
	}
	return &rider, nil
}

// List returns riders filtered by status and district, newest first.
func (r *Riders) List(ctx context.Context, status models.RiderStatus, district string) ([]models.Rider, error) {
	q := r.db.WithContext(ctx).Model(&models.Rider{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if district != "" {
		q = q.Where("LOWER(district) = LOWER(?)", district)
	}

	var riders []models.Rider
	if err := q.Order("created_at DESC").Order("id DESC").Find(&riders).Error; err != nil {
		return nil, apperr.Internal(err, "failed to fetch riders")
	}
	return riders, nil
}

// ChangeStatus moves a rider from one status to another. It reports false
// when the rider is missing or no longer in from.
func (r *Riders) ChangeStatus(ctx context.Context, id uint, from, to models.RiderStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Rider{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "reviewed_at": at})
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "failed to update rider status")
	}
	return res.RowsAffected == 1, nil
}
