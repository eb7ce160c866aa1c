package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

type OTPs struct {
	db *gorm.DB
}

// Replace stores o as the only live code for its email and purpose,
// resetting attempts on any earlier one.
func (r *OTPs) Replace(ctx context.Context, o *models.OTP) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "purpose"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "attempts", "used", "updated_at"}),
	}).Create(o).Error
	if err != nil {
		return apperr.Internal(err, "failed to save otp")
	}
	return nil
}

func (r *OTPs) Find(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.WithContext(ctx).Where("email = ? AND purpose = ?", email, purpose).First(&otp).Error
	if err != nil {
		return nil, notFoundOr(err, "otp")
	}
	return &otp, nil
}

// CountFailure records a wrong guess.
func (r *OTPs) CountFailure(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.OTP{}).Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
	if err != nil {
		return apperr.Internal(err, "failed to update otp")
	}
	return nil
}

// Redeem marks the code used. It reports false when it was already used or
// replaced, so a code can be redeemed at most once.
func (r *OTPs) Redeem(ctx context.Context, o *models.OTP) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.OTP{}).
		Where("id = ? AND code_hash = ? AND used = ?", o.ID, o.CodeHash, false).
		Update("used", true)
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "failed to redeem otp")
	}
	return res.RowsAffected == 1, nil
}
