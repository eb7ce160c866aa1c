package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

type Users struct {
	db *gorm.DB
}

// Upsert inserts u, or refreshes only last_login_at when the email already
// exists. Name, role and password are insert-only.
func (r *Users) Upsert(ctx context.Context, u *models.User, now time.Time) (*models.User, error) {
	u.LastLoginAt = &now
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_login_at"}),
	}).Create(u).Error
	if err != nil {
		return nil, apperr.Internal(err, "failed to save user")
	}
	return r.FindByEmail(ctx, u.Email)
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// RoleOf returns the role of email, or RoleUser for an unknown identity.
func (r *Users) RoleOf(ctx context.Context, email string) (models.Role, error) {
	user, err := r.FindByEmail(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		return models.RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// ChangeRole moves email from one of the roles in from to role. It reports
// false when no user matched, either because the email is unknown or because
// the current role is not in from.
func (r *Users) ChangeRole(ctx context.Context, email string, from []models.Role, role models.Role) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND role IN ?", email, from).
		Update("role", role)
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "failed to update user role")
	}
	return res.RowsAffected == 1, nil
}

// SetPasswordHash replaces the stored password hash of email.
func (r *Users) SetPasswordHash(ctx context.Context, email, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("password_hash", hash)
	if res.Error != nil {
		return apperr.Internal(res.Error, "failed to update password")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
