// Package repository persists the parcel domain with gorm. Every state change
// that has a precondition is a single conditional write whose affected-row
// count tells the caller whether it won.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
)

// Store groups the per-entity repositories over one connection or transaction.
type Store struct {
	db *gorm.DB

	Users    *Users
	Riders   *Riders
	Parcels  *Parcels
	Payments *Payments
	Cashouts *Cashouts
	Tracking *Tracking
	OTPs     *OTPs
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    &Users{db: db},
		Riders:   &Riders{db: db},
		Parcels:  &Parcels{db: db},
		Payments: &Payments{db: db},
		Cashouts: &Cashouts{db: db},
		Tracking: &Tracking{db: db},
		OTPs:     &OTPs{db: db},
	}
}

// WithTx runs fn inside a database transaction. Returning an error rolls back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return apperr.Internal(err, "failed to load "+what)
}
