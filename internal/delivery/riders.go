package delivery

import (
	"context"
	"strings"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/internal/repository"
)

// Riders manages rider applications and their review by admins.
type Riders struct {
	deps Deps
}

func NewRiders(deps Deps) *Riders {
	return &Riders{deps: deps.withDefaults()}
}

// Apply files a pending rider application for the calling identity.
func (r *Riders) Apply(ctx context.Context, rider *models.Rider, applicant models.Identity) (*models.Rider, error) {
	if rider.Name == "" || rider.Phone == "" || rider.District == "" {
		return nil, apperr.BadRequest("name, phone and district are required")
	}
	rider.ID = 0
	rider.Email = applicant.Email
	rider.Status = models.RiderPending
	rider.ReviewedAt = nil

	ok, err := r.deps.Store.Riders.Create(ctx, rider)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("a rider application for %s already exists", applicant.Email)
	}
	r.deps.Log.Info("rider applied", "rider_id", rider.ID, "email", rider.Email, "district", rider.District)
	return rider, nil
}

func (r *Riders) List(ctx context.Context, status models.RiderStatus, district string) ([]models.Rider, error) {
	if status != "" && !status.IsValid() {
		return nil, apperr.BadRequest("unknown rider status %q", status)
	}
	return r.deps.Store.Riders.List(ctx, status, district)
}

// SetStatus approves or rejects a rider. The rider status and the user's
// role change in one transaction: approval promotes the user to rider and
// rejection demotes a rider back to user. Admin accounts keep their role.
func (r *Riders) SetStatus(ctx context.Context, riderID uint, status models.RiderStatus, email string, admin models.Identity) (*models.Rider, error) {
	if status != models.RiderApproved && status != models.RiderRejected {
		return nil, apperr.BadRequest("status must be %s or %s", models.RiderApproved, models.RiderRejected)
	}

	var updated *models.Rider
	err := r.deps.Store.WithTx(ctx, func(tx *repository.Store) error {
		rider, err := tx.Riders.Get(ctx, riderID)
		if err != nil {
			return err
		}
		if email != "" && !strings.EqualFold(email, rider.Email) {
			return apperr.BadRequest("email does not match rider %d", riderID)
		}
		if !rider.Status.CanTransition(status) {
			return apperr.Conflict("rider is already %s", rider.Status)
		}

		ok, err := tx.Riders.ChangeStatus(ctx, riderID, rider.Status, status, r.deps.Now())
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("rider %d was updated concurrently", riderID)
		}

		switch status {
		case models.RiderApproved:
			if err := promote(ctx, tx, rider.Email); err != nil {
				return err
			}
		case models.RiderRejected:
			if _, err := tx.Users.ChangeRole(ctx, rider.Email, []models.Role{models.RoleRider}, models.RoleUser); err != nil {
				return err
			}
		}

		updated, err = tx.Riders.Get(ctx, riderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.deps.Log.Info("rider reviewed", "rider_id", riderID, "status", status, "reviewed_by", admin.Email)
	return updated, nil
}

func promote(ctx context.Context, tx *repository.Store, email string) error {
	ok, err := tx.Users.ChangeRole(ctx, email, []models.Role{models.RoleUser}, models.RoleRider)
	if err != nil || ok {
		return err
	}
	// Nothing changed: either there is no account or it already outranks user.
	if _, err := tx.Users.FindByEmail(ctx, email); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("no user account for %s", email)
		}
		return err
	}
	return nil
}
