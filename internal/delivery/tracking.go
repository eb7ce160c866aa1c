package delivery

import (
	"context"
	"strings"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

// Tracking is the append-only event log customers follow by tracking id.
type Tracking struct {
	deps Deps
}

func NewTracking(deps Deps) *Tracking {
	return &Tracking{deps: deps.withDefaults()}
}

// Append records a manual status update. The entry is always attributed to
// the caller.
func (t *Tracking) Append(ctx context.Context, entry *models.TrackingLog, caller models.Identity) (*models.TrackingLog, error) {
	entry.TrackingID = strings.TrimSpace(entry.TrackingID)
	entry.Status = strings.TrimSpace(entry.Status)
	if entry.TrackingID == "" || entry.Status == "" {
		return nil, apperr.BadRequest("trackingId and status are required")
	}
	entry.ID = 0
	entry.UpdatedBy = caller.Email
	entry.CreatedAt = t.deps.Now()

	if err := t.deps.Store.Tracking.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// History returns the log of trackingID, oldest entry first.
func (t *Tracking) History(ctx context.Context, trackingID string) ([]models.TrackingLog, error) {
	logs, err := t.deps.Store.Tracking.History(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, apperr.NotFound("no tracking history for %s", trackingID)
	}
	return logs, nil
}
