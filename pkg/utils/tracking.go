package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTrackingID returns a customer-facing parcel tracking id such as
// PRCL-20261018-9F3A21C7.
func NewTrackingID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PRCL-%s-%s", now.UTC().Format("20060102"), suffix)
}
