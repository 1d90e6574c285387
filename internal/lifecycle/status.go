// Package lifecycle holds the storage-free rules of the medicine
// lifecycle: status classification, the soft/hard retention decision,
// badge unlocking and the counters derived from a medicine set.
package lifecycle

import (
	"math"
	"time"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
)

// Day is the unit used for expiry arithmetic.
const Day = 24 * time.Hour

// ExpiringSoonDays is the largest number of remaining days that still
// counts as expiring soon.
const ExpiringSoonDays = 5

// DaysUntilExpiry returns ceil((expiry - now) / 1 day).
func DaysUntilExpiry(expiry, now time.Time) int {
	return int(math.Ceil(float64(expiry.Sub(now)) / float64(Day)))
}

// Classify derives the status of a medicine expiring at expiry as of now.
func Classify(expiry, now time.Time) models.Status {
	days := DaysUntilExpiry(expiry, now)
	switch {
	case days <= 0:
		return models.StatusExpired
	case days <= ExpiringSoonDays:
		return models.StatusExpiringSoon
	default:
		return models.StatusActive
	}
}

// Refresh recomputes m.Status and reports whether it changed. Callers
// persist m only when Refresh returns true.
func Refresh(m *models.Medicine, now time.Time) bool {
	next := Classify(m.ExpiryDate, now)
	if next == m.Status {
		return false
	}
	m.Status = next
	return true
}
