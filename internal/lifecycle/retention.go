package lifecycle

import "time"

// Decision is the outcome of the retention policy for a delete request.
type Decision int

const (
	// Soft keeps the record with its deleted flag set.
	Soft Decision = iota
	// Hard removes the record from storage.
	Hard
)

func (d Decision) String() string {
	if d == Hard {
		return "hard"
	}
	return "soft"
}

const (
	// DefaultSoftDeleteThreshold bounds the soft-deleted set of one owner.
	DefaultSoftDeleteThreshold = 100
	// DefaultRetentionWindow is how long an expired record survives the
	// system-wide cleanup sweep after its expiry date.
	DefaultRetentionWindow = 15 * Day
)

// Decide picks soft or hard deletion. Once the owner already holds more
// than threshold soft-deleted records, further deletes are hard. Both the
// single and the bulk delete paths go through here.
func Decide(softDeletedCount, threshold int64) Decision {
	if softDeletedCount > threshold {
		return Hard
	}
	return Soft
}

// PurgeCutoff returns the instant before which expired records are purged.
func PurgeCutoff(now time.Time, window time.Duration) time.Time {
	return now.Add(-window)
}
