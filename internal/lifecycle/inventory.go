package lifecycle

import (
	"sort"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// NormalizePage fills in defaults and caps the limit.
func NormalizePage(p models.Page) models.Page {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Paginate returns the window of meds selected by p. p must be normalized.
func Paginate(meds []models.Medicine, p models.Page) []models.Medicine {
	if p.Page-1 >= (len(meds)+p.Limit-1)/p.Limit {
		return []models.Medicine{}
	}
	start := (p.Page - 1) * p.Limit
	end := min(start+p.Limit, len(meds))
	return meds[start:end]
}

// Partition splits meds by their stored status. Active and expiring-soon
// medicines are ordered by ascending expiry, expired ones by descending
// expiry so the most recently expired come first.
func Partition(meds []models.Medicine) (active, soon, expired []models.Medicine) {
	active, soon, expired = []models.Medicine{}, []models.Medicine{}, []models.Medicine{}
	for _, m := range meds {
		switch m.Status {
		case models.StatusActive:
			active = append(active, m)
		case models.StatusExpiringSoon:
			soon = append(soon, m)
		case models.StatusExpired:
			expired = append(expired, m)
		}
	}
	sortByExpiry(active, true)
	sortByExpiry(soon, true)
	sortByExpiry(expired, false)
	return active, soon, expired
}

// SortByExpiry orders meds by ascending expiry date.
func SortByExpiry(meds []models.Medicine) {
	sortByExpiry(meds, true)
}

func sortByExpiry(meds []models.Medicine, asc bool) {
	sort.SliceStable(meds, func(i, j int) bool {
		if asc {
			return meds[i].ExpiryDate.Before(meds[j].ExpiryDate)
		}
		return meds[i].ExpiryDate.After(meds[j].ExpiryDate)
	})
}

// Counts is the tally of a medicine set by status and deletion flag.
type Counts struct {
	Active       int64
	ExpiringSoon int64
	Expired      int64
	// Live is the number of non-deleted records.
	Live int64
	// SoftDeleted is the number of soft-deleted records.
	SoftDeleted int64
}

// Tally counts meds. Status buckets only include non-deleted records.
func Tally(meds []models.Medicine) Counts {
	var c Counts
	for _, m := range meds {
		if m.IsDeleted {
			c.SoftDeleted++
			continue
		}
		c.Live++
		switch m.Status {
		case models.StatusActive:
			c.Active++
		case models.StatusExpiringSoon:
			c.ExpiringSoon++
		case models.StatusExpired:
			c.Expired++
		}
	}
	return c
}

// Reconcile overwrites the user's cached counters with values derived from
// the full medicine set of that user. The disposed count cannot be rebuilt
// from surviving records, so it is only raised to the soft-deleted count
// when it has drifted below it.
func Reconcile(u *models.User, c Counts) {
	u.MedicineCount = c.Live
	u.Stats.TotalMedicinesTracked = c.Live
	u.Stats.ExpiringSoonCount = c.ExpiringSoon
	if u.Stats.MedicinesDisposedCount < c.SoftDeleted {
		u.Stats.MedicinesDisposedCount = c.SoftDeleted
	}
}
