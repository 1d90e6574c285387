package lifecycle

import (
	"time"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
)

// Disposal thresholds for each badge.
const (
	FirstTimerThreshold    = 1
	EcoHelperThreshold     = 5
	GreenChampionThreshold = 20
)

// UpdateBadges unlocks every badge whose threshold the user's disposed
// count has reached and returns the names of the newly unlocked ones.
// Unlocked badges are never touched again.
func UpdateBadges(u *models.User, now time.Time) []string {
	disposed := u.Stats.MedicinesDisposedCount
	rules := []struct {
		name      string
		threshold int64
		badge     *models.Badge
	}{
		{"firstTimer", FirstTimerThreshold, &u.Badges.FirstTimer},
		{"ecoHelper", EcoHelperThreshold, &u.Badges.EcoHelper},
		{"greenChampion", GreenChampionThreshold, &u.Badges.GreenChampion},
	}

	var unlocked []string
	for _, r := range rules {
		if r.badge.Achieved || disposed < r.threshold {
			continue
		}
		at := now
		r.badge.Achieved = true
		r.badge.UnlockedAt = &at
		unlocked = append(unlocked, r.name)
	}
	return unlocked
}

// RecordDisposals adds n disposals to the user and re-runs the badge engine.
func RecordDisposals(u *models.User, n int64, now time.Time) []string {
	if n <= 0 {
		return nil
	}
	u.Stats.MedicinesDisposedCount += n
	return UpdateBadges(u, now)
}

// Untrack removes n medicines from the user's running counters, clamping
// both at zero.
func Untrack(u *models.User, n int64) {
	u.MedicineCount = max(u.MedicineCount-n, 0)
	u.Stats.TotalMedicinesTracked = max(u.Stats.TotalMedicinesTracked-n, 0)
}
