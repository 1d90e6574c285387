// Package service provides the medicine lifecycle business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NikhilYadav04/pillbin-v2/internal/lifecycle"
	"github.com/NikhilYadav04/pillbin-v2/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MedicineRepository defines the medicine persistence operations needed by
// the MedicineService.
type MedicineRepository interface {
	// FindByOwner returns the owner's medicines matching the filter.
	FindByOwner(ctx context.Context, ownerID string, f models.MedicineFilter) ([]models.Medicine, error)
	// FindAll returns every medicine in the system.
	FindAll(ctx context.Context) ([]models.Medicine, error)
	// Find returns the medicines of any owner matching the filter.
	Find(ctx context.Context, f models.MedicineFilter) ([]models.Medicine, error)
	// GetByID fetches one medicine or fails with models.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Medicine, error)
	// Save upserts a medicine; models.ErrConflict if the id has another owner.
	Save(ctx context.Context, m *models.Medicine) error
	// UpdateStatus writes only the status of one medicine.
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	// DeleteByID removes one medicine and reports whether it existed.
	DeleteByID(ctx context.Context, id string) (bool, error)
	// SoftDeleteByIDs flags the owner's listed medicines as deleted.
	SoftDeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error)
	// DeleteByIDs removes the owner's listed medicines.
	DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error)
	// DeleteMany removes every medicine matching the filter.
	DeleteMany(ctx context.Context, f models.MedicineFilter) (int64, error)
	// CountByOwner counts the owner's medicines matching the filter.
	CountByOwner(ctx context.Context, ownerID string, f models.MedicineFilter) (int64, error)
}

// UserRepository reads and writes the owner aggregate.
type UserRepository interface {
	// Load fetches a user or fails with models.ErrNotFound.
	Load(ctx context.Context, id string) (*models.User, error)
	// Save writes the user's profile, counters and badges.
	Save(ctx context.Context, u *models.User) error
}

// Limits are the caps and windows of the lifecycle policy.
type Limits struct {
	// MaxMedicines caps the non-deleted medicines of one owner.
	MaxMedicines int64
	// SoftDeleteThreshold is the soft-deleted count past which deletes are hard.
	SoftDeleteThreshold int64
	// RetentionWindow is how long expired medicines survive the cleanup sweep.
	RetentionWindow time.Duration
}

// DefaultLimits returns the production policy.
func DefaultLimits() Limits {
	return Limits{
		MaxMedicines:        100,
		SoftDeleteThreshold: lifecycle.DefaultSoftDeleteThreshold,
		RetentionWindow:     lifecycle.DefaultRetentionWindow,
	}
}

// MedicineService implements the medicine lifecycle for owners and the
// system-wide maintenance sweeps.
type MedicineService struct {
	medicines MedicineRepository
	users     UserRepository
	limits    Limits
	now       func() time.Time
	log       *zap.Logger
}

// Option customizes a MedicineService.
type Option func(*MedicineService)

// WithLimits overrides DefaultLimits.
func WithLimits(l Limits) Option {
	return func(s *MedicineService) { s.limits = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *MedicineService) { s.now = now }
}

// NewMedicineService constructs a MedicineService. A nil logger disables logging.
func NewMedicineService(medicines MedicineRepository, users UserRepository, log *zap.Logger, opts ...Option) *MedicineService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &MedicineService{
		medicines: medicines,
		users:     users,
		limits:    DefaultLimits(),
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// owned loads a medicine and checks that ownerID owns it.
func (s *MedicineService) owned(ctx context.Context, ownerID, id string) (*models.Medicine, error) {
	m, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != ownerID {
		return nil, models.Forbidden("not authorized to access this medicine")
	}
	return m, nil
}

// live is like owned but treats soft-deleted records as missing.
func (s *MedicineService) live(ctx context.Context, ownerID, id string) (*models.Medicine, error) {
	m, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if m.IsDeleted {
		return nil, models.NotFound("medicine not found")
	}
	return m, nil
}

// refresh recomputes statuses in place and persists only the changed ones.
func (s *MedicineService) refresh(ctx context.Context, meds []models.Medicine, now time.Time) (int, error) {
	changed := 0
	for i := range meds {
		if !lifecycle.Refresh(&meds[i], now) {
			continue
		}
		if err := s.medicines.UpdateStatus(ctx, meds[i].ID, meds[i].Status); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// saveOwner persists counters after the medicine side already succeeded.
// A failure here leaves drift that Reconcile repairs.
func (s *MedicineService) saveOwner(ctx context.Context, u *models.User, op string) error {
	if err := s.users.Save(ctx, u); err != nil {
		s.log.Warn("owner counters out of sync",
			zap.String("op", op),
			zap.String("owner", u.ID),
			zap.Error(err),
		)
		return fmt.Errorf("%s: update owner counters: %w", op, err)
	}
	return nil
}

// dispose records n disposals on u and logs any badge it unlocks.
func (s *MedicineService) dispose(u *models.User, n int64, now time.Time) {
	lifecycle.Untrack(u, n)
	for _, badge := range lifecycle.RecordDisposals(u, n, now) {
		s.log.Info("badge unlocked", zap.String("owner", u.ID), zap.String("badge", badge))
	}
}

// AddMedicine validates and stores a new medicine for ownerID with its
// initial status, then bumps the owner's counters.
func (s *MedicineService) AddMedicine(ctx context.Context, ownerID string, in models.NewMedicine) (*models.Medicine, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.Validation("name", "medicine name is required")
	}
	if in.ExpiryDate.IsZero() {
		return nil, models.Validation("expiryDate", "expiry date is required")
	}

	user, err := s.users.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	count, err := s.medicines.CountByOwner(ctx, ownerID, models.MedicineFilter{Deleted: models.DeletedExclude})
	if err != nil {
		return nil, err
	}
	if count >= s.limits.MaxMedicines {
		return nil, models.LimitExceeded(fmt.Sprintf("you have reached the limit of %d medicines", s.limits.MaxMedicines))
	}

	now := s.now()
	m := &models.Medicine{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		PurchaseDate: in.PurchaseDate,
		ExpiryDate:   in.ExpiryDate,
		Status:       lifecycle.Classify(in.ExpiryDate, now),
		AddedDate:    now,
		Notes:        strings.TrimSpace(in.Notes),
		Dosage:       strings.TrimSpace(in.Dosage),
		Manufacturer: strings.TrimSpace(in.Manufacturer),
		Type:         strings.TrimSpace(in.Type),
		BatchNumber:  strings.TrimSpace(in.BatchNumber),
	}
	if err := s.medicines.Save(ctx, m); err != nil {
		return nil, err
	}

	user.MedicineCount++
	user.Stats.TotalMedicinesTracked++
	if err := s.saveOwner(ctx, user, "add medicine"); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMedicine returns one of the owner's live medicines with a fresh status.
func (s *MedicineService) GetMedicine(ctx context.Context, ownerID, id string) (*models.Medicine, error) {
	m, err := s.live(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if lifecycle.Refresh(m, s.now()) {
		if err := s.medicines.UpdateStatus(ctx, m.ID, m.Status); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GetInventory refreshes and partitions the owner's live medicines. Each
// status bucket is paginated with the same page; counts cover everything.
func (s *MedicineService) GetInventory(ctx context.Context, ownerID string, page models.Page) (*models.Inventory, error) {
	user, err := s.users.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	meds, err := s.medicines.FindByOwner(ctx, ownerID, models.MedicineFilter{Deleted: models.DeletedExclude})
	if err != nil {
		return nil, err
	}
	if _, err := s.refresh(ctx, meds, s.now()); err != nil {
		return nil, err
	}

	active, soon, expired := lifecycle.Partition(meds)
	page = lifecycle.NormalizePage(page)
	inv := &models.Inventory{
		Active:       lifecycle.Paginate(active, page),
		ExpiringSoon: lifecycle.Paginate(soon, page),
		Expired:      lifecycle.Paginate(expired, page),
		Counts: models.InventoryCounts{
			Active:       len(active),
			ExpiringSoon: len(soon),
			Expired:      len(expired),
			Total:        len(meds),
		},
		Page: page,
	}

	if user.Stats.ExpiringSoonCount != int64(len(soon)) {
		user.Stats.ExpiringSoonCount = int64(len(soon))
		if err := s.saveOwner(ctx, user, "get inventory"); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// GetDeletedMedicines lists the owner's soft-deleted medicines by expiry.
func (s *MedicineService) GetDeletedMedicines(ctx context.Context, ownerID string, page models.Page) (*models.DeletedInventory, error) {
	if _, err := s.users.Load(ctx, ownerID); err != nil {
		return nil, err
	}
	meds, err := s.medicines.FindByOwner(ctx, ownerID, models.MedicineFilter{Deleted: models.DeletedOnly})
	if err != nil {
		return nil, err
	}
	lifecycle.SortByExpiry(meds)
	page = lifecycle.NormalizePage(page)
	return &models.DeletedInventory{
		Medicines:    lifecycle.Paginate(meds, page),
		TotalDeleted: len(meds),
		Page:         page,
	}, nil
}

// UpdateMedicine applies the allow-listed fields of upd. A changed expiry
// date recomputes the status before the record is written.
func (s *MedicineService) UpdateMedicine(ctx context.Context, ownerID, id string, upd models.MedicineUpdate) (*models.Medicine, error) {
	m, err := s.live(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, models.Validation("name", "medicine name cannot be empty")
		}
		m.Name = name
	}
	if upd.PurchaseDate != nil {
		m.PurchaseDate = upd.PurchaseDate
	}
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{upd.Notes, &m.Notes},
		{upd.Dosage, &m.Dosage},
		{upd.Manufacturer, &m.Manufacturer},
		{upd.Type, &m.Type},
		{upd.BatchNumber, &m.BatchNumber},
	} {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}
	if upd.ExpiryDate != nil {
		if upd.ExpiryDate.IsZero() {
			return nil, models.Validation("expiryDate", "expiry date cannot be empty")
		}
		m.ExpiryDate = *upd.ExpiryDate
		lifecycle.Refresh(m, s.now())
	}

	if err := s.medicines.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// SoftDeleteMedicine removes a medicine from the owner's inventory. The
// record is kept unless the owner's soft-deleted set is already over the
// retention threshold, in which case it is removed outright.
func (s *MedicineService) SoftDeleteMedicine(ctx context.Context, ownerID, id string) (*models.DeleteResult, error) {
	m, err := s.live(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.medicines.CountByOwner(ctx, ownerID, models.MedicineFilter{Deleted: models.DeletedOnly})
	if err != nil {
		return nil, err
	}

	res := &models.DeleteResult{ID: m.ID, Status: m.Status}
	switch lifecycle.Decide(deleted, s.limits.SoftDeleteThreshold) {
	case lifecycle.Hard:
		if _, err := s.medicines.DeleteByID(ctx, m.ID); err != nil {
			return nil, err
		}
		res.Hard = true
	default:
		m.IsDeleted = true
		if err := s.medicines.Save(ctx, m); err != nil {
			return nil, err
		}
	}

	s.dispose(user, 1, s.now())
	if err := s.saveOwner(ctx, user, "delete medicine"); err != nil {
		return nil, err
	}
	res.DisposedCount = user.Stats.MedicinesDisposedCount
	return res, nil
}

// HardDeleteMedicine removes a medicine from storage whatever the
// threshold. Counters only move when the record was still live.
func (s *MedicineService) HardDeleteMedicine(ctx context.Context, ownerID, id string) (*models.DeleteResult, error) {
	m, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	removed, err := s.medicines.DeleteByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NotFound("medicine not found")
	}

	if !m.IsDeleted {
		s.dispose(user, 1, s.now())
		if err := s.saveOwner(ctx, user, "hard delete medicine"); err != nil {
			return nil, err
		}
	}
	return &models.DeleteResult{
		ID:            m.ID,
		Status:        m.Status,
		Hard:          true,
		DisposedCount: user.Stats.MedicinesDisposedCount,
	}, nil
}

// DeleteAllExpired disposes of every live expired medicine of the owner.
// Soft or hard deletion is decided once for the whole batch.
func (s *MedicineService) DeleteAllExpired(ctx context.Context, ownerID string) (*models.BulkDeleteResult, error) {
	user, err := s.users.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	meds, err := s.medicines.FindByOwner(ctx, ownerID, models.MedicineFilter{Deleted: models.DeletedExclude})
	if err != nil {
		return nil, err
	}
	now := s.now()
	if _, err := s.refresh(ctx, meds, now); err != nil {
		return nil, err
	}

	var ids []string
	for _, m := range meds {
		if m.Status == models.StatusExpired {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return nil, models.EmptyResult("no expired medicines found")
	}

	deleted, err := s.medicines.CountByOwner(ctx, ownerID, models.MedicineFilter{Deleted: models.DeletedOnly})
	if err != nil {
		return nil, err
	}

	res := &models.BulkDeleteResult{}
	if lifecycle.Decide(deleted, s.limits.SoftDeleteThreshold) == lifecycle.Hard {
		res.Hard = true
		res.Affected, err = s.medicines.DeleteByIDs(ctx, ownerID, ids)
	} else {
		res.Affected, err = s.medicines.SoftDeleteByIDs(ctx, ownerID, ids)
	}
	if err != nil {
		return nil, err
	}

	s.dispose(user, res.Affected, now)
	if err := s.saveOwner(ctx, user, "delete all expired"); err != nil {
		return nil, err
	}
	res.TotalDisposedCount = user.Stats.MedicinesDisposedCount
	return res, nil
}

// HardDeleteAllSoftDeleted purges every soft-deleted medicine of the owner.
// These were already counted as disposed when they were soft-deleted.
func (s *MedicineService) HardDeleteAllSoftDeleted(ctx context.Context, ownerID string) (*models.BulkDeleteResult, error) {
	user, err := s.users.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	filter := models.MedicineFilter{OwnerID: ownerID, Deleted: models.DeletedOnly}
	count, err := s.medicines.CountByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, models.EmptyResult("no deleted medicines found")
	}

	n, err := s.medicines.DeleteMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &models.BulkDeleteResult{
		Affected:           n,
		Hard:               true,
		TotalDisposedCount: user.Stats.MedicinesDisposedCount,
	}, nil
}

// UpdateAllStatuses recomputes every medicine status in the system and
// returns how many records changed. It is meant to be called periodically.
func (s *MedicineService) UpdateAllStatuses(ctx context.Context) (int, error) {
	meds, err := s.medicines.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	return s.refresh(ctx, meds, s.now())
}

// CleanupExpiredMedicines removes every expired medicine whose expiry date
// is older than the retention window, regardless of owner or deleted flag.
// Owners of removed non-deleted records get their running counters
// lowered; the sweep is not a disposal.
func (s *MedicineService) CleanupExpiredMedicines(ctx context.Context) (int64, error) {
	f := models.MedicineFilter{
		Status:        models.StatusExpired,
		ExpiresBefore: lifecycle.PurgeCutoff(s.now(), s.limits.RetentionWindow),
	}
	live := f
	live.Deleted = models.DeletedExclude
	tracked, err := s.medicines.Find(ctx, live)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}

	removed, err := s.medicines.DeleteMany(ctx, f)
	if err != nil {
		return 0, err
	}

	perOwner := make(map[string]int64)
	for _, m := range tracked {
		perOwner[m.OwnerID]++
	}
	var errs []error
	for ownerID, n := range perOwner {
		user, err := s.users.Load(ctx, ownerID)
		if err != nil {
			s.log.Warn("owner counters out of sync",
				zap.String("op", "cleanup"),
				zap.String("owner", ownerID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("cleanup: load owner %s: %w", ownerID, err))
			continue
		}
		lifecycle.Untrack(user, n)
		if err := s.saveOwner(ctx, user, "cleanup"); err != nil {
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}

// Reconcile rebuilds the owner's cached counters from the medicine set.
func (s *MedicineService) Reconcile(ctx context.Context, ownerID string) (*models.User, error) {
	user, err := s.users.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	meds, err := s.medicines.FindByOwner(ctx, ownerID, models.MedicineFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	live := make([]models.Medicine, 0, len(meds))
	for _, m := range meds {
		if !m.IsDeleted {
			live = append(live, m)
		}
	}
	if _, err := s.refresh(ctx, live, now); err != nil {
		return nil, err
	}

	c := lifecycle.Tally(live)
	c.SoftDeleted = int64(len(meds) - len(live))
	lifecycle.Reconcile(user, c)
	lifecycle.UpdateBadges(user, now)

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
