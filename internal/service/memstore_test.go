package service

import (
	"context"
	"errors"
	"sort"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
)

// memStore is an in-memory MedicineRepository and UserRepository.
type memStore struct {
	medicines map[string]models.Medicine
	users     map[string]models.User

	statusWrites int
	userSaveErr  error
}

func newMemStore(users ...string) *memStore {
	s := &memStore{
		medicines: map[string]models.Medicine{},
		users:     map[string]models.User{},
	}
	for _, id := range users {
		s.users[id] = models.User{ID: id, Email: id + "@example.com"}
	}
	return s
}

func matches(m models.Medicine, f models.MedicineFilter) bool {
	if f.OwnerID != "" && m.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	switch f.Deleted {
	case models.DeletedExclude:
		if m.IsDeleted {
			return false
		}
	case models.DeletedOnly:
		if !m.IsDeleted {
			return false
		}
	}
	if !f.ExpiresBefore.IsZero() && !m.ExpiryDate.Before(f.ExpiresBefore) {
		return false
	}
	return true
}

func (s *memStore) find(f models.MedicineFilter) []models.Medicine {
	var out []models.Medicine
	for _, m := range s.medicines {
		if matches(m, f) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out
}

func (s *memStore) FindByOwner(_ context.Context, ownerID string, f models.MedicineFilter) ([]models.Medicine, error) {
	f.OwnerID = ownerID
	return s.find(f), nil
}

func (s *memStore) FindAll(context.Context) ([]models.Medicine, error) {
	return s.find(models.MedicineFilter{}), nil
}

func (s *memStore) Find(_ context.Context, f models.MedicineFilter) ([]models.Medicine, error) {
	return s.find(f), nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*models.Medicine, error) {
	m, ok := s.medicines[id]
	if !ok {
		return nil, models.NotFound("medicine not found")
	}
	return &m, nil
}

func (s *memStore) Save(_ context.Context, m *models.Medicine) error {
	if old, ok := s.medicines[m.ID]; ok && old.OwnerID != m.OwnerID {
		return models.Conflict("medicine id belongs to another owner")
	}
	s.medicines[m.ID] = *m
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, id string, status models.Status) error {
	m := s.medicines[id]
	m.Status = status
	s.medicines[id] = m
	s.statusWrites++
	return nil
}

func (s *memStore) DeleteByID(_ context.Context, id string) (bool, error) {
	_, ok := s.medicines[id]
	delete(s.medicines, id)
	return ok, nil
}

func (s *memStore) SoftDeleteByIDs(_ context.Context, ownerID string, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		m, ok := s.medicines[id]
		if !ok || m.OwnerID != ownerID || m.IsDeleted {
			continue
		}
		m.IsDeleted = true
		s.medicines[id] = m
		n++
	}
	return n, nil
}

func (s *memStore) DeleteByIDs(_ context.Context, ownerID string, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if m, ok := s.medicines[id]; ok && m.OwnerID == ownerID {
			delete(s.medicines, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) DeleteMany(_ context.Context, f models.MedicineFilter) (int64, error) {
	if f == (models.MedicineFilter{}) {
		return 0, errors.New("refusing unfiltered delete")
	}
	var n int64
	for id, m := range s.medicines {
		if matches(m, f) {
			delete(s.medicines, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) CountByOwner(_ context.Context, ownerID string, f models.MedicineFilter) (int64, error) {
	f.OwnerID = ownerID
	return int64(len(s.find(f))), nil
}

// userRepo returns a UserRepository view of the store.
func (s *memStore) userRepo() UserRepository { return memUsers{s} }

type memUsers struct{ s *memStore }

func (u memUsers) Load(_ context.Context, id string) (*models.User, error) {
	user, ok := u.s.users[id]
	if !ok {
		return nil, models.NotFound("user not found")
	}
	return &user, nil
}

func (u memUsers) Save(_ context.Context, user *models.User) error {
	if u.s.userSaveErr != nil {
		return u.s.userSaveErr
	}
	if _, ok := u.s.users[user.ID]; !ok {
		return models.NotFound("user not found")
	}
	u.s.users[user.ID] = *user
	return nil
}
