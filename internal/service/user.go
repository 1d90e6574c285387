package service

import (
	"context"
	"strings"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
)

// ProfileUpdate lists the profile fields an owner may edit.
type ProfileUpdate struct {
	FullName    *string
	Email       *string
	PhoneNumber *string
}

// UserService exposes the owner's profile, stats and badges.
type UserService struct {
	repo UserRepository
}

// NewUserService constructs a UserService.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Profile returns the user with its counters and badges.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.repo.Load(ctx, userID)
}

// UpdateProfile applies the non-nil fields of upd.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	u, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, models.Validation("email", "a valid email is required")
		}
		u.Email = email
	}
	if upd.FullName != nil {
		u.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = strings.TrimSpace(*upd.PhoneNumber)
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
