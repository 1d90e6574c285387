package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NikhilYadav04/pillbin-v2/internal/auth"
	"github.com/NikhilYadav04/pillbin-v2/internal/models"
	"github.com/google/uuid"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// FindByEmail returns the account registered with email or
	// models.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Create stores a new account.
	Create(ctx context.Context, u *models.User) error
}

// Registration holds the fields of a new account.
type Registration struct {
	Email       string
	FullName    string
	PhoneNumber string
}

// AuthService registers accounts and issues their bearer tokens. OTP
// verification happens in front of it.
type AuthService struct {
	repo   AuthRepository
	secret string
	now    func() time.Time
}

// NewAuthService constructs an AuthService signing tokens with secret.
func NewAuthService(repo AuthRepository, secret string) *AuthService {
	return &AuthService{repo: repo, secret: secret, now: time.Now}
}

// Register creates an account for reg and returns a token for it.
func (s *AuthService) Register(ctx context.Context, reg Registration) (string, *models.User, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if email == "" || !strings.Contains(email, "@") {
		return "", nil, models.Validation("email", "a valid email is required")
	}

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return "", nil, models.Conflict("email already registered")
	case !errors.Is(err, models.ErrNotFound):
		return "", nil, err
	}

	now := s.now()
	u := &models.User{
		ID:          uuid.NewString(),
		Email:       email,
		FullName:    strings.TrimSpace(reg.FullName),
		PhoneNumber: strings.TrimSpace(reg.PhoneNumber),
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return "", nil, err
	}

	token, err := auth.GenerateToken(s.secret, u.ID, now)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
