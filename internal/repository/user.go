package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
	"github.com/lib/pq"
)

const userColumns = `id, email, full_name, phone_number, medicine_count,
		total_medicines_tracked, expiring_soon_count, medicines_disposed_count, campaigns_joined_count,
		first_timer_at, eco_helper_at, green_champion_at, created_at`

// uniqueViolation is the Postgres error code for a unique constraint.
const uniqueViolation = "23505"

// PostgresUserRepository stores user accounts and their cached counters.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func badgeFrom(at sql.NullTime) models.Badge {
	if !at.Valid {
		return models.Badge{}
	}
	t := at.Time
	return models.Badge{Achieved: true, UnlockedAt: &t}
}

func badgeTime(b models.Badge) *time.Time {
	if !b.Achieved {
		return nil
	}
	return b.UnlockedAt
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                    models.User
		first, eco, champion sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PhoneNumber, &u.MedicineCount,
		&u.Stats.TotalMedicinesTracked, &u.Stats.ExpiringSoonCount, &u.Stats.MedicinesDisposedCount,
		&u.Stats.CampaignsJoinedCount, &first, &eco, &champion, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Badges = models.Badges{
		FirstTimer:    badgeFrom(first),
		EcoHelper:     badgeFrom(eco),
		GreenChampion: badgeFrom(champion),
	}
	return &u, nil
}

// Create inserts a new account. A duplicate email is reported as a conflict.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, phone_number, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.FullName, u.PhoneNumber, u.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.Conflict("email already registered")
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Load fetches a user by id.
func (r *PostgresUserRepository) Load(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// FindByEmail fetches a user by email.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Save writes the profile, counters and badges of an existing user.
func (r *PostgresUserRepository) Save(ctx context.Context, u *models.User) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET
			email = $2,
			full_name = $3,
			phone_number = $4,
			medicine_count = $5,
			total_medicines_tracked = $6,
			expiring_soon_count = $7,
			medicines_disposed_count = $8,
			campaigns_joined_count = $9,
			first_timer_at = $10,
			eco_helper_at = $11,
			green_champion_at = $12
		WHERE id = $1
	`, u.ID, u.Email, u.FullName, u.PhoneNumber, u.MedicineCount,
		u.Stats.TotalMedicinesTracked, u.Stats.ExpiringSoonCount, u.Stats.MedicinesDisposedCount,
		u.Stats.CampaignsJoinedCount, badgeTime(u.Badges.FirstTimer), badgeTime(u.Badges.EcoHelper),
		badgeTime(u.Badges.GreenChampion))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.Conflict("email already registered")
	}
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if n == 0 {
		return models.NotFound("user not found")
	}
	return nil
}
