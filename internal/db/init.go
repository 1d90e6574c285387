package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    full_name TEXT NOT NULL DEFAULT '',
    phone_number TEXT NOT NULL DEFAULT '',
    medicine_count BIGINT NOT NULL DEFAULT 0,
    total_medicines_tracked BIGINT NOT NULL DEFAULT 0,
    expiring_soon_count BIGINT NOT NULL DEFAULT 0,
    medicines_disposed_count BIGINT NOT NULL DEFAULT 0,
    campaigns_joined_count BIGINT NOT NULL DEFAULT 0,
    first_timer_at TIMESTAMPTZ,
    eco_helper_at TIMESTAMPTZ,
    green_champion_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS medicines (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    purchase_date TIMESTAMPTZ,
    expiry_date TIMESTAMPTZ NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    added_date TIMESTAMPTZ NOT NULL DEFAULT now(),
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    notes TEXT NOT NULL DEFAULT '',
    dosage TEXT NOT NULL DEFAULT '',
    manufacturer TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT '',
    batch_number TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS medicines_owner_status_idx ON medicines (owner_id, status);
CREATE INDEX IF NOT EXISTS medicines_expiry_idx ON medicines (expiry_date);
`

// InitPostgres opens the database, checks the connection and makes sure
// the schema exists.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
