// Package repository provides PostgreSQL persistence for medicines and
// their owners.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
	"github.com/lib/pq"
)

const medicineColumns = `id, owner_id, name, purchase_date, expiry_date, status, added_date, is_deleted,
		notes, dosage, manufacturer, type, batch_number`

// PostgresMedicineRepository implements medicine storage against a PostgreSQL database.
type PostgresMedicineRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresMedicineRepository creates a repository using the provided *sql.DB.
func NewPostgresMedicineRepository(db *sql.DB) *PostgresMedicineRepository {
	return &PostgresMedicineRepository{DB: db}
}

// whereClause renders f as a WHERE clause with numbered placeholders.
// It returns an empty string when f matches everything.
func whereClause(f models.MedicineFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OwnerID != "" {
		add("owner_id = $%d", f.OwnerID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	switch f.Deleted {
	case models.DeletedExclude:
		conds = append(conds, "is_deleted = false")
	case models.DeletedOnly:
		conds = append(conds, "is_deleted = true")
	}
	if !f.ExpiresBefore.IsZero() {
		add("expiry_date < $%d", f.ExpiresBefore)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedicine(row rowScanner) (models.Medicine, error) {
	var (
		m        models.Medicine
		status   string
		purchase sql.NullTime
	)
	err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &purchase, &m.ExpiryDate, &status, &m.AddedDate,
		&m.IsDeleted, &m.Notes, &m.Dosage, &m.Manufacturer, &m.Type, &m.BatchNumber)
	if err != nil {
		return m, err
	}
	m.Status = models.Status(status)
	if purchase.Valid {
		t := purchase.Time
		m.PurchaseDate = &t
	}
	return m, nil
}

func (r *PostgresMedicineRepository) query(ctx context.Context, f models.MedicineFilter) ([]models.Medicine, error) {
	where, args := whereClause(f)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+medicineColumns+` FROM medicines`+where+` ORDER BY expiry_date ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query medicines: %w", err)
	}
	defer rows.Close()

	var meds []models.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

// FindByOwner returns the owner's medicines matching f, ordered by expiry date.
func (r *PostgresMedicineRepository) FindByOwner(ctx context.Context, ownerID string, f models.MedicineFilter) ([]models.Medicine, error) {
	f.OwnerID = ownerID
	return r.query(ctx, f)
}

// FindAll returns every medicine in the system.
func (r *PostgresMedicineRepository) FindAll(ctx context.Context) ([]models.Medicine, error) {
	return r.query(ctx, models.MedicineFilter{})
}

// Find returns the medicines of any owner matching f, ordered by expiry date.
func (r *PostgresMedicineRepository) Find(ctx context.Context, f models.MedicineFilter) ([]models.Medicine, error) {
	return r.query(ctx, f)
}

// GetByID fetches a single medicine regardless of owner, so callers can
// tell a missing record from one owned by somebody else.
func (r *PostgresMedicineRepository) GetByID(ctx context.Context, id string) (*models.Medicine, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id)
	m, err := scanMedicine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("medicine not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return &m, nil
}

// Save upserts m by id. Updating a record that belongs to a different
// owner affects no rows and is reported as a conflict.
func (r *PostgresMedicineRepository) Save(ctx context.Context, m *models.Medicine) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO medicines (`+medicineColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			purchase_date = EXCLUDED.purchase_date,
			expiry_date = EXCLUDED.expiry_date,
			status = EXCLUDED.status,
			is_deleted = EXCLUDED.is_deleted,
			notes = EXCLUDED.notes,
			dosage = EXCLUDED.dosage,
			manufacturer = EXCLUDED.manufacturer,
			type = EXCLUDED.type,
			batch_number = EXCLUDED.batch_number
		WHERE medicines.owner_id = EXCLUDED.owner_id
	`, m.ID, m.OwnerID, m.Name, m.PurchaseDate, m.ExpiryDate, string(m.Status), m.AddedDate,
		m.IsDeleted, m.Notes, m.Dosage, m.Manufacturer, m.Type, m.BatchNumber)
	if err != nil {
		return fmt.Errorf("save medicine: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Conflict("medicine id belongs to another owner")
	}
	return nil
}

// UpdateStatus writes only the status column of one medicine.
func (r *PostgresMedicineRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE medicines SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// DeleteByID removes one medicine and reports whether a row was removed.
func (r *PostgresMedicineRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete medicine: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete medicine: %w", err)
	}
	return n > 0, nil
}

// SoftDeleteByIDs flags the owner's listed medicines as deleted.
func (r *PostgresMedicineRepository) SoftDeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE medicines SET is_deleted = true WHERE owner_id = $1 AND id = ANY($2) AND is_deleted = false`,
		ownerID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("soft delete medicines: %w", err)
	}
	return res.RowsAffected()
}

// DeleteByIDs removes the owner's listed medicines.
func (r *PostgresMedicineRepository) DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM medicines WHERE owner_id = $1 AND id = ANY($2)`,
		ownerID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete medicines: %w", err)
	}
	return res.RowsAffected()
}

// DeleteMany removes every medicine matching f. An empty filter is refused.
func (r *PostgresMedicineRepository) DeleteMany(ctx context.Context, f models.MedicineFilter) (int64, error) {
	where, args := whereClause(f)
	if where == "" {
		return 0, errors.New("delete medicines: refusing unfiltered delete")
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM medicines`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete medicines: %w", err)
	}
	return res.RowsAffected()
}

// CountByOwner counts the owner's medicines matching f.
func (r *PostgresMedicineRepository) CountByOwner(ctx context.Context, ownerID string, f models.MedicineFilter) (int64, error) {
	f.OwnerID = ownerID
	where, args := whereClause(f)
	var n int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM medicines`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count medicines: %w", err)
	}
	return n, nil
}
