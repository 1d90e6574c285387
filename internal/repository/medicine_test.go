package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/NikhilYadav04/pillbin-v2/internal/models"
	"github.com/lib/pq"
)

var medicineRowColumns = []string{
	"id", "owner_id", "name", "purchase_date", "expiry_date", "status", "added_date", "is_deleted",
	"notes", "dosage", "manufacturer", "type", "batch_number",
}

func setupMedicineMock(t *testing.T) (*PostgresMedicineRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresMedicineRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestWhereClause(t *testing.T) {
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		filter   models.MedicineFilter
		wantSQL  string
		wantArgs int
	}{
		{"empty", models.MedicineFilter{}, "", 0},
		{"owner only", models.MedicineFilter{OwnerID: "u1"}, " WHERE owner_id = $1", 1},
		{
			"owner status live",
			models.MedicineFilter{OwnerID: "u1", Status: models.StatusExpired, Deleted: models.DeletedExclude},
			" WHERE owner_id = $1 AND status = $2 AND is_deleted = false",
			2,
		},
		{
			"cleanup sweep",
			models.MedicineFilter{Status: models.StatusExpired, ExpiresBefore: cutoff},
			" WHERE status = $1 AND expiry_date < $2",
			2,
		},
		{"only deleted", models.MedicineFilter{Deleted: models.DeletedOnly}, " WHERE is_deleted = true", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs := whereClause(tt.filter)
			if gotSQL != tt.wantSQL {
				t.Errorf("whereClause SQL = %q; want %q", gotSQL, tt.wantSQL)
			}
			if len(gotArgs) != tt.wantArgs {
				t.Errorf("whereClause args = %v; want %d args", gotArgs, tt.wantArgs)
			}
		})
	}
}

func TestFindByOwner_Success(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	expiry := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	added := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(medicineRowColumns).
		AddRow("m1", "u1", "Paracetamol", nil, expiry, "active", added, false, "", "500mg", "", "tablet", "").
		AddRow("m2", "u1", "Ibuprofen", added, expiry, "expired", added, false, "n", "", "acme", "", "B1")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM medicines WHERE owner_id = $1 AND is_deleted = false ORDER BY expiry_date ASC`)).
		WithArgs("u1").
		WillReturnRows(rows)

	meds, err := repo.FindByOwner(context.Background(), "u1", models.MedicineFilter{Deleted: models.DeletedExclude})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meds) != 2 {
		t.Fatalf("expected 2 medicines, got %d", len(meds))
	}
	if meds[0].PurchaseDate != nil {
		t.Errorf("expected nil purchase date, got %v", meds[0].PurchaseDate)
	}
	if meds[1].PurchaseDate == nil || !meds[1].PurchaseDate.Equal(added) {
		t.Errorf("unexpected purchase date: %v", meds[1].PurchaseDate)
	}
	if meds[1].Status != models.StatusExpired || meds[1].BatchNumber != "B1" {
		t.Errorf("unexpected medicine: %+v", meds[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindByOwner_QueryError(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM medicines WHERE owner_id = $1`)).
		WithArgs("u1").
		WillReturnError(errors.New("query fail"))

	_, err := repo.FindByOwner(context.Background(), "u1", models.MedicineFilter{})
	if err == nil || !regexp.MustCompile(`query medicines`).MatchString(err.Error()) {
		t.Errorf("expected query medicines error, got %v", err)
	}
}

func TestFind_CrossOwnerFilter(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(medicineRowColumns).
		AddRow("m1", "u1", "Paracetamol", nil, expiry, "expired", expiry, false, "", "", "", "", "").
		AddRow("m2", "u2", "Ibuprofen", nil, expiry, "expired", expiry, false, "", "", "", "", "")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM medicines WHERE status = $1 AND is_deleted = false AND expiry_date < $2 ORDER BY expiry_date ASC`)).
		WithArgs("expired", cutoff).
		WillReturnRows(rows)

	meds, err := repo.Find(context.Background(), models.MedicineFilter{
		Status: models.StatusExpired, Deleted: models.DeletedExclude, ExpiresBefore: cutoff,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meds) != 2 || meds[1].OwnerID != "u2" {
		t.Errorf("unexpected medicines: %+v", meds)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM medicines WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(medicineRowColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSave_Success(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	m := &models.Medicine{
		ID: "m1", OwnerID: "u1", Name: "Cetirizine",
		ExpiryDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Status:     models.StatusActive,
		AddedDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO medicines`)).
		WithArgs("m1", "u1", "Cetirizine", nil, m.ExpiryDate, "active", m.AddedDate, false, "", "", "", "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSave_OtherOwnerConflict(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`WHERE medicines.owner_id = EXCLUDED.owner_id`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), &models.Medicine{ID: "m1", OwnerID: "intruder"})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateStatus_Success(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE medicines SET status = $1 WHERE id = $2`)).
		WithArgs("expired", "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateStatus(context.Background(), "m1", models.StatusExpired); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM medicines WHERE id = $1`)).
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM medicines WHERE id = $1`)).
		WithArgs("m2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.DeleteByID(context.Background(), "m1")
	if err != nil || !removed {
		t.Errorf("DeleteByID(m1) = %v, %v; want true, nil", removed, err)
	}
	removed, err = repo.DeleteByID(context.Background(), "m2")
	if err != nil || removed {
		t.Errorf("DeleteByID(m2) = %v, %v; want false, nil", removed, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSoftDeleteByIDs_Success(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	ids := []string{"a", "b"}
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE medicines SET is_deleted = true WHERE owner_id = $1 AND id = ANY($2)`)).
		WithArgs("u1", pq.Array(ids)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.SoftDeleteByIDs(context.Background(), "u1", ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteByIDs_Success(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	ids := []string{"a"}
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM medicines WHERE owner_id = $1 AND id = ANY($2)`)).
		WithArgs("u1", pq.Array(ids)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteByIDs(context.Background(), "u1", ids)
	if err != nil || n != 1 {
		t.Errorf("DeleteByIDs = %d, %v; want 1, nil", n, err)
	}
}

func TestDeleteMany_CleanupFilter(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM medicines WHERE status = $1 AND expiry_date < $2`)).
		WithArgs("expired", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteMany(context.Background(), models.MedicineFilter{Status: models.StatusExpired, ExpiresBefore: cutoff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 rows, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteMany_RefusesEmptyFilter(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	if _, err := repo.DeleteMany(context.Background(), models.MedicineFilter{}); err == nil {
		t.Fatal("expected error for unfiltered delete")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected sql calls: %v", err)
	}
}

func TestCountByOwner_Success(t *testing.T) {
	repo, mock, cleanup := setupMedicineMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM medicines WHERE owner_id = $1 AND is_deleted = true`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(101)))

	n, err := repo.CountByOwner(context.Background(), "u1", models.MedicineFilter{Deleted: models.DeletedOnly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 101 {
		t.Errorf("expected 101, got %d", n)
	}
}
