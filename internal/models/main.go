// Package models defines the core data structures for users, tracked
// medicines and the inventory views built from them.
package models

import "time"

// Status is the expiry state of a tracked medicine. It is always derived
// from the expiry date and the current time.
type Status string

const (
	// StatusActive is a medicine more than five days away from expiry.
	StatusActive Status = "active"
	// StatusExpiringSoon is a medicine that expires within five days.
	StatusExpiringSoon Status = "expiring_soon"
	// StatusExpired is a medicine whose expiry date has passed.
	StatusExpired Status = "expired"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpiringSoon, StatusExpired:
		return true
	}
	return false
}

// Medicine is a single physical medicine item tracked by its owner.
type Medicine struct {
	// ID is the unique identifier of the medicine, assigned on creation.
	ID string `json:"id"`
	// OwnerID references the owning user and never changes.
	OwnerID string `json:"ownerId"`
	// Name is the display name of the medicine.
	Name string `json:"name"`
	// PurchaseDate is optional.
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
	// ExpiryDate drives Status.
	ExpiryDate time.Time `json:"expiryDate"`
	// Status is consistent with ExpiryDate as of the last recomputation.
	Status Status `json:"status"`
	// AddedDate is the creation timestamp.
	AddedDate time.Time `json:"addedDate"`
	// IsDeleted marks a soft-deleted record.
	IsDeleted bool `json:"isDeleted"`

	Notes        string `json:"notes,omitempty"`
	Dosage       string `json:"dosage,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Type         string `json:"type,omitempty"`
	BatchNumber  string `json:"batchNumber,omitempty"`
}

// NewMedicine holds the caller-supplied fields for adding a medicine.
type NewMedicine struct {
	Name         string
	PurchaseDate *time.Time
	ExpiryDate   time.Time
	Notes        string
	Dosage       string
	Manufacturer string
	Type         string
	BatchNumber  string
}

// MedicineUpdate lists the fields an owner may change. Nil fields are left
// untouched; there is no way to change anything outside this list.
type MedicineUpdate struct {
	Name         *string
	PurchaseDate *time.Time
	ExpiryDate   *time.Time
	Notes        *string
	Dosage       *string
	Manufacturer *string
	Type         *string
	BatchNumber  *string
}

// DeletionFilter selects records by their soft-delete flag.
type DeletionFilter int

const (
	// DeletedAny matches records regardless of the flag.
	DeletedAny DeletionFilter = iota
	// DeletedExclude matches only records that are not soft-deleted.
	DeletedExclude
	// DeletedOnly matches only soft-deleted records.
	DeletedOnly
)

// MedicineFilter narrows a medicine query. Zero values match everything.
type MedicineFilter struct {
	OwnerID string
	Status  Status
	Deleted DeletionFilter
	// ExpiresBefore matches records whose expiry date is strictly earlier.
	ExpiresBefore time.Time
}

// Badge is a one-way achievement flag.
type Badge struct {
	Achieved   bool       `json:"achieved"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// Badges groups the disposal achievements of a user.
type Badges struct {
	FirstTimer    Badge `json:"firstTimer"`
	EcoHelper     Badge `json:"ecoHelper"`
	GreenChampion Badge `json:"greenChampion"`
}

// Stats are derived counters cached on the user.
type Stats struct {
	TotalMedicinesTracked  int64 `json:"totalMedicinesTracked"`
	ExpiringSoonCount      int64 `json:"expiringSoonCount"`
	MedicinesDisposedCount int64 `json:"medicinesDisposedCount"`
	CampaignsJoinedCount   int64 `json:"campaignsJoinedCount"`
}

// User is an application account together with its cached counters.
type User struct {
	// ID is the unique identifier for the user.
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"fullName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	// MedicineCount is the running count of non-deleted medicines.
	MedicineCount int64     `json:"medicineCount"`
	Stats         Stats     `json:"stats"`
	Badges        Badges    `json:"badges"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Page selects a window of a list. Page numbers start at 1.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// InventoryCounts are computed over the full, unpaginated buckets.
type InventoryCounts struct {
	Active       int `json:"active"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
	Total        int `json:"total"`
}

// Inventory is an owner's non-deleted medicines partitioned by status.
// Each bucket is paginated independently with the same page settings.
type Inventory struct {
	Active       []Medicine      `json:"activeMedicines"`
	ExpiringSoon []Medicine      `json:"expiringSoonMedicines"`
	Expired      []Medicine      `json:"expiredMedicines"`
	Counts       InventoryCounts `json:"counts"`
	Page         Page            `json:"page"`
}

// DeletedInventory lists an owner's soft-deleted medicines.
type DeletedInventory struct {
	Medicines    []Medicine `json:"medicines"`
	TotalDeleted int        `json:"totalDeleted"`
	Page         Page       `json:"page"`
}

// DeleteResult describes the outcome of a single delete.
type DeleteResult struct {
	ID string `json:"id"`
	// Status is the status the medicine had before deletion.
	Status Status `json:"status"`
	// Hard is true when the record was removed from storage.
	Hard          bool  `json:"hard"`
	DisposedCount int64 `json:"disposedCount"`
}

// BulkDeleteResult describes the outcome of a bulk delete.
type BulkDeleteResult struct {
	Affected           int64 `json:"disposedCount"`
	Hard               bool  `json:"hard"`
	TotalDisposedCount int64 `json:"totalDisposedCount"`
}
