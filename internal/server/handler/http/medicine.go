package http

import (
	"context"
	"net/http"
	"time"

	"github.com/NikhilYadav04/pillbin-v2/internal/middleware"
	"github.com/NikhilYadav04/pillbin-v2/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MedicineService defines the medicine lifecycle operations required by
// the HTTP handlers.
type MedicineService interface {
	AddMedicine(ctx context.Context, ownerID string, in models.NewMedicine) (*models.Medicine, error)
	GetMedicine(ctx context.Context, ownerID, id string) (*models.Medicine, error)
	GetInventory(ctx context.Context, ownerID string, page models.Page) (*models.Inventory, error)
	GetDeletedMedicines(ctx context.Context, ownerID string, page models.Page) (*models.DeletedInventory, error)
	UpdateMedicine(ctx context.Context, ownerID, id string, upd models.MedicineUpdate) (*models.Medicine, error)
	SoftDeleteMedicine(ctx context.Context, ownerID, id string) (*models.DeleteResult, error)
	HardDeleteMedicine(ctx context.Context, ownerID, id string) (*models.DeleteResult, error)
	DeleteAllExpired(ctx context.Context, ownerID string) (*models.BulkDeleteResult, error)
	HardDeleteAllSoftDeleted(ctx context.Context, ownerID string) (*models.BulkDeleteResult, error)
	UpdateAllStatuses(ctx context.Context) (int, error)
	CleanupExpiredMedicines(ctx context.Context) (int64, error)
}

// MedicineHandler serves the /api/medicine endpoints.
type MedicineHandler struct {
	MedicineService MedicineService
	Log             *zap.Logger
}

// AddMedicineRequest is the JSON payload for adding a medicine. Dates are
// "YYYY-MM-DD" or RFC 3339.
type AddMedicineRequest struct {
	Name         string `json:"name"`
	PurchaseDate string `json:"purchaseDate"`
	ExpiryDate   string `json:"expiryDate"`
	Notes        string `json:"notes"`
	Dosage       string `json:"dosage"`
	Manufacturer string `json:"manufacturer"`
	Type         string `json:"type"`
	BatchNumber  string `json:"batchNumber"`
}

func (req AddMedicineRequest) toInput() (models.NewMedicine, error) {
	in := models.NewMedicine{
		Name:         req.Name,
		Notes:        req.Notes,
		Dosage:       req.Dosage,
		Manufacturer: req.Manufacturer,
		Type:         req.Type,
		BatchNumber:  req.BatchNumber,
	}
	purchase, err := parseDate("purchaseDate", req.PurchaseDate)
	if err != nil {
		return in, err
	}
	in.PurchaseDate = purchase
	expiry, err := parseDate("expiryDate", req.ExpiryDate)
	if err != nil {
		return in, err
	}
	if expiry != nil {
		in.ExpiryDate = *expiry
	}
	return in, nil
}

// UpdateMedicineRequest is the JSON payload for editing a medicine. Only
// these fields can change; anything else in the body is ignored.
type UpdateMedicineRequest struct {
	Name         *string `json:"name"`
	PurchaseDate *string `json:"purchaseDate"`
	ExpiryDate   *string `json:"expiryDate"`
	Notes        *string `json:"notes"`
	Dosage       *string `json:"dosage"`
	Manufacturer *string `json:"manufacturer"`
	Type         *string `json:"type"`
	BatchNumber  *string `json:"batchNumber"`
}

func (req UpdateMedicineRequest) toUpdate() (models.MedicineUpdate, error) {
	upd := models.MedicineUpdate{
		Name:         req.Name,
		Notes:        req.Notes,
		Dosage:       req.Dosage,
		Manufacturer: req.Manufacturer,
		Type:         req.Type,
		BatchNumber:  req.BatchNumber,
	}
	if req.PurchaseDate != nil {
		t, err := parseDate("purchaseDate", *req.PurchaseDate)
		if err != nil {
			return upd, err
		}
		upd.PurchaseDate = t
	}
	if req.ExpiryDate != nil {
		t, err := parseDate("expiryDate", *req.ExpiryDate)
		if err != nil {
			return upd, err
		}
		// An empty expiry reaches the service as the zero time and is rejected there.
		if t == nil {
			t = &time.Time{}
		}
		upd.ExpiryDate = t
	}
	return upd, nil
}

// owner returns the authenticated user id, writing 401 when it is missing.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := middleware.GetUserIDFromContext(r.Context())
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, "not authenticated", nil)
		return "", false
	}
	return id, true
}

// Add handles POST /api/medicine/add.
func (h *MedicineHandler) Add(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var req AddMedicineRequest
	if !readJSON(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	m, err := h.MedicineService.AddMedicine(r.Context(), ownerID, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Medicine added successfully", map[string]any{"medicine": m})
}

// Inventory handles GET /api/medicine/inventory.
func (h *MedicineHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	inv, err := h.MedicineService.GetInventory(r.Context(), ownerID, pageFromQuery(r))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"inventory": inv})
}

// DeletedInventory handles GET /api/medicine/deleted-inventory.
func (h *MedicineHandler) DeletedInventory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	inv, err := h.MedicineService.GetDeletedMedicines(r.Context(), ownerID, pageFromQuery(r))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "", inv)
}

// Get handles GET /api/medicine/{medicineID}.
func (h *MedicineHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	m, err := h.MedicineService.GetMedicine(r.Context(), ownerID, chi.URLParam(r, "medicineID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"medicine": m})
}

// Update handles PUT /api/medicine/update/{medicineID}.
func (h *MedicineHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	var req UpdateMedicineRequest
	if !readJSON(w, r, &req) {
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	m, err := h.MedicineService.UpdateMedicine(r.Context(), ownerID, chi.URLParam(r, "medicineID"), upd)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Medicine updated successfully", map[string]any{"medicine": m})
}

// Delete handles DELETE /api/medicine/delete/{medicineID}.
func (h *MedicineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	res, err := h.MedicineService.SoftDeleteMedicine(r.Context(), ownerID, chi.URLParam(r, "medicineID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Medicine deleted successfully", res)
}

// HardDelete handles DELETE /api/medicine/delete/{medicineID}/hard.
func (h *MedicineHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	res, err := h.MedicineService.HardDeleteMedicine(r.Context(), ownerID, chi.URLParam(r, "medicineID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Medicine permanently deleted", res)
}

// DeleteAllExpired handles DELETE /api/medicine/delete-all-expired.
func (h *MedicineHandler) DeleteAllExpired(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	res, err := h.MedicineService.DeleteAllExpired(r.Context(), ownerID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Expired medicines deleted successfully", res)
}

// DeleteAllHard handles DELETE /api/medicine/delete-all-hard.
func (h *MedicineHandler) DeleteAllHard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	res, err := h.MedicineService.HardDeleteAllSoftDeleted(r.Context(), ownerID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Deleted medicines permanently removed", res)
}

// UpdateStatuses handles POST /api/medicine/update-statuses.
func (h *MedicineHandler) UpdateStatuses(w http.ResponseWriter, r *http.Request) {
	n, err := h.MedicineService.UpdateAllStatuses(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Medicine statuses updated", map[string]int{"updatedCount": n})
}

// CleanupExpired handles POST /api/medicine/cleanup-expired.
func (h *MedicineHandler) CleanupExpired(w http.ResponseWriter, r *http.Request) {
	n, err := h.MedicineService.CleanupExpiredMedicines(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Expired medicines cleaned up", map[string]int64{"deletedCount": n})
}
