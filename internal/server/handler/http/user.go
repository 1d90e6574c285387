package http

import (
	"context"
	"net/http"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
	"github.com/NikhilYadav04/pillbin-v2/internal/service"
	"go.uber.org/zap"
)

// UserService defines the profile operations required by the HTTP handlers.
type UserService interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd service.ProfileUpdate) (*models.User, error)
}

// Reconciler rebuilds an owner's cached counters.
type Reconciler interface {
	Reconcile(ctx context.Context, ownerID string) (*models.User, error)
}

// UserHandler serves the /api/user endpoints.
type UserHandler struct {
	UserService UserService
	Reconciler  Reconciler
	Log         *zap.Logger
}

// ProfileRequest is the JSON payload for editing a profile.
type ProfileRequest struct {
	FullName    *string `json:"fullName"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
}

// Profile handles GET /api/user/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}
	u, err := h.UserService.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"user": u})
}

// EditProfile handles PUT /api/user/profile.
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if !readJSON(w, r, &req) {
		return
	}
	u, err := h.UserService.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Profile updated", map[string]any{"user": u})
}

// Reconcile handles POST /api/user/reconcile.
func (h *UserHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID, ok := owner(w, r)
	if !ok {
		return
	}
	u, err := h.Reconciler.Reconcile(r.Context(), userID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Counters reconciled", map[string]any{"user": u})
}
