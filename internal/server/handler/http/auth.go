// Package http provides the chi router and HTTP handlers of the medicine
// tracker API.
package http

import (
	"context"
	"net/http"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
	"github.com/NikhilYadav04/pillbin-v2/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the account operations required by the HTTP handlers.
type AuthService interface {
	// Register creates an account and returns a bearer token for it.
	Register(ctx context.Context, reg service.Registration) (string, *models.User, error)
}

// AuthHandler handles account registration.
type AuthHandler struct {
	// AuthService performs the underlying account operations.
	AuthService AuthService
	Log         *zap.Logger
}

// RegisterRequest represents the JSON payload for registration.
type RegisterRequest struct {
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

// Register handles POST /api/register. It expects a JSON body with an
// email and responds with the new user and a bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !readJSON(w, r, &req) {
		return
	}

	token, u, err := h.AuthService.Register(r.Context(), service.Registration{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Account created", map[string]any{
		"token": token,
		"user":  u,
	})
}
