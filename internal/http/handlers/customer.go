package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/arthamatics/arthamatics-be/internal/auth"
	"github.com/arthamatics/arthamatics-be/internal/http/respond"
	"github.com/arthamatics/arthamatics-be/internal/middleware"
	"github.com/arthamatics/arthamatics-be/internal/models/dto"
	"github.com/arthamatics/arthamatics-be/internal/storage"
)

// CustomerHandler owns the KYC profile update endpoint.
type CustomerHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager
	log    *zap.Logger
}

// NewCustomerHandler constructs the handler.
func NewCustomerHandler(store storage.UserStore, tokens *auth.TokenManager, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{store: store, tokens: tokens, log: log}
}

// Register attaches customer routes to the mux.
func (h *CustomerHandler) Register(mux *http.ServeMux) {
	mux.Handle("/customer/update", middleware.RequireSession(h.tokens, http.HandlerFunc(h.handleUpdate)))
}

func (h *CustomerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.Address) == "" {
		respond.Error(w, http.StatusBadRequest, "All fields are required")
		return
	}

	// Contact-info changes always force KYC re-review; the store resets the
	// status to pending even if it was approved.
	if err := h.store.UpdateCustomerContact(r.Context(), claims.UserID, req.Phone, req.Address); err != nil {
		h.log.Error("update customer profile", zap.Int64("userID", claims.UserID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}
