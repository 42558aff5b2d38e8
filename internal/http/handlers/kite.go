package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arthamatics/arthamatics-be/internal/auth"
	"github.com/arthamatics/arthamatics-be/internal/errs"
	"github.com/arthamatics/arthamatics-be/internal/http/respond"
	"github.com/arthamatics/arthamatics-be/internal/kite"
	"github.com/arthamatics/arthamatics-be/internal/middleware"
	"github.com/arthamatics/arthamatics-be/internal/models/dto"
	"github.com/arthamatics/arthamatics-be/internal/storage"
)

// tokenValidity is the fixed window applied to every exchanged access token.
// The broker's own token lifetime is not consulted.
const tokenValidity = 24 * time.Hour

// KiteHandler owns every broker-facing endpoint.
type KiteHandler struct {
	store  storage.UserStore
	svc    *kite.Service
	binder *kite.Binder
	tokens *auth.TokenManager
	log    *zap.Logger
}

// NewKiteHandler constructs the handler.
func NewKiteHandler(store storage.UserStore, svc *kite.Service, binder *kite.Binder, tokens *auth.TokenManager, log *zap.Logger) *KiteHandler {
	return &KiteHandler{store: store, svc: svc, binder: binder, tokens: tokens, log: log}
}

// Register attaches kite routes to the mux.
func (h *KiteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/kite/login", h.handleLoginURL)
	mux.Handle("/kite/session", middleware.RequireSession(h.tokens, http.HandlerFunc(h.handleSession)))
	mux.Handle("/kite/holdings", middleware.RequireSession(h.tokens, http.HandlerFunc(h.handleHoldings)))
	mux.Handle("/kite/orders", middleware.RequireSession(h.tokens, http.HandlerFunc(h.handleOrders)))
	mux.HandleFunc("/kite/quotes", h.handleQuotes)
	mux.HandleFunc("/kite/webhook", h.handleWebhook)
	mux.HandleFunc("/kite/test", h.handleTest)
}

func (h *KiteHandler) handleLoginURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"loginURL": h.svc.LoginURL()})
}

func (h *KiteHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.RequestToken) == "" {
		respond.Error(w, http.StatusBadRequest, "Request token is required")
		return
	}

	session, err := h.svc.GenerateSession(req.RequestToken)
	if err != nil {
		h.log.Error("generate kite session", zap.Int64("userID", claims.UserID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to generate session")
		return
	}

	expiry := time.Now().Add(tokenValidity)
	if err := h.store.SaveBrokerToken(r.Context(), claims.UserID, session.UserSessionTokens.AccessToken, expiry); err != nil {
		h.log.Error("store kite token", zap.Int64("userID", claims.UserID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to generate session")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": dto.SessionInfo{
			AccessToken: session.UserSessionTokens.AccessToken,
			UserID:      session.UserID,
			UserName:    session.UserProfile.UserName,
			Email:       session.UserProfile.Email,
		},
	})
}

func (h *KiteHandler) handleHoldings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	handle, err := h.binder.ResolveTradingContext(r.Context(), claims.UserID)
	if err != nil {
		h.respondFailure(w, err, "Failed to get holdings")
		return
	}
	holdings, err := handle.Holdings()
	if err != nil {
		h.respondFailure(w, err, "Failed to get holdings")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"holdings": holdings})
}

func (h *KiteHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListOrders(w, r)
	case http.MethodPost:
		h.handlePlaceOrder(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *KiteHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	handle, err := h.binder.ResolveTradingContext(r.Context(), claims.UserID)
	if err != nil {
		h.respondFailure(w, err, "Failed to get orders")
		return
	}
	orders, err := handle.Orders()
	if err != nil {
		h.respondFailure(w, err, "Failed to get orders")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *KiteHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req kite.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	// Validate before resolving the trading context so a malformed order
	// never touches the token or the remote API.
	if err := req.Validate(); err != nil {
		h.respondFailure(w, err, "Failed to place order")
		return
	}
	handle, err := h.binder.ResolveTradingContext(r.Context(), claims.UserID)
	if err != nil {
		h.respondFailure(w, err, "Failed to place order")
		return
	}
	order, err := handle.PlaceOrder(req)
	if err != nil {
		h.respondFailure(w, err, "Failed to place order")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *KiteHandler) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.QuotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Instruments == nil {
		respond.Error(w, http.StatusBadRequest, "Instruments array is required")
		return
	}
	quotes, err := h.svc.Quote(req.Instruments)
	if err != nil {
		h.respondFailure(w, err, "Failed to get quotes")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

// handleWebhook acknowledges broker postbacks. The payload is parsed and
// logged only; there is no signature verification and no order-state update.
func (h *KiteHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error("read webhook body", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		h.log.Error("parse webhook payload", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	h.log.Info("kite webhook received", zap.Any("payload", payload))
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *KiteHandler) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.svc.APIKeyConfigured() || !h.svc.APISecretConfigured() {
		respond.JSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "Kite API credentials not configured",
		})
		return
	}

	loginURL := h.svc.LoginURL()
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":              "success",
		"message":             "Kite API credentials configured successfully",
		"apiKeyConfigured":    true,
		"apiSecretConfigured": true,
		// Strip the query string so the API key is not echoed back.
		"loginURLEndsWith": strings.SplitN(loginURL, "?", 2)[0],
	})
}

// respondFailure maps gateway/store failures to the wire statuses the routes
// use: 400 for validation, 500 for everything else. Token errors keep their
// message so callers can tell them apart from other 500s.
func (h *KiteHandler) respondFailure(w http.ResponseWriter, err error, fallback string) {
	var vErr *errs.ValidationError
	switch {
	case errors.As(err, &vErr):
		respond.Error(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, errs.ErrNoToken), errors.Is(err, errs.ErrTokenExpired):
		h.log.Warn("trading context unavailable", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, err.Error())
	default:
		h.log.Error(fallback, zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, fallback)
	}
}
