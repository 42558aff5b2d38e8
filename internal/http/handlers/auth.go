package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arthamatics/arthamatics-be/internal/auth"
	"github.com/arthamatics/arthamatics-be/internal/errs"
	"github.com/arthamatics/arthamatics-be/internal/http/respond"
	"github.com/arthamatics/arthamatics-be/internal/models"
	"github.com/arthamatics/arthamatics-be/internal/models/dto"
	"github.com/arthamatics/arthamatics-be/internal/storage"
)

// AuthHandler owns register/login endpoints backed by Postgres.
type AuthHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager
	log    *zap.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, log: log}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validateCredentials(req.Email, req.Password); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Email:        strings.TrimSpace(req.Email),
		Role:         models.RoleCustomer,
		PasswordHash: passwordHash,
	}
	customer := models.Customer{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		KYCStatus: models.KYCPending,
	}
	created, err := h.store.CreateUser(r.Context(), user, customer)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "user already exists")
		default:
			h.log.Error("create user", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	user, err := h.store.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error("fetch user for login", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		h.log.Error("generate session token", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: token, User: user})
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is required")
	}
	if len(strings.TrimSpace(password)) < 8 || !utf8.ValidString(password) {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
