/**
 * @description
 * HTTP handlers for registration and login. Both issue a bearer credential
 * on success; failures map onto 400/401/429 per the error taxonomy.
 */
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/abbasmsh1/Banker/internal/app"
	"github.com/abbasmsh1/Banker/internal/domain"
	"github.com/abbasmsh1/Banker/internal/store"
)

// Handlers holds the application service used by every endpoint.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

// RootHandler answers the unauthenticated welcome route.
func (h *Handlers) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Banking API"})
}

// RegisterHandler handles user self-registration.
func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			writeError(w, http.StatusBadRequest, "Username already registered")
			return
		}
		if errors.Is(err, app.ErrEmptyUsername) || errors.Is(err, app.ErrEmptyPassword) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=register outcome=failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// LoginHandler handles credential issuance for existing users.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		if errors.Is(err, app.ErrRateLimited) {
			writeError(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
			return
		}
		log.Printf("level=error component=api endpoint=login outcome=failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenResponse{AccessToken: token, TokenType: "bearer"})
}
