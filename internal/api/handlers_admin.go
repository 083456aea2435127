/**
 * @description
 * HTTP handlers for the admin surface: user and account provisioning, fund
 * injection and ledger-wide reporting. All routes here sit behind the
 * AdminOnly middleware; the admin flag is re-derived from the users table on
 * every request.
 */
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/abbasmsh1/Banker/internal/app"
	"github.com/abbasmsh1/Banker/internal/domain"
	"github.com/abbasmsh1/Banker/internal/store"
)

// CreateAccountHandler provisions an account for an existing user.
func (h *Handlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	account, err := h.service.CreateAccount(r.Context(), userID, req.Name, req.FatherName, req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAccountExists):
			writeError(w, http.StatusBadRequest, "User already has an account")
		case errors.Is(err, store.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, app.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("level=error component=api endpoint=create_account outcome=failed user_id=%s err=%v", userID, err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// CreateUserHandler provisions a user without an account.
func (h *Handlers) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Username, req.Password, false)
	if err != nil {
		h.writeCreateUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateUserAccountHandler provisions a user and their account in one call.
func (h *Handlers) CreateUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Username, req.Password, req.IsAdmin)
	if err != nil {
		h.writeCreateUserError(w, err)
		return
	}

	if _, err := h.service.CreateAccount(r.Context(), user.ID, req.Name, req.FatherName, req.PhoneNumber); err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=create_user_account outcome=failed user_id=%s err=%v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) writeCreateUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, "Username already registered")
	case errors.Is(err, app.ErrEmptyUsername), errors.Is(err, app.ErrEmptyPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("level=error component=api endpoint=create_user outcome=failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetAccountHandler returns one account by id for the admin detail view.
func (h *Handlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account ID format")
		return
	}

	account, err := h.service.AccountByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "Account not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_account outcome=failed account_id=%s err=%v", accountID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// ListAllAccountsHandler returns every account for the admin overview.
func (h *Handlers) ListAllAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.AllAccounts(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=all_accounts outcome=failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// AddMoneyHandler credits an account by IBAN. A missing account yields a
// plain 404: the response must not enumerate which IBANs exist.
func (h *Handlers) AddMoneyHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.AddMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	newBalance, err := h.service.Credit(r.Context(), req.IBAN, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "Account not found")
		default:
			log.Printf("level=error component=api endpoint=add_money outcome=failed err=%v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Funds added",
		"new_balance": newBalance,
	})
}

// TotalMoneyHandler returns the sum of all account balances.
func (h *Handlers) TotalMoneyHandler(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalMoney(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=total_money outcome=failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"total_money": total})
}

// TotalTransferredTodayHandler returns the send-side volume since UTC midnight.
func (h *Handlers) TotalTransferredTodayHandler(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalTransferredToday(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=total_transferred_today outcome=failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"total_transferred_today": total})
}
