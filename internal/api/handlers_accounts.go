/**
 * @description
 * HTTP handlers for the authenticated user surface: own accounts,
 * beneficiaries, transfers and transaction history.
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

// ListAccountsHandler returns the caller's accounts (a list of at most one).
func (h *Handlers) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	accounts, err := h.service.AccountsForUser(r.Context(), user.ID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_accounts outcome=failed user_id=%s err=%v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// AddBeneficiaryHandler saves an address-book entry for the caller.
func (h *Handlers) AddBeneficiaryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	var req domain.AddBeneficiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	beneficiary, err := h.service.AddBeneficiary(r.Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=add_beneficiary outcome=failed user_id=%s err=%v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, beneficiary)
}

// ListBeneficiariesHandler returns the caller's address book.
func (h *Handlers) ListBeneficiariesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	beneficiaries, err := h.service.ListBeneficiaries(r.Context(), user.ID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_beneficiaries outcome=failed user_id=%s err=%v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, beneficiaries)
}

// TransferHandler executes a money transfer from the caller's account.
func (h *Handlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.service.Transfer(r.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidAmount),
			errors.Is(err, app.ErrMissingRecipient),
			errors.Is(err, app.ErrSelfTransfer):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrAccountNotFound):
			writeError(w, http.StatusBadRequest, "You do not have an account")
		case errors.Is(err, store.ErrInsufficientFunds):
			writeError(w, http.StatusBadRequest, "Insufficient funds")
		case errors.Is(err, app.ErrRecipientNotFound):
			writeError(w, http.StatusNotFound, "Recipient not found")
		default:
			log.Printf("level=error component=api endpoint=transfer outcome=failed user_id=%s err=%v", user.ID, err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Printf("level=info component=api endpoint=transfer outcome=completed user_id=%s transaction_id=%s", user.ID, tx.ID)
	writeJSON(w, http.StatusOK, tx)
}

// ListTransactionsHandler returns the caller's transaction history, newest
// first, optionally windowed by ?period=daily|weekly.
func (h *Handlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return
	}

	period, err := app.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), user.ID, period)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_transactions outcome=failed user_id=%s err=%v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}
