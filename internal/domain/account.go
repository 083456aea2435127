/**
 * @description
 * This file defines the core domain model for an Account, the single ledger
 * entry a user owns. An account is addressable by two globally unique
 * identifiers: a bank-style IBAN and a crypto-style address. Balances are
 * exact decimals and never go negative.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents a user's balance-carrying ledger record.
type Account struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	HolderName  string          `json:"name"`
	FatherName  string          `json:"father_name"`
	PhoneNumber string          `json:"phone_number"`
	IBAN        string          `json:"iban"`
	Address     string          `json:"address"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
