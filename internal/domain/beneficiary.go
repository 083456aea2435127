/**
 * @description
 * This file defines the core domain model for a Beneficiary: a saved
 * recipient reference in a user's address book. Entries are free-form and
 * deliberately unvalidated against the ledger. A beneficiary IBAN does not
 * need to belong to an existing account.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Beneficiary represents a user's saved transfer recipient.
type Beneficiary struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	IBAN      string    `json:"iban"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
