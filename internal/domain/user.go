/**
 * @description
 * This file defines the core domain model for a User. A user owns at most one
 * bank account and may hold the admin flag that unlocks provisioning and
 * reporting endpoints.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered identity in the system.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}
