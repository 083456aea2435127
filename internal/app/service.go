/**
 * @description
 * This file contains the core application service for the banking backend.
 * The Service layer orchestrates data from the repository and applies the
 * business rules for identity, accounts, transfers, beneficiaries and
 * reporting. Handlers talk to this layer only; the storage context is
 * injected at construction and scoped per request through context.Context.
 */
package app

import (
	"context"
	"errors"

	"github.com/abbasmsh1/Banker/internal/store"
)

var (
	ErrInvalidAmount      = errors.New("amount must be a positive value with at most two decimal places")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrMissingRecipient   = errors.New("either to_iban or to_address is required")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrSelfTransfer       = errors.New("cannot transfer to your own account")
	ErrRateLimited        = errors.New("too many attempts, try again later")
	ErrEmptyUsername      = errors.New("username is required")
	ErrEmptyPassword      = errors.New("password is required")
	ErrInvalidInput       = errors.New("invalid input")
)

// RateLimiter decides whether a single attempt for scope/subject may
// proceed. The limiter owns its limit and window.
type RateLimiter interface {
	Allow(ctx context.Context, scope, subject string) (Decision, error)
}

// Service provides the business logic for the banking API.
type Service struct {
	repo          store.Repository
	tokens        *TokenManager
	limiter       RateLimiter
	publisher     EventPublisher
	eventExchange string
}

// NewService creates a new banking service.
func NewService(repo store.Repository, tokens *TokenManager) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
	}
}

// SetLoginRateLimiter installs a distributed limiter for login attempts.
// A nil limiter disables rate limiting.
func (s *Service) SetLoginRateLimiter(limiter RateLimiter) {
	s.limiter = limiter
}
