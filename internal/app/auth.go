/**
 * @description
 * Identity operations: registration, login and credential authentication.
 * Passwords are stored as bcrypt hashes. Login optionally consumes a
 * distributed rate limit per username so password guessing cannot run
 * unthrottled.
 */
package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/abbasmsh1/Banker/internal/domain"
	"github.com/abbasmsh1/Banker/internal/store"
)

// Register creates a new non-admin user and returns a signed credential.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	user, err := s.createUser(ctx, username, password, false)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user)
}

// CreateUser provisions a user on behalf of an admin. Unlike Register it can
// set the admin flag and returns the record instead of a credential.
func (s *Service) CreateUser(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error) {
	return s.createUser(ctx, username, password, isAdmin)
}

func (s *Service) createUser(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("level=info component=app op=create_user user_id=%s admin=%t", user.ID, user.IsAdmin)
	return user, nil
}

// Login verifies a username/password pair and returns a signed credential.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)

	if s.limiter != nil {
		decision, limitErr := s.limiter.Allow(ctx, "login", username)
		if limitErr != nil {
			// A limiter outage must not lock everyone out.
			log.Printf("level=warn component=app op=login msg=\"rate limiter unavailable\" err=%v", limitErr)
		} else if !decision.Allowed {
			log.Printf("level=warn component=app op=login outcome=rate_limited username=%s retry_after=%s", username, decision.RetryAfter)
			return "", ErrRateLimited
		}
	}

	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user)
}

// Authenticate resolves a bearer credential to its user record. The record
// is re-read from storage so a deleted user or a stale admin claim can never
// authenticate; authorization decisions use the returned record, not the
// token payload.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	userID, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin user when it does not exist yet.
// Called once at startup when ADMIN_USERNAME/ADMIN_PASSWORD are configured.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil
	}
	_, err := s.createUser(ctx, username, password, true)
	if errors.Is(err, store.ErrDuplicateUsername) {
		return nil
	}
	return err
}
