package app

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abbasmsh1/Banker/internal/domain"
)

func TestTokenIssueAndVerify(t *testing.T) {
	manager := NewTokenManager("secret", time.Minute)
	user := &domain.User{ID: uuid.New(), Username: "alice"}

	token, err := manager.Issue(user)
	if err != nil {
		t.Fatalf("expected issue to succeed, got %v", err)
	}

	userID, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected verify to succeed, got %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected user id %s, got %s", user.ID, userID)
	}
}

func TestTokenVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Minute)
	verifier := NewTokenManager("secret-b", time.Minute)
	user := &domain.User{ID: uuid.New(), Username: "alice"}

	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenVerifyRejectsExpired(t *testing.T) {
	manager := &TokenManager{secret: []byte("secret"), ttl: -time.Minute}
	user := &domain.User{ID: uuid.New(), Username: "alice"}

	token, err := manager.Issue(user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired credential, got %v", err)
	}
}

func TestTokenVerifyRejectsTampered(t *testing.T) {
	manager := NewTokenManager("secret", time.Minute)
	user := &domain.User{ID: uuid.New(), Username: "alice"}

	token, err := manager.Issue(user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := manager.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered credential, got %v", err)
	}
}

func TestNewTokenManagerDefaultsTTL(t *testing.T) {
	manager := NewTokenManager("secret", 0)
	if manager.ttl != 30*time.Minute {
		t.Fatalf("expected default ttl of 30m, got %s", manager.ttl)
	}
}
