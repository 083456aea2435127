package app

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/abbasmsh1/Banker/internal/store"
)

func TestGenerateIBANFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^AB\d{12}$`)
	for i := 0; i < 50; i++ {
		iban, err := GenerateIBAN()
		if err != nil {
			t.Fatalf("expected generation to succeed, got %v", err)
		}
		if !pattern.MatchString(iban) {
			t.Fatalf("expected AB followed by 12 digits, got %q", iban)
		}
	}
}

func TestGenerateAddressFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^CR[A-Z0-9]{32}$`)
	for i := 0; i < 50; i++ {
		address, err := GenerateAddress()
		if err != nil {
			t.Fatalf("expected generation to succeed, got %v", err)
		}
		if !pattern.MatchString(address) {
			t.Fatalf("expected CR followed by 32 uppercase alphanumerics, got %q", address)
		}
	}
}

func TestCreateAccount(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("alice", false)
	service := newTestService(repo)

	account, err := service.CreateAccount(context.Background(), user.ID, "Alice", "Bob", "555-0100")
	if err != nil {
		t.Fatalf("expected creation to succeed, got %v", err)
	}
	if account.UserID != user.ID {
		t.Fatalf("expected account bound to user")
	}
	if !account.Balance.Equal(decimal.Zero) {
		t.Fatalf("expected zero opening balance, got %s", account.Balance)
	}
	if len(account.IBAN) != 14 || len(account.Address) != 34 {
		t.Fatalf("unexpected identifier lengths iban=%d address=%d", len(account.IBAN), len(account.Address))
	}
}

func TestCreateAccountRequiresName(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("alice", false)
	service := newTestService(repo)

	if _, err := service.CreateAccount(context.Background(), user.ID, "  ", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateAccountUnknownUser(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)

	ghost := repo.addUser("ghost", false)
	delete(repo.users, ghost.ID)

	if _, err := service.CreateAccount(context.Background(), ghost.ID, "Ghost", "", ""); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateAccountSecondAccountRejected(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("alice", false)
	service := newTestService(repo)

	if _, err := service.CreateAccount(context.Background(), user.ID, "Alice", "", ""); err != nil {
		t.Fatalf("first account failed: %v", err)
	}
	if _, err := service.CreateAccount(context.Background(), user.ID, "Alice", "", ""); !errors.Is(err, store.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestCreateAccountRetriesOnIdentifierCollision(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("alice", false)
	repo.createAccountErrs = []error{store.ErrIdentifierConflict, store.ErrIdentifierConflict}
	service := newTestService(repo)

	account, err := service.CreateAccount(context.Background(), user.ID, "Alice", "", "")
	if err != nil {
		t.Fatalf("expected creation to succeed after collisions, got %v", err)
	}
	if account == nil || account.IBAN == "" {
		t.Fatalf("expected a provisioned account")
	}
}

func TestCreateAccountGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("alice", false)
	for i := 0; i < identifierAttempts; i++ {
		repo.createAccountErrs = append(repo.createAccountErrs, store.ErrIdentifierConflict)
	}
	service := newTestService(repo)

	if _, err := service.CreateAccount(context.Background(), user.ID, "Alice", "", ""); !errors.Is(err, store.ErrIdentifierConflict) {
		t.Fatalf("expected wrapped ErrIdentifierConflict after %d attempts, got %v", identifierAttempts, err)
	}
}

func TestAccountsForUser(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("alice", false)
	service := newTestService(repo)

	accounts, err := service.AccountsForUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("expected empty listing, got %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected no accounts before provisioning, got %d", len(accounts))
	}

	repo.addAccount(user.ID, "AB111111111111", "CRALICE", decimal.RequireFromString("42"))
	accounts, err = service.AccountsForUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected one account, got %d", len(accounts))
	}
	if !accounts[0].Balance.Equal(decimal.RequireFromString("42")) {
		t.Fatalf("expected balance 42, got %s", accounts[0].Balance)
	}
}

func TestCreditAccumulates(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("alice", false)
	repo.addAccount(user.ID, "AB111111111111", "CRALICE", decimal.Zero)
	service := newTestService(repo)

	if _, err := service.Credit(context.Background(), "AB111111111111", decimal.RequireFromString("10.25")); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	balance, err := service.Credit(context.Background(), "AB111111111111", decimal.RequireFromString("5"))
	if err != nil {
		t.Fatalf("second credit failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("15.25")) {
		t.Fatalf("expected balance 15.25, got %s", balance)
	}
}

func TestCreditValidation(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)

	if _, err := service.Credit(context.Background(), "AB111111111111", decimal.RequireFromString("-5")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := service.Credit(context.Background(), "AB999999999999", decimal.RequireFromString("5")); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
