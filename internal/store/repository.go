/**
 * @description
 * This file defines the Repository interface consumed by the application
 * service, along with the sentinel errors the storage layer surfaces. The
 * service layer matches these with errors.Is and never inspects driver
 * errors directly.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abbasmsh1/Banker/internal/domain"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("user already has an account")
	ErrIdentifierConflict = errors.New("account identifier already in use")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

// Repository is the persistence contract for users, accounts, beneficiaries
// and the transaction ledger.
type Repository interface {
	// Users.
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Accounts.
	CreateAccount(ctx context.Context, account *domain.Account) error
	FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	FindAccountByIBAN(ctx context.Context, iban string) (*domain.Account, error)
	FindAccountByAddress(ctx context.Context, address string) (*domain.Account, error)
	FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	CreditAccount(ctx context.Context, iban string, amount decimal.Decimal) (decimal.Decimal, error)

	// Transfers. ExecuteTransfer atomically debits the sender, credits the
	// recipient and appends both ledger rows; it returns the sender-side row.
	ExecuteTransfer(ctx context.Context, senderAccountID, recipientAccountID uuid.UUID, amount decimal.Decimal, at time.Time) (*domain.Transaction, error)

	// Beneficiaries.
	CreateBeneficiary(ctx context.Context, beneficiary *domain.Beneficiary) error
	ListBeneficiariesByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Beneficiary, error)

	// Reporting.
	ListTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, since *time.Time) ([]domain.Transaction, error)
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
	TotalSentSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	InsertDailySummary(ctx context.Context, summary *domain.DailySummary) error
}
