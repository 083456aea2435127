/**
 * @description
 * Account ledger operations: provisioning, lookup and the admin credit path.
 * Account creation generates the IBAN and crypto address and retries on a
 * unique-constraint collision, so identifier uniqueness holds globally even
 * when two generations land on the same string.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abbasmsh1/Banker/internal/domain"
	"github.com/abbasmsh1/Banker/internal/store"
)

// identifierAttempts bounds the regenerate-on-collision loop.
const identifierAttempts = 5

// CreateAccount provisions the single account a user may own. The balance
// starts at zero; only transfers and admin credits move it afterwards.
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, name, fatherName, phone string) (*domain.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < identifierAttempts; attempt++ {
		iban, err := GenerateIBAN()
		if err != nil {
			return nil, err
		}
		address, err := GenerateAddress()
		if err != nil {
			return nil, err
		}

		account := &domain.Account{
			UserID:      userID,
			HolderName:  name,
			FatherName:  fatherName,
			PhoneNumber: phone,
			IBAN:        iban,
			Address:     address,
			Balance:     decimal.Zero,
		}
		err = s.repo.CreateAccount(ctx, account)
		if err == nil {
			log.Printf("level=info component=app op=create_account account_id=%s user_id=%s", account.ID, userID)
			return account, nil
		}
		if errors.Is(err, store.ErrIdentifierConflict) {
			log.Printf("level=warn component=app op=create_account msg=\"identifier collision, regenerating\" attempt=%d", attempt+1)
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("could not generate unique account identifiers: %w", lastErr)
}

// AccountsForUser returns the user's accounts as a list of at most one.
func (s *Service) AccountsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	account, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return []domain.Account{}, nil
		}
		return nil, err
	}
	return []domain.Account{*account}, nil
}

// AccountByID returns a single account for the admin detail view.
func (s *Service) AccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.repo.FindAccountByID(ctx, id)
}

// AllAccounts returns every account for the admin overview.
func (s *Service) AllAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// Credit adds funds to the account with the given IBAN and returns the new
// balance. Repeated calls accumulate. The not-found error deliberately
// carries no information about which IBANs do exist.
func (s *Service) Credit(ctx context.Context, iban string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	newBalance, err := s.repo.CreditAccount(ctx, strings.TrimSpace(iban), amount)
	if err != nil {
		return decimal.Zero, err
	}
	log.Printf("level=info component=app op=credit iban=%s amount=%s new_balance=%s", iban, amount, newBalance)
	return newBalance, nil
}
