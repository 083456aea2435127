/**
 * @description
 * The transfer engine. Validates a transfer request, resolves the recipient
 * (IBAN first, then crypto address), and hands the atomic debit/credit/log
 * sequence to the repository. The early balance check here is a fast-path
 * reject only; the authoritative check runs inside the storage transaction
 * while both account rows are locked.
 */
package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abbasmsh1/Banker/internal/domain"
	"github.com/abbasmsh1/Banker/internal/store"
)

// validateAmount enforces positive amounts with at most two decimal places.
func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return ErrInvalidAmount
	}
	return nil
}

// resolveRecipient looks the recipient up by IBAN first, then by address.
// The IBAN wins when both are supplied.
func (s *Service) resolveRecipient(ctx context.Context, toIBAN, toAddress string) (*domain.Account, error) {
	if toIBAN != "" {
		account, err := s.repo.FindAccountByIBAN(ctx, toIBAN)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, store.ErrAccountNotFound) {
			return nil, err
		}
	}
	if toAddress != "" {
		account, err := s.repo.FindAccountByAddress(ctx, toAddress)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, store.ErrAccountNotFound) {
			return nil, err
		}
	}
	return nil, ErrRecipientNotFound
}

// Transfer moves amount from the sender's account to the account identified
// by req.ToIBAN or req.ToAddress and returns the sender-side ledger row.
func (s *Service) Transfer(ctx context.Context, senderUserID uuid.UUID, req domain.TransferRequest) (*domain.Transaction, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	toIBAN := strings.TrimSpace(req.ToIBAN)
	toAddress := strings.TrimSpace(req.ToAddress)
	if toIBAN == "" && toAddress == "" {
		return nil, ErrMissingRecipient
	}

	sender, err := s.repo.FindAccountByUserID(ctx, senderUserID)
	if err != nil {
		return nil, err
	}
	if sender.Balance.LessThan(req.Amount) {
		return nil, store.ErrInsufficientFunds
	}

	recipient, err := s.resolveRecipient(ctx, toIBAN, toAddress)
	if err != nil {
		return nil, err
	}
	if recipient.ID == sender.ID {
		return nil, ErrSelfTransfer
	}

	at := time.Now().UTC()
	tx, err := s.repo.ExecuteTransfer(ctx, sender.ID, recipient.ID, req.Amount, at)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=app op=transfer outcome=completed sender_account=%s recipient_account=%s amount=%s", sender.ID, recipient.ID, req.Amount)

	s.publishTransferEvent(ctx, tx, sender, recipient)
	return tx, nil
}
