/**
 * @description
 * Beneficiary registry operations. Entries are a per-user convenience list
 * and are intentionally not validated against the account ledger.
 */
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abbasmsh1/Banker/internal/domain"
)

// AddBeneficiary saves an address-book entry for the user.
func (s *Service) AddBeneficiary(ctx context.Context, userID uuid.UUID, req domain.AddBeneficiaryRequest) (*domain.Beneficiary, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: beneficiary name is required", ErrInvalidInput)
	}
	beneficiary := &domain.Beneficiary{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		IBAN:    strings.TrimSpace(req.IBAN),
		Address: strings.TrimSpace(req.Address),
	}
	if err := s.repo.CreateBeneficiary(ctx, beneficiary); err != nil {
		return nil, err
	}
	return beneficiary, nil
}

// ListBeneficiaries returns the user's entries in insertion order.
func (s *Service) ListBeneficiaries(ctx context.Context, userID uuid.UUID) ([]domain.Beneficiary, error) {
	return s.repo.ListBeneficiariesByUserID(ctx, userID)
}
