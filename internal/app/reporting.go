/**
 * @description
 * Reporting operations: time-windowed transaction history for users and the
 * two admin-only aggregates. Period windows are computed in UTC: "daily"
 * starts at today's UTC midnight and "weekly" at Monday 00:00 UTC of the
 * current week.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abbasmsh1/Banker/internal/domain"
	"github.com/abbasmsh1/Banker/internal/store"
)

// Period restricts a transaction listing to a time window.
type Period string

const (
	PeriodNone   Period = ""
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// ParsePeriod validates the period query parameter.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case PeriodNone, PeriodDaily, PeriodWeekly:
		return Period(raw), nil
	default:
		return PeriodNone, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, raw)
	}
}

// startOfDayUTC truncates t to UTC midnight.
func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfWeekUTC returns Monday 00:00 UTC of t's ISO week.
func startOfWeekUTC(t time.Time) time.Time {
	day := startOfDayUTC(t)
	weekday := int(day.Weekday())
	// time.Weekday counts Sunday as 0; shift so Monday is the week start.
	offset := (weekday + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// periodStart returns the window lower bound for the given period relative
// to now, or nil for an unbounded listing.
func periodStart(period Period, now time.Time) *time.Time {
	switch period {
	case PeriodDaily:
		start := startOfDayUTC(now)
		return &start
	case PeriodWeekly:
		start := startOfWeekUTC(now)
		return &start
	default:
		return nil
	}
}

// ListTransactions returns the user's ledger rows newest first, restricted
// to the requested period. Users without an account get an empty list.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, period Period) ([]domain.Transaction, error) {
	account, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return []domain.Transaction{}, nil
		}
		return nil, err
	}
	return s.repo.ListTransactionsByAccountID(ctx, account.ID, periodStart(period, time.Now()))
}

// TotalMoney sums every account balance (admin reporting).
func (s *Service) TotalMoney(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.TotalBalance(ctx)
}

// TotalTransferredToday sums send-direction amounts since UTC midnight
// (admin reporting).
func (s *Service) TotalTransferredToday(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.TotalSentSince(ctx, startOfDayUTC(time.Now()))
}
