/**
 * @description
 * Scheduled job implementations. The nightly summary job snapshots the
 * ledger-wide balance total and the previous day's transfer volume into the
 * daily_summaries table.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/abbasmsh1/Banker/internal/domain"
	"github.com/abbasmsh1/Banker/internal/store"
)

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	repo   store.Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewJobs creates a new Jobs runner.
func NewJobs(repo store.Repository, logger *slog.Logger) *Jobs {
	return &Jobs{repo: repo, logger: logger, now: time.Now}
}

// RecordDailySummary snapshots yesterday's aggregate figures. It runs just
// after UTC midnight so the captured window is the full previous day.
func (j *Jobs) RecordDailySummary() {
	j.logger.Info("starting daily summary job")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	today := startOfDayUTC(j.now())
	yesterday := today.AddDate(0, 0, -1)

	totalBalance, err := j.repo.TotalBalance(ctx)
	if err != nil {
		j.logger.Error("failed to sum balances", "error", err)
		return
	}

	// The job runs shortly after midnight, so subtract anything already
	// transferred today to keep the window to the previous day exactly.
	sinceYesterday, err := j.repo.TotalSentSince(ctx, yesterday)
	if err != nil {
		j.logger.Error("failed to sum transferred amounts", "error", err)
		return
	}
	sinceToday, err := j.repo.TotalSentSince(ctx, today)
	if err != nil {
		j.logger.Error("failed to sum transferred amounts", "error", err)
		return
	}
	transferred := sinceYesterday.Sub(sinceToday)

	summary := &domain.DailySummary{
		SummaryDate:      yesterday,
		TotalBalance:     totalBalance,
		TotalTransferred: transferred,
	}
	if err := j.repo.InsertDailySummary(ctx, summary); err != nil {
		j.logger.Error("failed to record daily summary", "error", err)
		return
	}

	j.logger.Info("daily summary job finished",
		"summary_date", yesterday.Format("2006-01-02"),
		"total_balance", totalBalance.String(),
		"total_transferred", transferred.String(),
	)
}
