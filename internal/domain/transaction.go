/**
 * @description
 * This file defines the Transaction domain model. Every successful transfer
 * appends exactly two rows to the ledger: a "send" row on the sender's
 * account carrying the recipient's identifiers, and a "receive" row on the
 * recipient's account carrying the sender's identifiers. Both rows share one
 * amount and one timestamp. Rows are append-only and never updated.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tags which side of a transfer a transaction row records.
type Direction string

const (
	DirectionSend    Direction = "send"
	DirectionReceive Direction = "receive"
)

// Transaction represents one side of a completed transfer.
type Transaction struct {
	ID                  uuid.UUID       `json:"id"`
	AccountID           uuid.UUID       `json:"account_id"`
	Direction           Direction       `json:"type"`
	Amount              decimal.Decimal `json:"amount"`
	CounterpartyIBAN    *string         `json:"to_iban"`
	CounterpartyAddress *string         `json:"to_address"`
	CreatedAt           time.Time       `json:"timestamp"`
}

// DailySummary is the nightly aggregate snapshot recorded by the scheduler.
type DailySummary struct {
	SummaryDate      time.Time       `json:"summary_date"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	TotalTransferred decimal.Decimal `json:"total_transferred"`
	CreatedAt        time.Time       `json:"created_at"`
}
