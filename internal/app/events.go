/**
 * @description
 * Best-effort event publishing. When a message broker is configured, every
 * completed transfer is announced on a durable topic exchange so dashboards
 * or downstream consumers can react. Publishing failures never fail the
 * transfer: the ledger row has already committed.
 */
package app

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abbasmsh1/Banker/internal/domain"
)

// EventPublisher is the contract for the optional message-broker producer.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// TransferCompletedEvent is the payload published after a transfer commits.
type TransferCompletedEvent struct {
	TransactionID string          `json:"transaction_id"`
	SenderIBAN    string          `json:"sender_iban"`
	RecipientIBAN string          `json:"recipient_iban"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// SetEventPublisher installs a producer for transfer events. A nil publisher
// disables publishing.
func (s *Service) SetEventPublisher(publisher EventPublisher, exchange string) {
	s.publisher = publisher
	s.eventExchange = exchange
}

func (s *Service) publishTransferEvent(ctx context.Context, tx *domain.Transaction, sender, recipient *domain.Account) {
	if s.publisher == nil {
		return
	}
	event := TransferCompletedEvent{
		TransactionID: tx.ID.String(),
		SenderIBAN:    sender.IBAN,
		RecipientIBAN: recipient.IBAN,
		Amount:        tx.Amount,
		Timestamp:     tx.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, s.eventExchange, "transfer.completed", event); err != nil {
		log.Printf("level=warn component=app op=transfer msg=\"event publish failed\" transaction_id=%s err=%v", tx.ID, err)
	}
}
