package views

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEvent is published after a ledger transaction commits. Best effort:
// publishing never affects the outcome of the operation it describes.
type LedgerEvent struct {
	TransactionID uuid.UUID       `json:"transactionId"`
	UserID        uuid.UUID       `json:"userId"`
	Operation     string          `json:"operation"` // transfer, deposit, bill_payment
	FromAccountID *uuid.UUID      `json:"fromAccountId,omitempty"`
	ToAccountID   *uuid.UUID      `json:"toAccountId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"newBalance"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
