package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/shopspring/decimal"
)

// Transaction maps to table `transactions`. Rows are immutable once created;
// the table is append-only. Amount carries the sign of the mutation: debits
// are negative, credits positive.
type Transaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        decimal.Decimal
	Description   string
	Status        pkg.TransactionStatus
	CreatedAt     time.Time
}
