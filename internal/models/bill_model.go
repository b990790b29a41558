package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/shopspring/decimal"
)

// Bill maps to table `bills`. Status transitions pending -> paid exactly
// once, inside the same transaction as the paying ledger entry.
type Bill struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	BillerName string
	Amount     decimal.Decimal
	DueDate    time.Time
	Category   string
	Status     pkg.BillStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
