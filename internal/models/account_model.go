package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/shopspring/decimal"
)

// Account maps to table `accounts`. Balance is only ever written inside a
// ledger transaction; the invariant is balance == sum of the signed amounts
// of every committed transaction referencing the account.
type Account struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Type       pkg.AccountType
	Balance    decimal.Decimal
	CardNumber string
	APY        decimal.Decimal
	Fees       decimal.Decimal
	Status     pkg.AccountStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
