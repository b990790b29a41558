package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/shopspring/decimal"
)

// Loan maps to table `loans`. Created once at origination and never mutated;
// there is no payment-against-loan operation.
type Loan struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	LoanType        string
	PrincipalAmount decimal.Decimal
	RemainingAmount decimal.Decimal
	InterestRate    decimal.Decimal
	MonthlyPayment  decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
	Status          pkg.LoanStatus
	CreatedAt       time.Time
}
