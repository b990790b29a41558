package views

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillView struct {
	ID         string          `json:"id"`
	BillerName string          `json:"biller_name"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
	Category   string          `json:"category"`
	Status     string          `json:"status"`
}

type ApplyLoanRequest struct {
	LoanType        string          `json:"loan_type" binding:"required"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	TenureMonths    int             `json:"tenure_months"`
}

type ApplyLoanResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LoanID  string `json:"loan_id"`
}

type LoanView struct {
	ID              string          `json:"id"`
	LoanType        string          `json:"loan_type"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	MonthlyPayment  decimal.Decimal `json:"monthly_payment"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Status          string          `json:"status"`
}

type CardView struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Number string          `json:"number"`
	Holder string          `json:"holder"`
	Expiry string          `json:"expiry"`
	Status string          `json:"status"`
	Limit  decimal.Decimal `json:"limit"`
}

type UpdateCardRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required,oneof=active blocked"`
}
