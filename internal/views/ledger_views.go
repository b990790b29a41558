package views

import (
	"github.com/shopspring/decimal"
)

// TransferRequest debits from_account_id. to_account_id is optional and only
// honored when destination crediting is enabled in configuration.
type TransferRequest struct {
	FromAccountID string          `json:"from_account_id" binding:"required"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

type TransferResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Balance decimal.Decimal `json:"balance"`
}

// DepositRequest carries the account type under the original wire name
// `account_id`; unknown types fall back to checking.
type DepositRequest struct {
	AccountType string          `json:"account_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

type DepositResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

type PayBillRequest struct {
	BillID    string          `json:"bill_id" binding:"required"`
	AccountID string          `json:"account_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type PayBillResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Balance decimal.Decimal `json:"balance"`
}
