package views

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Balance    decimal.Decimal `json:"balance"`
	CardNumber string          `json:"cardNumber"`
	APY        decimal.Decimal `json:"apy"`
	Fees       decimal.Decimal `json:"fees"`
	Status     string          `json:"status"`
}

type FreezeAccountRequest struct {
	ID     string `json:"id" binding:"required"`
	Action string `json:"action" binding:"required,oneof=freeze unfreeze"`
}

type AccountSettingsRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type TransactionView struct {
	ID            string          `json:"id"`
	FromAccountID string          `json:"from_account_id,omitempty"`
	ToAccountID   string          `json:"to_account_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
