package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/shopspring/decimal"
)

// Card maps to table `cards`. Number is AES-GCM encrypted at rest and
// decrypted for responses.
type Card struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	AccountID uuid.UUID
	Type      pkg.CardType
	Number    string
	Holder    string
	Expiry    string
	Status    pkg.CardStatus
	CardLimit decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
