package services

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/shopspring/decimal"
)

// Starter products issued at registration. The bill set is also used by the
// lazy seeding fallback for users whose registry is empty.

type billSeed struct {
	biller   string
	amount   string
	category string
}

var billSeeds = []billSeed{
	{"Electric Bill", "14500.00", "utilities"},
	{"Internet Bill", "9999.00", "utilities"},
	{"Phone Bill", "7500.00", "utilities"},
	{"Insurance", "24000.00", "insurance"},
	{"Rent/Mortgage", "140000.00", "housing"},
}

func seedBills(userID uuid.UUID, now time.Time) []models.Bill {
	bills := make([]models.Bill, 0, len(billSeeds))
	for _, seed := range billSeeds {
		bills = append(bills, models.Bill{
			ID:         uuid.New(),
			UserID:     userID,
			BillerName: seed.biller,
			Amount:     decimal.RequireFromString(seed.amount),
			DueDate:    now.AddDate(0, 0, 5+rand.Intn(21)),
			Category:   seed.category,
			Status:     pkg.BillStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return bills
}

// newAccountNumber builds a 16-digit account number with the product prefix
// (4829 checking, 5012 savings).
func newAccountNumber(prefix string) string {
	return fmt.Sprintf("%s%08d%04d", prefix, 10000000+rand.Intn(90000000), 1000+rand.Intn(9000))
}

// maskedCardNumber builds the displayed form of a card number; only the last
// four digits are real.
func maskedCardNumber(prefix string) string {
	return fmt.Sprintf("%s •••• •••• %04d", prefix, 1000+rand.Intn(9000))
}
