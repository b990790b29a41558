package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
)

// BillRepository is the bill registry. The pending -> paid flip happens via
// MarkPaid inside the same transaction as the paying ledger entry.
type BillRepository interface {
	CreateBatch(ctx context.Context, tx pgx.Tx, bills []models.Bill) error
	// FindByIDForUpdate locks the bill row so two racing payments cannot both
	// observe it pending.
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, billID uuid.UUID) (models.Bill, error)
	MarkPaid(ctx context.Context, tx pgx.Tx, billID uuid.UUID) error
	ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Bill, error)
	CountByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error)
}

type BillRepositoryImpl struct {
}

func NewBillRepository() BillRepository {
	return &BillRepositoryImpl{}
}

const billColumns = `id, user_id, biller_name, amount, due_date, category, status, created_at, updated_at`

func (b BillRepositoryImpl) CreateBatch(ctx context.Context, tx pgx.Tx, bills []models.Bill) error {
	for _, bill := range bills {
		_, err := tx.Exec(ctx, `INSERT INTO bills (`+billColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			bill.ID, bill.UserID, bill.BillerName, bill.Amount, bill.DueDate,
			bill.Category, bill.Status, bill.CreatedAt, bill.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (b BillRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, billID uuid.UUID) (models.Bill, error) {
	var bill models.Bill
	err := tx.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1 FOR UPDATE`, billID).
		Scan(&bill.ID, &bill.UserID, &bill.BillerName, &bill.Amount, &bill.DueDate,
			&bill.Category, &bill.Status, &bill.CreatedAt, &bill.UpdatedAt)
	return bill, err
}

func (b BillRepositoryImpl) MarkPaid(ctx context.Context, tx pgx.Tx, billID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE bills SET status = $1, updated_at = now() WHERE id = $2`, pkg.BillStatusPaid, billID)
	return err
}

func (b BillRepositoryImpl) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Bill, error) {
	rows, err := db.Query(ctx, `SELECT `+billColumns+` FROM bills WHERE user_id = $1 ORDER BY due_date`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var bill models.Bill
		if err = rows.Scan(&bill.ID, &bill.UserID, &bill.BillerName, &bill.Amount, &bill.DueDate,
			&bill.Category, &bill.Status, &bill.CreatedAt, &bill.UpdatedAt); err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

func (b BillRepositoryImpl) CountByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM bills WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
