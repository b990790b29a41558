package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/pkg/database"
	"github.com/shopspring/decimal"
)

// TransactionRepository is the append-only transaction log. There is no
// update or delete: a committed row is immutable.
type TransactionRepository interface {
	// Create appends a transaction inside the ledger's atomic unit.
	Create(ctx context.Context, tx pgx.Tx, txn models.Transaction) (pgconn.CommandTag, error)
	// ListByUser returns the most recent transactions, newest first.
	ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID, limit int) ([]models.Transaction, error)
	// SumByAccount sums the signed amounts of every transaction referencing
	// the account. Equals the account balance for a consistent ledger.
	SumByAccount(ctx context.Context, db *database.DB, accountID uuid.UUID) (decimal.Decimal, error)
}

type TransactionRepositoryImpl struct {
}

func NewTransactionRepository() TransactionRepository {
	return &TransactionRepositoryImpl{}
}

func (t TransactionRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, txn models.Transaction) (pgconn.CommandTag, error) {
	return tx.Exec(ctx, `INSERT INTO transactions (id, user_id, from_account_id, to_account_id, amount, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txn.ID, txn.UserID, txn.FromAccountID, txn.ToAccountID, txn.Amount, txn.Description, txn.Status, txn.CreatedAt)
}

func (t TransactionRepositoryImpl) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	rows, err := db.Query(ctx, `SELECT id, user_id, from_account_id, to_account_id, amount, description, status, created_at
		FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		var from, to uuid.NullUUID
		if err = rows.Scan(&txn.ID, &txn.UserID, &from, &to, &txn.Amount, &txn.Description, &txn.Status, &txn.CreatedAt); err != nil {
			return nil, err
		}
		if from.Valid {
			txn.FromAccountID = &from.UUID
		}
		if to.Valid {
			txn.ToAccountID = &to.UUID
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func (t TransactionRepositoryImpl) SumByAccount(ctx context.Context, db *database.DB, accountID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE from_account_id = $1 OR to_account_id = $1`, accountID).Scan(&sum)
	return sum, err
}
