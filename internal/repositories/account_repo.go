package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
	"github.com/shopspring/decimal"
)

// AccountRepository is the account store contract. Balance writes are only
// reachable through the ledger service's transaction; no other caller holds a
// pgx.Tx for UpdateBalance.
type AccountRepository interface {
	// Create inserts a new account row.
	Create(ctx context.Context, tx pgx.Tx, account models.Account) (pgconn.CommandTag, error)
	// FindByID reads an account without locking it.
	FindByID(ctx context.Context, db *database.DB, accountID uuid.UUID) (models.Account, error)
	// FindByIDForUpdate reads an account under a row lock (SELECT ... FOR UPDATE).
	// The lock is held until the surrounding transaction commits or rolls back.
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (models.Account, error)
	// FindByUserAndTypeForUpdate resolves the unique (user, type) account under a row lock.
	FindByUserAndTypeForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, accountType pkg.AccountType) (models.Account, error)
	// ListByUser returns the user's accounts ordered by creation time.
	ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Account, error)
	// UpdateBalance persists a new balance for a locked account row.
	UpdateBalance(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, balance decimal.Decimal) error
	UpdateStatus(ctx context.Context, db *database.DB, accountID uuid.UUID, status pkg.AccountStatus) error
	UpdateName(ctx context.Context, db *database.DB, accountID uuid.UUID, name string) error
}

type AccountRepositoryImpl struct {
}

func NewAccountRepository() AccountRepository {
	return &AccountRepositoryImpl{}
}

const accountColumns = `id, user_id, name, type, COALESCE(balance, 0), card_number, apy, fees, status, created_at, updated_at`

func (a AccountRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, account models.Account) (pgconn.CommandTag, error) {
	return tx.Exec(ctx, `INSERT INTO accounts (id, user_id, name, type, balance, card_number, apy, fees, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		account.ID, account.UserID, account.Name, account.Type, account.Balance,
		account.CardNumber, account.APY, account.Fees, account.Status, account.CreatedAt, account.UpdatedAt)
}

func (a AccountRepositoryImpl) FindByID(ctx context.Context, db *database.DB, accountID uuid.UUID) (models.Account, error) {
	row := db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	return scanAccount(row)
}

func (a AccountRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (models.Account, error) {
	row := tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, accountID)
	return scanAccount(row)
}

func (a AccountRepositoryImpl) FindByUserAndTypeForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, accountType pkg.AccountType) (models.Account, error) {
	row := tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND type = $2 FOR UPDATE`,
		userID, accountType)
	return scanAccount(row)
}

func (a AccountRepositoryImpl) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Account, error) {
	rows, err := db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (a AccountRepositoryImpl) UpdateBalance(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, balance decimal.Decimal) error {
	_, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1, updated_at = now() WHERE id = $2`, balance, accountID)
	return err
}

func (a AccountRepositoryImpl) UpdateStatus(ctx context.Context, db *database.DB, accountID uuid.UUID, status pkg.AccountStatus) error {
	tag, err := db.Exec(ctx, `UPDATE accounts SET status = $1, updated_at = now() WHERE id = $2`, status, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (a AccountRepositoryImpl) UpdateName(ctx context.Context, db *database.DB, accountID uuid.UUID, name string) error {
	tag, err := db.Exec(ctx, `UPDATE accounts SET name = $1, updated_at = now() WHERE id = $2`, name, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account
	err := row.Scan(&account.ID, &account.UserID, &account.Name, &account.Type, &account.Balance,
		&account.CardNumber, &account.APY, &account.Fees, &account.Status, &account.CreatedAt, &account.UpdatedAt)
	return account, err
}
