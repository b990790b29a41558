package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/pkg/database"
)

type LoanRepository interface {
	Create(ctx context.Context, tx pgx.Tx, loan models.Loan) (pgconn.CommandTag, error)
	ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Loan, error)
}

type LoanRepositoryImpl struct {
}

func NewLoanRepository() LoanRepository {
	return &LoanRepositoryImpl{}
}

func (l LoanRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, loan models.Loan) (pgconn.CommandTag, error) {
	return tx.Exec(ctx, `INSERT INTO loans (id, user_id, loan_type, principal_amount, remaining_amount, interest_rate, monthly_payment, start_date, end_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		loan.ID, loan.UserID, loan.LoanType, loan.PrincipalAmount, loan.RemainingAmount,
		loan.InterestRate, loan.MonthlyPayment, loan.StartDate, loan.EndDate, loan.Status, loan.CreatedAt)
}

func (l LoanRepositoryImpl) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Loan, error) {
	rows, err := db.Query(ctx, `SELECT id, user_id, loan_type, principal_amount, remaining_amount, interest_rate, monthly_payment, start_date, end_date, status, created_at
		FROM loans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		var loan models.Loan
		if err = rows.Scan(&loan.ID, &loan.UserID, &loan.LoanType, &loan.PrincipalAmount, &loan.RemainingAmount,
			&loan.InterestRate, &loan.MonthlyPayment, &loan.StartDate, &loan.EndDate, &loan.Status, &loan.CreatedAt); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}
