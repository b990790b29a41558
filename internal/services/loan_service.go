package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/internal/repositories"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultTenureMonths = 60

// Annual interest rates per loan type, in percent.
var loanRates = map[string]float64{
	"home":      8.5,
	"personal":  12.0,
	"auto":      7.5,
	"education": 6.5,
}

const defaultLoanRate = 10.0

type LoanService interface {
	Apply(ctx context.Context, traceID string, userID uuid.UUID, req views.ApplyLoanRequest) (views.ApplyLoanResponse, error)
	List(ctx context.Context, traceID string, userID uuid.UUID) ([]views.LoanView, error)
}

type LoanServiceImpl struct {
	logger   *zap.Logger
	db       *database.DB
	runner   database.TxRunner
	loanRepo repositories.LoanRepository
}

func NewLoanService(logger *zap.Logger, db *database.DB, runner database.TxRunner, loanRepo repositories.LoanRepository) LoanService {
	return &LoanServiceImpl{logger: logger, db: db, runner: runner, loanRepo: loanRepo}
}

func (s *LoanServiceImpl) Apply(ctx context.Context, traceID string, userID uuid.UUID, req views.ApplyLoanRequest) (views.ApplyLoanResponse, error) {
	if !req.PrincipalAmount.IsPositive() {
		return views.ApplyLoanResponse{}, pkg.NewAppError(pkg.ErrInvalidAmountCode, "principal must be positive", nil)
	}
	tenure := req.TenureMonths
	if tenure <= 0 {
		tenure = defaultTenureMonths
	}

	rate, ok := loanRates[req.LoanType]
	if !ok {
		rate = defaultLoanRate
	}

	now := time.Now().UTC()
	loan := models.Loan{
		ID:              uuid.New(),
		UserID:          userID,
		LoanType:        req.LoanType,
		PrincipalAmount: req.PrincipalAmount,
		RemainingAmount: req.PrincipalAmount.Mul(decimal.NewFromFloat(0.8)).Round(2),
		InterestRate:    decimal.NewFromFloat(rate),
		MonthlyPayment:  monthlyPayment(req.PrincipalAmount, rate, tenure),
		StartDate:       now,
		EndDate:         now.AddDate(0, 0, tenure*30),
		Status:          pkg.LoanStatusActive,
		CreatedAt:       now,
	}

	err := s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.loanRepo.Create(ctx, tx, loan); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		return nil
	})
	if err != nil {
		return views.ApplyLoanResponse{}, err
	}

	s.logger.Info("loan originated",
		zap.String(pkg.TraceId, traceID),
		zap.String("loan_id", loan.ID.String()),
		zap.String("loan_type", loan.LoanType),
		zap.String("principal", loan.PrincipalAmount.String()))
	return views.ApplyLoanResponse{Success: true, Message: "Loan application approved", LoanID: loan.ID.String()}, nil
}

func (s *LoanServiceImpl) List(ctx context.Context, traceID string, userID uuid.UUID) ([]views.LoanView, error) {
	loans, err := s.loanRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, pkg.HandleSQLError(traceID, s.logger, err)
	}
	out := make([]views.LoanView, 0, len(loans))
	for _, loan := range loans {
		out = append(out, views.LoanView{
			ID:              loan.ID.String(),
			LoanType:        loan.LoanType,
			PrincipalAmount: loan.PrincipalAmount,
			RemainingAmount: loan.RemainingAmount,
			InterestRate:    loan.InterestRate,
			MonthlyPayment:  loan.MonthlyPayment,
			StartDate:       loan.StartDate,
			EndDate:         loan.EndDate,
			Status:          string(loan.Status),
		})
	}
	return out, nil
}

// monthlyPayment amortizes principal over tenure months at the given annual
// rate: P * r * (1+r)^n / ((1+r)^n - 1), r = annualRate/12/100.
func monthlyPayment(principal decimal.Decimal, annualRate float64, tenureMonths int) decimal.Decimal {
	p, _ := principal.Float64()
	r := annualRate / 12 / 100
	if r == 0 {
		return principal.Div(decimal.NewFromInt(int64(tenureMonths))).Round(2)
	}
	factor := math.Pow(1+r, float64(tenureMonths))
	return decimal.NewFromFloat(p * r * factor / (factor - 1)).Round(2)
}
