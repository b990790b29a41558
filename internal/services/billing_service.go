package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nuwanperera/corebank/internal/repositories"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
	"go.uber.org/zap"
)

type BillingService interface {
	ListBills(ctx context.Context, traceID string, userID uuid.UUID) ([]views.BillView, error)
}

type BillingServiceImpl struct {
	logger   *zap.Logger
	db       *database.DB
	runner   database.TxRunner
	billRepo repositories.BillRepository
}

func NewBillingService(logger *zap.Logger, db *database.DB, runner database.TxRunner, billRepo repositories.BillRepository) BillingService {
	return &BillingServiceImpl{logger: logger, db: db, runner: runner, billRepo: billRepo}
}

// ListBills returns the user's bills, seeding the starter set first if the
// registry is empty. A per-user advisory lock serializes the count-then-insert:
// at READ COMMITTED two concurrent first reads would otherwise both count zero
// rows and both seed.
func (s *BillingServiceImpl) ListBills(ctx context.Context, traceID string, userID uuid.UUID) ([]views.BillView, error) {
	err := s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", userID.String()); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		count, err := s.billRepo.CountByUser(ctx, tx, userID)
		if err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		if count > 0 {
			return nil
		}
		s.logger.Info("seeding starter bills", zap.String(pkg.TraceId, traceID), zap.String("user_id", userID.String()))
		if err := s.billRepo.CreateBatch(ctx, tx, seedBills(userID, time.Now().UTC())); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bills, err := s.billRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, pkg.HandleSQLError(traceID, s.logger, err)
	}
	out := make([]views.BillView, 0, len(bills))
	for _, bill := range bills {
		out = append(out, views.BillView{
			ID:         bill.ID.String(),
			BillerName: bill.BillerName,
			Amount:     bill.Amount,
			DueDate:    bill.DueDate,
			Category:   bill.Category,
			Status:     string(bill.Status),
		})
	}
	return out, nil
}
