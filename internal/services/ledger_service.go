package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nuwanperera/corebank/configs"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/internal/repositories"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
	"github.com/nuwanperera/corebank/pkg/kafka"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService is the only writer of account balances and transaction rows.
// Every operation runs as one database transaction: the balance write, the
// transaction append and, for bill payments, the bill status flip commit
// together or not at all. Row locks (SELECT ... FOR UPDATE) serialize
// concurrent operations on the same account; lock waits are bounded by
// LockTimeout and surface as Busy.
type LedgerService interface {
	Transfer(ctx context.Context, traceID string, userID uuid.UUID, req views.TransferRequest) (decimal.Decimal, error)
	Deposit(ctx context.Context, traceID string, userID uuid.UUID, req views.DepositRequest) (decimal.Decimal, error)
	PayBill(ctx context.Context, traceID string, userID uuid.UUID, req views.PayBillRequest) (decimal.Decimal, error)
}

type LedgerServiceImpl struct {
	logger      *zap.Logger
	cnf         *configs.Config
	db          database.TxRunner
	accountRepo repositories.AccountRepository
	txnRepo     repositories.TransactionRepository
	billRepo    repositories.BillRepository
	eventsTopic kafka.LedgerEventPublisher
}

func NewLedgerService(logger *zap.Logger, cnf *configs.Config, db database.TxRunner,
	accountRepo repositories.AccountRepository, txnRepo repositories.TransactionRepository,
	billRepo repositories.BillRepository, publisher kafka.LedgerEventPublisher) LedgerService {
	return &LedgerServiceImpl{
		logger:      logger,
		cnf:         cnf,
		db:          db,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		billRepo:    billRepo,
		eventsTopic: publisher,
	}
}

func (s *LedgerServiceImpl) Transfer(ctx context.Context, traceID string, userID uuid.UUID, req views.TransferRequest) (decimal.Decimal, error) {
	if !req.Amount.IsPositive() {
		return decimal.Zero, pkg.NewAppError(pkg.ErrInvalidAmountCode, "amount must be positive", nil)
	}
	fromID, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		return decimal.Zero, pkg.NewAppError(pkg.ErrRecordNotFoundCode, "account not found", err)
	}
	var toID *uuid.UUID
	if s.cnf.TransferCreditDestination && req.ToAccountID != "" {
		parsed, err := uuid.Parse(req.ToAccountID)
		if err != nil {
			return decimal.Zero, pkg.NewAppError(pkg.ErrRecordNotFoundCode, "destination account not found", err)
		}
		if parsed == fromID {
			return decimal.Zero, pkg.NewAppError(pkg.ErrInvalidInputCode, "source and destination accounts must differ", nil)
		}
		toID = &parsed
	}

	var newBalance decimal.Decimal
	var events []views.LedgerEvent
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.applyLockTimeout(ctx, tx); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}

		// Lock rows in a deterministic order so two opposite transfers
		// between the same pair of accounts cannot deadlock.
		lockIDs := []uuid.UUID{fromID}
		if toID != nil {
			lockIDs = append(lockIDs, *toID)
			if lockIDs[1].String() < lockIDs[0].String() {
				lockIDs[0], lockIDs[1] = lockIDs[1], lockIDs[0]
			}
		}

		locked := make(map[uuid.UUID]models.Account, len(lockIDs))
		for _, id := range lockIDs {
			account, err := s.accountRepo.FindByIDForUpdate(ctx, tx, id)
			if err != nil {
				return pkg.HandleSQLError(traceID, s.logger, err)
			}
			locked[id] = account
		}

		from := locked[fromID]
		if from.UserID != userID {
			return pkg.NewAppError(pkg.ErrRecordNotFoundCode, "account not found", nil)
		}
		if err := s.checkFrozen(from); err != nil {
			return err
		}
		if toID != nil {
			if err := s.checkFrozen(locked[*toID]); err != nil {
				return err
			}
		}
		if from.Balance.LessThan(req.Amount) {
			return pkg.NewAppError(pkg.ErrInsufficientFundsCode, "insufficient balance", nil)
		}

		newBalance = from.Balance.Sub(req.Amount)
		if err := s.accountRepo.UpdateBalance(ctx, tx, from.ID, newBalance); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}

		debit := models.Transaction{
			ID:            uuid.New(),
			UserID:        userID,
			FromAccountID: &from.ID,
			Amount:        req.Amount.Neg(),
			Description:   req.Description,
			Status:        pkg.TransactionStatusCompleted,
			CreatedAt:     time.Now().UTC(),
		}
		if _, err := s.txnRepo.Create(ctx, tx, debit); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		events = append(events, ledgerEvent(debit, "transfer", newBalance))

		if toID != nil {
			dest := locked[*toID]
			destBalance := dest.Balance.Add(req.Amount)
			if err := s.accountRepo.UpdateBalance(ctx, tx, dest.ID, destBalance); err != nil {
				return pkg.HandleSQLError(traceID, s.logger, err)
			}
			credit := models.Transaction{
				ID:          uuid.New(),
				UserID:      userID,
				ToAccountID: &dest.ID,
				Amount:      req.Amount,
				Description: req.Description,
				Status:      pkg.TransactionStatusCompleted,
				CreatedAt:   time.Now().UTC(),
			}
			if _, err := s.txnRepo.Create(ctx, tx, credit); err != nil {
				return pkg.HandleSQLError(traceID, s.logger, err)
			}
			events = append(events, ledgerEvent(credit, "transfer", destBalance))
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.publishEvents(events)
	s.logger.Info("transfer completed",
		zap.String(pkg.TraceId, traceID),
		zap.String("from_account_id", fromID.String()),
		zap.String("amount", req.Amount.String()))
	return newBalance, nil
}

func (s *LedgerServiceImpl) Deposit(ctx context.Context, traceID string, userID uuid.UUID, req views.DepositRequest) (decimal.Decimal, error) {
	if !req.Amount.IsPositive() {
		return decimal.Zero, pkg.NewAppError(pkg.ErrInvalidAmountCode, "amount must be positive", nil)
	}
	accountType := mapAccountType(req.AccountType)

	var newBalance decimal.Decimal
	var events []views.LedgerEvent
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.applyLockTimeout(ctx, tx); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}

		account, err := s.accountRepo.FindByUserAndTypeForUpdate(ctx, tx, userID, accountType)
		if err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		if err := s.checkFrozen(account); err != nil {
			return err
		}

		newBalance = account.Balance.Add(req.Amount)
		if err := s.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}

		credit := models.Transaction{
			ID:            uuid.New(),
			UserID:        userID,
			FromAccountID: &account.ID,
			ToAccountID:   &account.ID,
			Amount:        req.Amount,
			Description:   fmt.Sprintf("Deposit %s", req.Amount.StringFixed(2)),
			Status:        pkg.TransactionStatusCompleted,
			CreatedAt:     time.Now().UTC(),
		}
		if _, err := s.txnRepo.Create(ctx, tx, credit); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		events = append(events, ledgerEvent(credit, "deposit", newBalance))
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.publishEvents(events)
	s.logger.Info("deposit completed",
		zap.String(pkg.TraceId, traceID),
		zap.String("account_type", string(accountType)),
		zap.String("amount", req.Amount.String()))
	return newBalance, nil
}

func (s *LedgerServiceImpl) PayBill(ctx context.Context, traceID string, userID uuid.UUID, req views.PayBillRequest) (decimal.Decimal, error) {
	if !req.Amount.IsPositive() {
		return decimal.Zero, pkg.NewAppError(pkg.ErrInvalidAmountCode, "amount must be positive", nil)
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return decimal.Zero, pkg.NewAppError(pkg.ErrRecordNotFoundCode, "account not found", err)
	}
	billID, err := uuid.Parse(req.BillID)
	if err != nil {
		return decimal.Zero, pkg.NewAppError(pkg.ErrRecordNotFoundCode, "bill not found", err)
	}

	var newBalance decimal.Decimal
	var events []views.LedgerEvent
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.applyLockTimeout(ctx, tx); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}

		account, err := s.accountRepo.FindByIDForUpdate(ctx, tx, accountID)
		if err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		if account.UserID != userID {
			return pkg.NewAppError(pkg.ErrRecordNotFoundCode, "account not found", nil)
		}
		bill, err := s.billRepo.FindByIDForUpdate(ctx, tx, billID)
		if err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		if bill.UserID != userID {
			return pkg.NewAppError(pkg.ErrRecordNotFoundCode, "bill not found", nil)
		}
		if bill.Status == pkg.BillStatusPaid {
			return pkg.NewAppError(pkg.ErrBillAlreadyPaidCode, "bill is already paid", nil)
		}
		if err := s.checkFrozen(account); err != nil {
			return err
		}
		if account.Balance.LessThan(req.Amount) {
			return pkg.NewAppError(pkg.ErrInsufficientFundsCode, "insufficient balance", nil)
		}

		newBalance = account.Balance.Sub(req.Amount)
		if err := s.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		if err := s.billRepo.MarkPaid(ctx, tx, bill.ID); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}

		debit := models.Transaction{
			ID:            uuid.New(),
			UserID:        userID,
			FromAccountID: &account.ID,
			Amount:        req.Amount.Neg(),
			Description:   "Bill payment",
			Status:        pkg.TransactionStatusCompleted,
			CreatedAt:     time.Now().UTC(),
		}
		if _, err := s.txnRepo.Create(ctx, tx, debit); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		events = append(events, ledgerEvent(debit, "bill_payment", newBalance))
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.publishEvents(events)
	s.logger.Info("bill paid",
		zap.String(pkg.TraceId, traceID),
		zap.String("bill_id", billID.String()),
		zap.String("amount", req.Amount.String()))
	return newBalance, nil
}

// applyLockTimeout bounds row-lock waits for the current transaction.
// Exceeding it raises 55P03, which HandleSQLError maps to Busy.
func (s *LedgerServiceImpl) applyLockTimeout(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.cnf.LockTimeout.Milliseconds()))
	return err
}

func (s *LedgerServiceImpl) checkFrozen(account models.Account) error {
	if s.cnf.EnforceFrozenAccounts && account.Status == pkg.AccountStatusFrozen {
		return pkg.NewAppError(pkg.ErrAccountFrozenCode, "account is frozen", nil)
	}
	return nil
}

func (s *LedgerServiceImpl) publishEvents(events []views.LedgerEvent) {
	for _, event := range events {
		if err := s.eventsTopic.Publish(event); err != nil {
			s.logger.Warn("failed to publish ledger event",
				zap.String("transaction_id", event.TransactionID.String()), zap.Error(err))
		}
	}
}

func ledgerEvent(txn models.Transaction, operation string, newBalance decimal.Decimal) views.LedgerEvent {
	return views.LedgerEvent{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Operation:     operation,
		FromAccountID: txn.FromAccountID,
		ToAccountID:   txn.ToAccountID,
		Amount:        txn.Amount,
		NewBalance:    newBalance,
		OccurredAt:    txn.CreatedAt,
	}
}

// mapAccountType resolves the requested deposit target; unknown types fall
// back to checking, matching the original account-type mapping.
func mapAccountType(raw string) pkg.AccountType {
	switch pkg.AccountType(raw) {
	case pkg.AccountTypeChecking:
		return pkg.AccountTypeChecking
	case pkg.AccountTypeSavings:
		return pkg.AccountTypeSavings
	default:
		return pkg.AccountTypeChecking
	}
}
