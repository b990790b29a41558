package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/internal/repositories"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
	"go.uber.org/zap"
)

const defaultTransactionLimit = 50

type AccountService interface {
	List(ctx context.Context, traceID string, userID uuid.UUID) ([]views.AccountView, error)
	Get(ctx context.Context, traceID string, userID uuid.UUID, accountID string) (views.AccountView, error)
	Freeze(ctx context.Context, traceID string, userID uuid.UUID, req views.FreezeAccountRequest) (views.AccountView, error)
	UpdateSettings(ctx context.Context, traceID string, userID uuid.UUID, req views.AccountSettingsRequest) (views.AccountView, error)
	ListTransactions(ctx context.Context, traceID string, userID uuid.UUID, limit int) ([]views.TransactionView, error)
}

type AccountServiceImpl struct {
	logger      *zap.Logger
	db          *database.DB
	accountRepo repositories.AccountRepository
	txnRepo     repositories.TransactionRepository
}

func NewAccountService(logger *zap.Logger, db *database.DB,
	accountRepo repositories.AccountRepository, txnRepo repositories.TransactionRepository) AccountService {
	return &AccountServiceImpl{logger: logger, db: db, accountRepo: accountRepo, txnRepo: txnRepo}
}

func (s *AccountServiceImpl) List(ctx context.Context, traceID string, userID uuid.UUID) ([]views.AccountView, error) {
	accounts, err := s.accountRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, pkg.HandleSQLError(traceID, s.logger, err)
	}
	out := make([]views.AccountView, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, accountView(account))
	}
	return out, nil
}

func (s *AccountServiceImpl) Get(ctx context.Context, traceID string, userID uuid.UUID, accountID string) (views.AccountView, error) {
	account, err := s.ownedAccount(ctx, traceID, userID, accountID)
	if err != nil {
		return views.AccountView{}, err
	}
	return accountView(account), nil
}

func (s *AccountServiceImpl) Freeze(ctx context.Context, traceID string, userID uuid.UUID, req views.FreezeAccountRequest) (views.AccountView, error) {
	account, err := s.ownedAccount(ctx, traceID, userID, req.ID)
	if err != nil {
		return views.AccountView{}, err
	}

	status := pkg.AccountStatusActive
	if req.Action == "freeze" {
		status = pkg.AccountStatusFrozen
	}
	if err := s.accountRepo.UpdateStatus(ctx, s.db, account.ID, status); err != nil {
		return views.AccountView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}

	s.logger.Info("account status changed",
		zap.String(pkg.TraceId, traceID),
		zap.String("account_id", account.ID.String()),
		zap.String("status", string(status)))
	account.Status = status
	return accountView(account), nil
}

func (s *AccountServiceImpl) UpdateSettings(ctx context.Context, traceID string, userID uuid.UUID, req views.AccountSettingsRequest) (views.AccountView, error) {
	account, err := s.ownedAccount(ctx, traceID, userID, req.ID)
	if err != nil {
		return views.AccountView{}, err
	}
	if err := s.accountRepo.UpdateName(ctx, s.db, account.ID, req.Name); err != nil {
		return views.AccountView{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	account.Name = req.Name
	return accountView(account), nil
}

func (s *AccountServiceImpl) ListTransactions(ctx context.Context, traceID string, userID uuid.UUID, limit int) ([]views.TransactionView, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	txns, err := s.txnRepo.ListByUser(ctx, s.db, userID, limit)
	if err != nil {
		return nil, pkg.HandleSQLError(traceID, s.logger, err)
	}
	out := make([]views.TransactionView, 0, len(txns))
	for _, txn := range txns {
		view := views.TransactionView{
			ID:          txn.ID.String(),
			Amount:      txn.Amount,
			Description: txn.Description,
			Status:      string(txn.Status),
			CreatedAt:   txn.CreatedAt,
		}
		if txn.FromAccountID != nil {
			view.FromAccountID = txn.FromAccountID.String()
		}
		if txn.ToAccountID != nil {
			view.ToAccountID = txn.ToAccountID.String()
		}
		out = append(out, view)
	}
	return out, nil
}

// ownedAccount resolves an account id and verifies ownership. Accounts owned
// by other users are reported as not found rather than forbidden.
func (s *AccountServiceImpl) ownedAccount(ctx context.Context, traceID string, userID uuid.UUID, rawID string) (models.Account, error) {
	accountID, err := uuid.Parse(rawID)
	if err != nil {
		return models.Account{}, pkg.NewAppError(pkg.ErrRecordNotFoundCode, "account not found", err)
	}
	account, err := s.accountRepo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return models.Account{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	if account.UserID != userID {
		return models.Account{}, pkg.NewAppError(pkg.ErrRecordNotFoundCode, "account not found", nil)
	}
	return account, nil
}

func accountView(account models.Account) views.AccountView {
	return views.AccountView{
		ID:         account.ID.String(),
		Name:       account.Name,
		Type:       string(account.Type),
		Balance:    account.Balance,
		CardNumber: account.CardNumber,
		APY:        account.APY,
		Fees:       account.Fees,
		Status:     string(account.Status),
	}
}
