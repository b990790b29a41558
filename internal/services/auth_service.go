package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nuwanperera/corebank/configs"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/internal/repositories"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
	"github.com/nuwanperera/corebank/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns registration, sessions and the user profile. Registration
// provisions the full starter product set (checking and savings accounts,
// a debit and a credit card, the starter bill set) in one transaction with
// the user row.
type AuthService interface {
	Register(ctx context.Context, traceID string, req views.RegisterRequest) (views.AuthResponse, error)
	Login(ctx context.Context, traceID string, req views.LoginRequest) (views.AuthResponse, error)
	Logout(ctx context.Context, traceID string, token string) error
	ResolveIdentity(ctx context.Context, token string) (uuid.UUID, error)
	GetProfile(ctx context.Context, traceID string, userID uuid.UUID) (views.UserInfo, error)
	UpdateProfile(ctx context.Context, traceID string, userID uuid.UUID, req views.UpdateProfileRequest) (views.UserInfo, error)
	ChangePassword(ctx context.Context, traceID string, userID uuid.UUID, req views.ChangePasswordRequest) error
}

type AuthServiceImpl struct {
	logger      *zap.Logger
	cnf         *configs.Config
	db          *database.DB
	runner      database.TxRunner
	userRepo    repositories.UserRepository
	accountRepo repositories.AccountRepository
	cardRepo    repositories.CardRepository
	billRepo    repositories.BillRepository
	sessions    SessionStore
	aesKey      []byte
}

func NewAuthService(logger *zap.Logger, cnf *configs.Config, db *database.DB, runner database.TxRunner,
	userRepo repositories.UserRepository, accountRepo repositories.AccountRepository,
	cardRepo repositories.CardRepository, billRepo repositories.BillRepository,
	sessions SessionStore, aesKey []byte) AuthService {
	return &AuthServiceImpl{
		logger:      logger,
		cnf:         cnf,
		db:          db,
		runner:      runner,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		cardRepo:    cardRepo,
		billRepo:    billRepo,
		sessions:    sessions,
		aesKey:      aesKey,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, traceID string, req views.RegisterRequest) (views.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.FindByEmail(ctx, s.db, email); err == nil {
		return views.AuthResponse{}, pkg.NewAppError(pkg.ErrSQLDuplicateCode, "email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return views.AuthResponse{}, pkg.HandleSQLError(traceID, s.logger, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return views.AuthResponse{}, pkg.NewAppError(pkg.ErrServerCode, "failed to hash password", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.userRepo.Create(ctx, tx, user); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		checking, savings, err := s.provisionAccounts(ctx, tx, traceID, user, now)
		if err != nil {
			return err
		}
		if err := s.provisionCards(ctx, tx, traceID, user, checking, savings, now); err != nil {
			return err
		}
		if err := s.billRepo.CreateBatch(ctx, tx, seedBills(user.ID, now)); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
		return nil
	})
	if err != nil {
		return views.AuthResponse{}, err
	}

	s.logger.Info("user registered", zap.String(pkg.TraceId, traceID), zap.String("user_id", user.ID.String()))
	return s.startSession(ctx, user)
}

func (s *AuthServiceImpl) Login(ctx context.Context, traceID string, req views.LoginRequest) (views.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return views.AuthResponse{}, pkg.NewAppError(pkg.ErrUnauthenticatedCode, "invalid email or password", err)
	}
	if err != nil {
		return views.AuthResponse{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return views.AuthResponse{}, pkg.NewAppError(pkg.ErrUnauthenticatedCode, "invalid email or password", err)
	}

	s.logger.Info("user logged in", zap.String(pkg.TraceId, traceID), zap.String("user_id", user.ID.String()))
	return s.startSession(ctx, user)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, traceID string, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return pkg.NewAppError(pkg.ErrServerCode, "failed to end session", err)
	}
	s.logger.Info("user logged out", zap.String(pkg.TraceId, traceID))
	return nil
}

// ResolveIdentity implements the auth middleware's token lookup.
func (s *AuthServiceImpl) ResolveIdentity(ctx context.Context, token string) (uuid.UUID, error) {
	return s.sessions.Get(ctx, token)
}

func (s *AuthServiceImpl) GetProfile(ctx context.Context, traceID string, userID uuid.UUID) (views.UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return views.UserInfo{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return userInfo(user), nil
}

func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, traceID string, userID uuid.UUID, req views.UpdateProfileRequest) (views.UserInfo, error) {
	if err := s.userRepo.UpdateProfile(ctx, s.db, userID, req.Name, req.Phone); err != nil {
		return views.UserInfo{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return views.UserInfo{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return userInfo(user), nil
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, traceID string, userID uuid.UUID, req views.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return pkg.NewAppError(pkg.ErrInvalidInputCode, "passwords do not match", nil)
	}
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return pkg.NewAppError(pkg.ErrUnauthenticatedCode, "current password is incorrect", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return pkg.NewAppError(pkg.ErrServerCode, "failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, s.db, userID, string(hash)); err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	s.logger.Info("password changed", zap.String(pkg.TraceId, traceID), zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthServiceImpl) startSession(ctx context.Context, user models.User) (views.AuthResponse, error) {
	token := uuid.New().String()
	if err := s.sessions.Create(ctx, token, user.ID, s.cnf.SessionTTL); err != nil {
		return views.AuthResponse{}, pkg.NewAppError(pkg.ErrServerCode, "failed to create session", err)
	}
	return views.AuthResponse{Success: true, Token: token, User: userInfo(user)}, nil
}

func (s *AuthServiceImpl) provisionAccounts(ctx context.Context, tx pgx.Tx, traceID string, user models.User, now time.Time) (models.Account, models.Account, error) {
	checking := models.Account{
		ID:         uuid.New(),
		UserID:     user.ID,
		Name:       "Checking Account",
		Type:       pkg.AccountTypeChecking,
		Balance:    decimal.Zero,
		CardNumber: newAccountNumber("4829"),
		APY:        decimal.Zero,
		Fees:       decimal.Zero,
		Status:     pkg.AccountStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	savings := models.Account{
		ID:         uuid.New(),
		UserID:     user.ID,
		Name:       "Savings Account",
		Type:       pkg.AccountTypeSavings,
		Balance:    decimal.Zero,
		CardNumber: newAccountNumber("5012"),
		APY:        decimal.NewFromFloat(2.5),
		Fees:       decimal.Zero,
		Status:     pkg.AccountStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.accountRepo.Create(ctx, tx, checking); err != nil {
		return models.Account{}, models.Account{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	if _, err := s.accountRepo.Create(ctx, tx, savings); err != nil {
		return models.Account{}, models.Account{}, pkg.HandleSQLError(traceID, s.logger, err)
	}
	return checking, savings, nil
}

func (s *AuthServiceImpl) provisionCards(ctx context.Context, tx pgx.Tx, traceID string, user models.User, checking, savings models.Account, now time.Time) error {
	holder := strings.ToUpper(user.Name)
	cards := []models.Card{
		{
			ID:        uuid.New(),
			UserID:    user.ID,
			AccountID: checking.ID,
			Type:      pkg.CardTypeDebit,
			Number:    maskedCardNumber("6789"),
			Holder:    holder,
			Expiry:    "12/26",
			Status:    pkg.CardStatusActive,
			CardLimit: decimal.NewFromInt(5000),
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New(),
			UserID:    user.ID,
			AccountID: savings.ID,
			Type:      pkg.CardTypeCredit,
			Number:    maskedCardNumber("8765"),
			Holder:    holder,
			Expiry:    "03/27",
			Status:    pkg.CardStatusActive,
			CardLimit: decimal.NewFromInt(10000),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	for _, card := range cards {
		encrypted, err := utils.EncryptAES([]byte(card.Number), s.aesKey)
		if err != nil {
			return pkg.NewAppError(pkg.ErrServerCode, "failed to encrypt card number", err)
		}
		card.Number = encrypted
		if _, err := s.cardRepo.Create(ctx, tx, card); err != nil {
			return pkg.HandleSQLError(traceID, s.logger, err)
		}
	}
	return nil
}

func userInfo(user models.User) views.UserInfo {
	return views.UserInfo{Name: user.Name, Email: user.Email, Phone: user.Phone}
}
