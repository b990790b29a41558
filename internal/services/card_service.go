package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/internal/repositories"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
	"github.com/nuwanperera/corebank/pkg/utils"
	"go.uber.org/zap"
)

type CardService interface {
	List(ctx context.Context, traceID string, userID uuid.UUID) ([]views.CardView, error)
	UpdateStatus(ctx context.Context, traceID string, userID uuid.UUID, req views.UpdateCardRequest) error
}

type CardServiceImpl struct {
	logger   *zap.Logger
	db       *database.DB
	cardRepo repositories.CardRepository
	aesKey   []byte
}

func NewCardService(logger *zap.Logger, db *database.DB, cardRepo repositories.CardRepository, aesKey []byte) CardService {
	return &CardServiceImpl{logger: logger, db: db, cardRepo: cardRepo, aesKey: aesKey}
}

func (s *CardServiceImpl) List(ctx context.Context, traceID string, userID uuid.UUID) ([]views.CardView, error) {
	cards, err := s.cardRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, pkg.HandleSQLError(traceID, s.logger, err)
	}
	out := make([]views.CardView, 0, len(cards))
	for _, card := range cards {
		number, err := utils.DecryptAES(card.Number, s.aesKey)
		if err != nil {
			s.logger.Error("card number decryption failed",
				zap.String(pkg.TraceId, traceID), zap.String("card_id", card.ID.String()), zap.Error(err))
			return nil, pkg.NewAppError(pkg.ErrServerCode, "internal server error", err)
		}
		out = append(out, views.CardView{
			ID:     card.ID.String(),
			Type:   string(card.Type),
			Number: string(number),
			Holder: card.Holder,
			Expiry: card.Expiry,
			Status: string(card.Status),
			Limit:  card.CardLimit,
		})
	}
	return out, nil
}

func (s *CardServiceImpl) UpdateStatus(ctx context.Context, traceID string, userID uuid.UUID, req views.UpdateCardRequest) error {
	cardID, err := uuid.Parse(req.ID)
	if err != nil {
		return pkg.NewAppError(pkg.ErrRecordNotFoundCode, "card not found", err)
	}

	// Ownership check: the card must belong to the caller.
	cards, err := s.cardRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	owned := false
	for _, card := range cards {
		if card.ID == cardID {
			owned = true
			break
		}
	}
	if !owned {
		return pkg.NewAppError(pkg.ErrRecordNotFoundCode, "card not found", nil)
	}

	if err := s.cardRepo.UpdateStatus(ctx, s.db, cardID, pkg.CardStatus(req.Status)); err != nil {
		return pkg.HandleSQLError(traceID, s.logger, err)
	}
	s.logger.Info("card status changed",
		zap.String(pkg.TraceId, traceID),
		zap.String("card_id", cardID.String()),
		zap.String("status", req.Status))
	return nil
}
