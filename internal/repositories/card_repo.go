package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
)

type CardRepository interface {
	Create(ctx context.Context, tx pgx.Tx, card models.Card) (pgconn.CommandTag, error)
	ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Card, error)
	UpdateStatus(ctx context.Context, db *database.DB, cardID uuid.UUID, status pkg.CardStatus) error
}

type CardRepositoryImpl struct {
}

func NewCardRepository() CardRepository {
	return &CardRepositoryImpl{}
}

func (c CardRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, card models.Card) (pgconn.CommandTag, error) {
	return tx.Exec(ctx, `INSERT INTO cards (id, user_id, account_id, type, number, holder, expiry, status, card_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		card.ID, card.UserID, card.AccountID, card.Type, card.Number, card.Holder,
		card.Expiry, card.Status, card.CardLimit, card.CreatedAt, card.UpdatedAt)
}

func (c CardRepositoryImpl) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Card, error) {
	rows, err := db.Query(ctx, `SELECT id, user_id, account_id, type, number, holder, expiry, status, card_limit, created_at, updated_at
		FROM cards WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var card models.Card
		if err = rows.Scan(&card.ID, &card.UserID, &card.AccountID, &card.Type, &card.Number, &card.Holder,
			&card.Expiry, &card.Status, &card.CardLimit, &card.CreatedAt, &card.UpdatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (c CardRepositoryImpl) UpdateStatus(ctx context.Context, db *database.DB, cardID uuid.UUID, status pkg.CardStatus) error {
	tag, err := db.Exec(ctx, `UPDATE cards SET status = $1, updated_at = now() WHERE id = $2`, status, cardID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
