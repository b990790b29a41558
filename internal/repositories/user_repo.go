package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/pkg/database"
)

type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user models.User) (pgconn.CommandTag, error)
	FindByEmail(ctx context.Context, db *database.DB, email string) (models.User, error)
	FindByID(ctx context.Context, db *database.DB, userID uuid.UUID) (models.User, error)
	UpdateProfile(ctx context.Context, db *database.DB, userID uuid.UUID, name, phone string) error
	UpdatePassword(ctx context.Context, db *database.DB, userID uuid.UUID, passwordHash string) error
}

type UserRepositoryImpl struct {
}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

const userColumns = `id, email, name, password_hash, phone, created_at, updated_at`

func (u UserRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, user models.User) (pgconn.CommandTag, error) {
	return tx.Exec(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Phone, user.CreatedAt, user.UpdatedAt)
}

func (u UserRepositoryImpl) FindByEmail(ctx context.Context, db *database.DB, email string) (models.User, error) {
	row := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (u UserRepositoryImpl) FindByID(ctx context.Context, db *database.DB, userID uuid.UUID) (models.User, error) {
	row := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

func (u UserRepositoryImpl) UpdateProfile(ctx context.Context, db *database.DB, userID uuid.UUID, name, phone string) error {
	tag, err := db.Exec(ctx, `UPDATE users SET name = $1, phone = $2, updated_at = now() WHERE id = $3`, name, phone, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (u UserRepositoryImpl) UpdatePassword(ctx context.Context, db *database.DB, userID uuid.UUID, passwordHash string) error {
	tag, err := db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Phone, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}
