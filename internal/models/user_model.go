package models

import (
	"time"

	"github.com/google/uuid"
)

// User maps to table `users`
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
