package repository

import (
	"context"
	"time"

	"github.com/fastygo/restaurant/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail returns only active users.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	SetPassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
}
