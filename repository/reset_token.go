package repository

import (
	"context"
	"time"
)

// ResetTokenRepository keeps password-reset token digests until they are used or expire.
type ResetTokenRepository interface {
	Save(ctx context.Context, digest, userID string, ttl time.Duration) error
	// Consume returns the owning user ID and removes the token in one step.
	Consume(ctx context.Context, digest string) (string, error)
	Delete(ctx context.Context, digest string) error
}
