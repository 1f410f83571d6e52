package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/repository"
)

type resetTokenRepository struct {
	client redislib.Cmdable
	prefix string
	ttl    time.Duration
}

// NewResetTokenRepository creates a Redis-backed store for password-reset token digests.
func NewResetTokenRepository(client redislib.Cmdable, ttl time.Duration) repository.ResetTokenRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &resetTokenRepository{
		client: client,
		prefix: "password_reset:",
		ttl:    ttl,
	}
}

func (r *resetTokenRepository) Save(ctx context.Context, digest, userID string, ttl time.Duration) error {
	if digest == "" || userID == "" {
		return domain.ErrInvalidPayload
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.client.Set(ctx, r.key(digest), userID, ttl).Err()
}

func (r *resetTokenRepository) Consume(ctx context.Context, digest string) (string, error) {
	userID, err := r.client.GetDel(ctx, r.key(digest)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", err
	}
	return userID, nil
}

func (r *resetTokenRepository) Delete(ctx context.Context, digest string) error {
	return r.client.Del(ctx, r.key(digest)).Err()
}

func (r *resetTokenRepository) key(digest string) string {
	return fmt.Sprintf("%s%s", r.prefix, digest)
}
