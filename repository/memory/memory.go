// Package memory provides in-process repository implementations for tests and local runs.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/repository"
)

// UserRepository is a map-backed repository.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Active && strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts("", user.Email, user.Login) {
		return domain.ErrUserExists
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Active = true
	if user.Addresses == nil {
		user.Addresses = []domain.Address{}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	var email, login string
	if patch.Email != nil {
		email = *patch.Email
	}
	if patch.Login != nil {
		login = *patch.Login
	}
	if r.conflicts(id, email, login) {
		return nil, domain.ErrUserExists
	}
	patch.Apply(&u)
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return &u, nil
}

func (r *UserRepository) SetPassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &changedAt
	r.users[id] = u
	return nil
}

func (r *UserRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = active
	r.users[id] = u
	return nil
}

func (r *UserRepository) conflicts(exceptID, email, login string) bool {
	for id, u := range r.users {
		if id == exceptID {
			continue
		}
		if (email != "" && strings.EqualFold(u.Email, email)) || (login != "" && u.Login == login) {
			return true
		}
	}
	return false
}

// ReviewRepository holds reviews in a slice and supports equality filters only.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews []domain.Review
	// LastQuery records the most recent query for assertions.
	LastQuery repository.ReviewQuery
}

func NewReviewRepository(reviews ...domain.Review) *ReviewRepository {
	return &ReviewRepository{reviews: reviews}
}

func (r *ReviewRepository) ListByUser(_ context.Context, query repository.ReviewQuery) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LastQuery = query

	out := []domain.Review{}
	for _, rv := range r.reviews {
		if rv.User != query.UserID {
			continue
		}
		if dishes, ok := query.Filter["dish"].([]string); ok && !slices.Contains(dishes, rv.Dish) {
			continue
		}
		out = append(out, rv)
	}

	p := query.Pagination
	if p.Skip >= len(out) {
		return []domain.Review{}, nil
	}
	out = out[p.Skip:]
	if p.Limit > 0 && p.Limit < len(out) {
		out = out[:p.Limit]
	}
	return out, nil
}

// ResetTokenRepository keeps reset digests with their expiry.
type ResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]resetEntry
}

type resetEntry struct {
	userID    string
	expiresAt time.Time
}

func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{tokens: make(map[string]resetEntry)}
}

func (r *ResetTokenRepository) Save(_ context.Context, digest, userID string, ttl time.Duration) error {
	if digest == "" || userID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[digest] = resetEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (r *ResetTokenRepository) Consume(_ context.Context, digest string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.tokens[digest]
	delete(r.tokens, digest)
	if !ok || time.Now().After(entry.expiresAt) {
		return "", domain.ErrResetTokenInvalid
	}
	return entry.userID, nil
}

func (r *ResetTokenRepository) Delete(_ context.Context, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, digest)
	return nil
}

// Len reports how many reset tokens are stored.
func (r *ResetTokenRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

var (
	_ repository.UserRepository       = (*UserRepository)(nil)
	_ repository.ReviewRepository     = (*ReviewRepository)(nil)
	_ repository.ResetTokenRepository = (*ResetTokenRepository)(nil)
)
