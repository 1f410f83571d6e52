package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/restaurant/domain"
)

// fakeStore implements the commands the repository issues. Any other
// Cmdable method panics through the nil embedded interface.
type fakeStore struct {
	redislib.Cmdable

	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redislib.StatusCmd {
	if f.err != nil {
		return redislib.NewStatusResult("", f.err)
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return redislib.NewStatusResult("OK", nil)
}

func (f *fakeStore) GetDel(_ context.Context, key string) *redislib.StringCmd {
	if f.err != nil {
		return redislib.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redislib.NewStringResult("", redislib.Nil)
	}
	delete(f.values, key)
	return redislib.NewStringResult(v, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *redislib.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redislib.NewIntResult(n, nil)
}

func TestResetTokenRepository_SaveUsesPrefixAndDefaultTTL(t *testing.T) {
	store := newFakeStore()
	repo := NewResetTokenRepository(store, 15*time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "abc", "u1", 0))
	require.NoError(t, repo.Save(ctx, "def", "u2", time.Minute))

	assert.Equal(t, "u1", store.values["password_reset:abc"])
	assert.Equal(t, 15*time.Minute, store.ttls["password_reset:abc"])
	assert.Equal(t, time.Minute, store.ttls["password_reset:def"])
}

func TestResetTokenRepository_SaveRejectsEmpty(t *testing.T) {
	repo := NewResetTokenRepository(newFakeStore(), 0)

	assert.ErrorIs(t, repo.Save(context.Background(), "", "u1", 0), domain.ErrInvalidPayload)
	assert.ErrorIs(t, repo.Save(context.Background(), "abc", "", 0), domain.ErrInvalidPayload)
}

func TestResetTokenRepository_ConsumeIsOneTime(t *testing.T) {
	repo := NewResetTokenRepository(newFakeStore(), time.Minute)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "abc", "u1", 0))

	userID, err := repo.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, err = repo.Consume(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestResetTokenRepository_ConsumeErrors(t *testing.T) {
	down := errors.New("connection refused")
	tests := []struct {
		name     string
		storeErr error
		want     error
	}{
		{name: "missing key", want: domain.ErrResetTokenInvalid},
		{name: "store failure passes through", storeErr: down, want: down},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.err = tt.storeErr
			repo := NewResetTokenRepository(store, time.Minute)

			userID, err := repo.Consume(context.Background(), "nope")
			assert.Empty(t, userID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResetTokenRepository_Delete(t *testing.T) {
	store := newFakeStore()
	repo := NewResetTokenRepository(store, time.Minute)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "abc", "u1", 0))

	require.NoError(t, repo.Delete(ctx, "abc"))
	assert.NotContains(t, store.values, "password_reset:abc")
	assert.NoError(t, repo.Delete(ctx, "abc"))
}
