package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/restaurant/internal/infrastructure/mail"
	"github.com/fastygo/restaurant/internal/infrastructure/outbox"
)

type stubSender struct {
	mu   sync.Mutex
	err  error
	sent []mail.Message
}

func (s *stubSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *stubSender) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func newProcessor(t *testing.T, sender mail.Sender, cfg ProcessorConfig) (*MailProcessor, *outbox.Store) {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewMailProcessor(store, sender, nil, cfg), store
}

func TestMailBridge_SendPasswordReset(t *testing.T) {
	sender := &stubSender{}
	mp, _ := newProcessor(t, sender, ProcessorConfig{})
	bridge := NewMailBridge(mp)

	err := bridge.SendPasswordReset(context.Background(), "user@example.com", "http://localhost/api/v1/users/reset-password/abc")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "user@example.com", sender.sent[0].To)
	assert.Equal(t, passwordResetSubject, sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "/reset-password/abc")
	assert.Zero(t, mp.Size())
}

func TestMailBridge_RejectsEmptyInput(t *testing.T) {
	bridge := NewMailBridge(nil)
	assert.Error(t, bridge.SendPasswordReset(context.Background(), "user@example.com", "url"))

	mp, _ := newProcessor(t, &stubSender{}, ProcessorConfig{})
	assert.Error(t, NewMailBridge(mp).SendPasswordReset(context.Background(), "", "url"))
}

func TestMailProcessor_QueuesOnFailureAndDrains(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp unavailable")}
	mp, _ := newProcessor(t, sender, ProcessorConfig{MaxRetries: 3})

	require.NoError(t, mp.Dispatch(context.Background(), outbox.Message{To: "user@example.com", Subject: "s"}))
	assert.Equal(t, 1, mp.Size())

	sender.fail(nil)
	require.NoError(t, mp.Drain(context.Background()))
	assert.Zero(t, mp.Size())
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "user@example.com", sender.sent[0].To)
}

func TestMailProcessor_DropsAfterMaxRetries(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp unavailable")}
	mp, store := newProcessor(t, sender, ProcessorConfig{MaxRetries: 3})

	require.NoError(t, mp.Dispatch(context.Background(), outbox.Message{To: "user@example.com"}))

	require.NoError(t, mp.Drain(context.Background()))
	batch, err := store.Peek(10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, 2, batch[0].Attempts)

	require.NoError(t, mp.Drain(context.Background()))
	assert.Zero(t, mp.Size())
}

func TestMailProcessor_DrainPurgesExpired(t *testing.T) {
	sender := &stubSender{}
	mp, store := newProcessor(t, sender, ProcessorConfig{MaxAge: time.Minute})

	_, err := store.Enqueue(outbox.Message{To: "stale@example.com", CreatedAt: time.Now().Add(-time.Hour)})
	require.NoError(t, err)

	require.NoError(t, mp.Drain(context.Background()))
	assert.Empty(t, sender.sent)
	assert.Zero(t, mp.Size())
}

func TestMailProcessor_StartStop(t *testing.T) {
	mp, _ := newProcessor(t, &stubSender{}, ProcessorConfig{Interval: time.Hour})
	mp.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	mp.Stop(ctx)
}
