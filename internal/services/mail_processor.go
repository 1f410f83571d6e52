package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/restaurant/internal/infrastructure/mail"
	"github.com/fastygo/restaurant/internal/infrastructure/outbox"
)

// ProcessorConfig controls how frequently the outbox is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// MaxAge drops messages that are no longer worth delivering.
	MaxAge time.Duration
}

// MailProcessor delivers mail immediately when possible and retries failures from the outbox.
type MailProcessor struct {
	store  *outbox.Store
	sender mail.Sender
	logger *zap.Logger
	cron   *cron.Cron
	cfg    ProcessorConfig
}

func NewMailProcessor(store *outbox.Store, sender mail.Sender, logger *zap.Logger, cfg ProcessorConfig) *MailProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mp := &MailProcessor{
		store:  store,
		sender: sender,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", max(1, int(cfg.Interval.Seconds())))
	_, _ = mp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := mp.Drain(ctx); err != nil {
			mp.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return mp
}

// Start launches the cron scheduler.
func (mp *MailProcessor) Start() {
	if mp == nil || mp.cron == nil {
		return
	}
	mp.cron.Start()
	mp.logger.Info("mail processor started", zap.Duration("interval", mp.cfg.Interval))
}

// Stop waits for a running drain to finish or ctx to expire.
func (mp *MailProcessor) Stop(ctx context.Context) {
	if mp == nil || mp.cron == nil {
		return
	}
	stopCtx := mp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	mp.logger.Info("mail processor stopped")
}

// Dispatch sends msg right away and falls back to persisting it for a later drain.
func (mp *MailProcessor) Dispatch(ctx context.Context, msg outbox.Message) error {
	if mp == nil || mp.sender == nil {
		return fmt.Errorf("mail processor not configured")
	}

	err := mp.sender.Send(ctx, toMail(msg))
	if err == nil {
		return nil
	}
	if mp.store == nil {
		return err
	}
	mp.logger.Warn("immediate mail delivery failed, queued for retry",
		zap.String("kind", msg.Kind), zap.Error(err))

	msg.Attempts = 1
	msg.LastError = err.Error()
	if _, qErr := mp.store.Enqueue(msg); qErr != nil {
		return fmt.Errorf("queue mail: %w", qErr)
	}
	return nil
}

// Drain retries queued messages synchronously.
func (mp *MailProcessor) Drain(ctx context.Context) error {
	if mp == nil || mp.store == nil {
		return nil
	}
	if mp.cfg.MaxAge > 0 {
		if n, err := mp.store.Purge(time.Now().Add(-mp.cfg.MaxAge)); err != nil {
			mp.logger.Warn("outbox purge failed", zap.Error(err))
		} else if n > 0 {
			mp.logger.Info("expired mail dropped", zap.Int("count", n))
		}
	}

	messages, err := mp.store.Peek(mp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		sendErr := mp.sender.Send(ctx, toMail(msg))
		if sendErr == nil {
			if err := mp.store.Remove(msg); err != nil {
				mp.logger.Warn("failed to remove delivered mail", zap.String("message_id", msg.ID), zap.Error(err))
			}
			continue
		}

		mp.logger.Error("mail delivery failed",
			zap.String("message_id", msg.ID),
			zap.Int("attempts", msg.Attempts+1),
			zap.Error(sendErr))

		if msg.Attempts+1 >= mp.cfg.MaxRetries {
			mp.logger.Warn("dropping mail (max retries reached)", zap.String("message_id", msg.ID))
			_ = mp.store.Remove(msg)
			continue
		}
		if err := mp.store.Retry(msg, sendErr); err != nil {
			mp.logger.Error("failed to requeue mail", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of queued messages.
func (mp *MailProcessor) Size() int {
	if mp == nil || mp.store == nil {
		return 0
	}
	size, err := mp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func toMail(msg outbox.Message) mail.Message {
	return mail.Message{To: msg.To, Subject: msg.Subject, Body: msg.Body}
}
