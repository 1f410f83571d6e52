package services

import (
	"context"
	"fmt"

	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/internal/infrastructure/outbox"
	"github.com/fastygo/restaurant/usecase"
)

const (
	passwordResetSubject = "Your password reset token (valid for 10 min)"
	passwordResetBody    = "Forgot your password? Submit a PATCH request with your new password to: %s"
)

// MailBridge renders use-case mail requests into outbox messages.
type MailBridge struct {
	processor *MailProcessor
}

func NewMailBridge(processor *MailProcessor) *MailBridge {
	return &MailBridge{processor: processor}
}

func (b *MailBridge) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	if b.processor == nil || to == "" || resetURL == "" {
		return domain.ErrInvalidPayload
	}
	return b.processor.Dispatch(ctx, outbox.Message{
		Kind:     outbox.KindPasswordReset,
		To:       to,
		Subject:  passwordResetSubject,
		Body:     fmt.Sprintf(passwordResetBody, resetURL),
		Priority: 1,
	})
}

var _ usecase.Mailer = (*MailBridge)(nil)
