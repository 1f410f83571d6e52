package usecase

import "context"

// Mailer abstracts outgoing mail so use cases stay transport-agnostic.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}
