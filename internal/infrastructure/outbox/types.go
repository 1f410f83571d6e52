package outbox

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindPasswordReset = "password_reset"

	defaultPriority = 3
)

// Message is an email waiting to be handed to the mail transport.
type Message struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Priority  int       `json:"priority"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	key []byte
}

func (m *Message) normalize() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Priority <= 0 || m.Priority > 5 {
		m.Priority = defaultPriority
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
}
