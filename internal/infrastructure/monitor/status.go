package monitor

import "time"

type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	MongoDB    bool      `json:"mongodb"`
	Outbox     bool      `json:"outbox"`
	OutboxSize int       `json:"outbox_size"`
	LastCheck  time.Time `json:"last_check"`
}

// Healthy reports whether every datastore answered the last probe.
func (s Status) Healthy() bool {
	return s.PostgreSQL && s.Redis && s.MongoDB
}
