package internal

import (
	"context"
	"time"
)

// ChoicesReplaced describes one field whose choice list was replaced.
type ChoicesReplaced struct {
	RunID      string    `json:"run_id"`
	Variant    Variant   `json:"variant"`
	FormID     string    `json:"form_id"`
	FieldIndex int       `json:"field_index"`
	Previous   int       `json:"previous"`
	Choices    []string  `json:"choices"`
	Time       time.Time `json:"time"`
}

// Notifier receives a message for every replaced choice list.
type Notifier interface {
	Notify(ctx context.Context, change ChoicesReplaced) error
	Close(ctx context.Context) error
}

// NotifierStats counts what a notifier has sent.
type NotifierStats struct {
	TotalMessages   int64     `json:"total_messages"`
	WriteErrorCount int64     `json:"write_error_count"`
	LastWriteAt     time.Time `json:"last_write_at,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
}

// StatsReporter is implemented by notifiers that keep delivery counters.
type StatsReporter interface {
	Stats() NotifierStats
}
