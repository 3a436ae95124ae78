// Package store defines the local transcript archive: an optional record of
// every message that passed through the live history on this machine.
package store

import (
	"context"
	"time"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

// Entry is one archived message.
type Entry struct {
	ID        int64
	Room      string
	Sender    string
	Text      string
	Timestamp int64 // unix milliseconds, as carried on the wire
	SavedAt   time.Time
}

// Archive persists and reads back the local transcript.
type Archive interface {
	SaveMessage(ctx context.Context, room string, msg core.Message) error
	RecentMessages(ctx context.Context, room string, limit int) ([]Entry, error)
	Close() error
}
