package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/wirechat-client/internal/core"
	"github.com/vovakirdan/wirechat-client/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcript (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	room     TEXT NOT NULL,
	sender   TEXT NOT NULL,
	text     TEXT NOT NULL,
	ts       INTEGER NOT NULL,
	saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_transcript_room ON transcript(room, id);
`

// SQLiteArchive implements store.Archive on a local SQLite file.
type SQLiteArchive struct {
	db *sql.DB
}

// New opens (and if needed initializes) the transcript database at dbPath.
func New(dbPath string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteArchive{db: db}, nil
}

// Close closes the database connection.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// SaveMessage appends one message to the transcript.
func (a *SQLiteArchive) SaveMessage(ctx context.Context, room string, msg core.Message) error {
	query := `
		INSERT INTO transcript (room, sender, text, ts)
		VALUES (?, ?, ?, ?)
	`
	if _, err := a.db.ExecContext(ctx, query, room, msg.Sender, msg.Text, msg.Timestamp); err != nil {
		return fmt.Errorf("insert transcript entry: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit entries for a room, oldest first.
func (a *SQLiteArchive) RecentMessages(ctx context.Context, room string, limit int) ([]store.Entry, error) {
	query := `
		SELECT id, room, sender, text, ts, saved_at
		FROM transcript
		WHERE room = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := a.db.QueryContext(ctx, query, room, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var entries []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.ID, &e.Room, &e.Sender, &e.Text, &e.Timestamp, &e.SavedAt); err != nil {
			return nil, fmt.Errorf("scan transcript entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
