package sqlite

import (
	"context"
	"testing"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

func newTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()

	a, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSaveAndReadBack(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	msgs := []core.Message{
		{Text: "first", Sender: "alice", ID: "c1", Timestamp: 1000},
		{Text: "second", Sender: "bob", ID: "c2", Timestamp: 2000},
		{Text: "third", Sender: "alice", ID: "c1", Timestamp: 3000},
	}
	for _, m := range msgs {
		if err := a.SaveMessage(ctx, "blue", m); err != nil {
			t.Fatalf("save %q: %v", m.Text, err)
		}
	}
	if err := a.SaveMessage(ctx, "red", core.Message{Text: "elsewhere", Sender: "carol", ID: "c3"}); err != nil {
		t.Fatalf("save red: %v", err)
	}

	entries, err := a.RecentMessages(ctx, "blue", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 blue entries, got %d", len(entries))
	}
	// Chronological order, room-scoped.
	for i, want := range []string{"first", "second", "third"} {
		if entries[i].Text != want {
			t.Fatalf("entries[%d].Text = %q, want %q", i, entries[i].Text, want)
		}
		if entries[i].Room != "blue" {
			t.Fatalf("entry leaked from room %q", entries[i].Room)
		}
	}
	if entries[1].Sender != "bob" || entries[1].Timestamp != 2000 {
		t.Fatalf("unexpected entry: %+v", entries[1])
	}
}

func TestRecentMessagesLimitKeepsNewest(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c", "d"} {
		if err := a.SaveMessage(ctx, "blue", core.Message{Text: text, Sender: "alice", ID: "c1"}); err != nil {
			t.Fatalf("save %q: %v", text, err)
		}
	}

	entries, err := a.RecentMessages(ctx, "blue", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 || entries[0].Text != "c" || entries[1].Text != "d" {
		t.Fatalf("expected newest two in order, got %+v", entries)
	}
}

func TestRecentMessagesEmptyRoom(t *testing.T) {
	a := newTestArchive(t)

	entries, err := a.RecentMessages(context.Background(), "ghost", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %+v", entries)
	}
}
