package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	logger := zerolog.Nop()
	return New(ts.URL, 2*time.Second, &logger)
}

func TestOnlineUsers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/online-users", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"onlineUsers":[{"username":"alice","room":"blue"},{"username":"bob","room":"red"}]}`)
	})
	c := newTestClient(t, mux)

	users, err := c.OnlineUsers(context.Background())
	if err != nil {
		t.Fatalf("online users: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" || users[1].Room != "red" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestRoomHistory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rooms/blue", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"text":"hi","id":"c1","sender":"alice","timestamp":1700000000000}]`)
	})
	c := newTestClient(t, mux)

	msgs, err := c.RoomHistory(context.Background(), "blue")
	if err != nil {
		t.Fatalf("room history: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "hi" || msgs[0].Sender != "alice" {
		t.Fatalf("unexpected history: %+v", msgs)
	}
}

func TestNon2xxIsStatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.OnlineUsers(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", statusErr.Status)
	}
}

func TestRoomNameEscaped(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `[]`)
	}))

	if _, err := c.RoomHistory(context.Background(), "blue/../red"); err != nil {
		t.Fatalf("room history: %v", err)
	}
	if gotPath != "/rooms/blue%2F..%2Fred" {
		t.Fatalf("room not escaped: %q", gotPath)
	}
}
