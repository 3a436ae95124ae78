package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type loginCall struct {
	username, room, token string
}

type sendCall struct {
	msg  Message
	room string
}

type fakeSocket struct {
	mu       sync.Mutex
	id       string
	logins   []loginCall
	sent     []sendCall
	failSend error
}

func (f *fakeSocket) ID() string { return f.id }

func (f *fakeSocket) SendLogin(_ context.Context, username, room, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return f.failSend
	}
	f.logins = append(f.logins, loginCall{username, room, token})
	return nil
}

func (f *fakeSocket) SendMessage(_ context.Context, msg Message, room string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sendCall{msg, room})
	if f.failSend != nil {
		return f.failSend
	}
	return nil
}

func (f *fakeSocket) sentCalls() []sendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sendCall, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeSocket) loginCalls() []loginCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]loginCall, len(f.logins))
	copy(out, f.logins)
	return out
}

type fakeAPI struct {
	mu           sync.Mutex
	users        []User
	usersErr     error
	history      map[string][]Message
	historyErr   error
	usersCalls   int
	historyCalls []string
}

func (f *fakeAPI) OnlineUsers(_ context.Context) ([]User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usersCalls++
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	out := make([]User, len(f.users))
	copy(out, f.users)
	return out, nil
}

func (f *fakeAPI) RoomHistory(_ context.Context, room string) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls = append(f.historyCalls, room)
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	out := make([]Message, len(f.history[room]))
	copy(out, f.history[room])
	return out, nil
}

func (f *fakeAPI) stats() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]string, len(f.historyCalls))
	copy(calls, f.historyCalls)
	return f.usersCalls, calls
}

// newTestEngine returns a connected engine over fakes.
func newTestEngine(t *testing.T, opts Options) (*Engine, *fakeSocket, *fakeAPI) {
	t.Helper()

	logger := zerolog.Nop()
	api := &fakeAPI{history: map[string][]Message{}}
	eng := NewEngine(api, nil, &logger, opts)
	eng.Start(context.Background())

	sock := &fakeSocket{id: "conn-1"}
	eng.BindSocket(sock)
	eng.HandleConnect(sock.ID())
	return eng, sock, api
}

// login drives the full handshake for username in the current room.
func login(t *testing.T, eng *Engine, username string) {
	t.Helper()

	if err := eng.SubmitLogin(context.Background(), username); err != nil {
		t.Fatalf("submit login: %v", err)
	}
	eng.HandleLoggedIn()
	if got := eng.Snapshot().Identity; got != LoggedIn {
		t.Fatalf("expected LoggedIn after ack, got %v", got)
	}
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
