package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Socket sends protocol actions over the persistent connection. The Engine
// never owns a connection of its own; the transport layer hands it one
// long-lived handle for the whole session.
type Socket interface {
	// ID is the local connection identity, stamped on optimistic echoes.
	ID() string
	SendLogin(ctx context.Context, username, room, token string) error
	SendMessage(ctx context.Context, msg Message, room string) error
}

// API fetches bulk state over request/response.
type API interface {
	OnlineUsers(ctx context.Context) ([]User, error)
	RoomHistory(ctx context.Context, room string) ([]Message, error)
}

// Archive records messages as they are appended to the live history. A nil
// archive disables recording.
type Archive interface {
	SaveMessage(ctx context.Context, room string, msg Message) error
}

// EventSink is what the transport layer drives with decoded server events.
// The Engine implements it.
type EventSink interface {
	HandleConnect(id string)
	HandleDisconnect(err error)
	HandleLoggedIn()
	HandleNewConnection()
	HandleMessage(msg Message)
}

// Options tune a new Engine.
type Options struct {
	// Room is the initial active room; defaults to RoomBlue.
	Room string
	// Token is attached to login requests when non-empty.
	Token string
	// LoginAckWarn is how long a login may stay unacknowledged before a
	// notice is surfaced. Zero disables the warning; the state machine
	// never escapes AwaitingLoginAck on its own either way.
	LoginAckWarn time.Duration
}

// Engine is the client-side synchronization core. It owns the session state
// and reconciles it from three sources: the event stream on the persistent
// connection, on-demand bulk pulls, and local user intents.
type Engine struct {
	api     API
	archive Archive
	log     *zerolog.Logger
	token   string
	ackWarn time.Duration

	mu   sync.RWMutex
	s    session
	sock Socket

	ctx      context.Context
	updates  chan struct{}
	ackTimer *time.Timer
}

// NewEngine builds an engine around the given collaborators. archive may be
// nil. Call Start before binding a socket.
func NewEngine(api API, archive Archive, logger *zerolog.Logger, opts Options) *Engine {
	room := opts.Room
	if room == "" {
		room = RoomBlue
	}
	return &Engine{
		api:     api,
		archive: archive,
		log:     logger,
		token:   opts.Token,
		ackWarn: opts.LoginAckWarn,
		ctx:     context.Background(),
		updates: make(chan struct{}, 1),
		s: session{
			activeRoom: room,
		},
	}
}

// Start records the session context used for pulls triggered by server
// events. It does not spawn anything.
func (e *Engine) Start(ctx context.Context) {
	if ctx != nil {
		e.ctx = ctx
	}
}

// BindSocket hands the engine the session's connection handle.
func (e *Engine) BindSocket(sock Socket) {
	e.mu.Lock()
	e.sock = sock
	e.mu.Unlock()
}

// Updates signals after every state change. The channel is coalescing; a
// reader that falls behind sees one pending signal, then reads a fresh
// Snapshot.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// Snapshot returns a read-only copy of the current session state with the
// presence list filtered to the active room.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.s.snapshot()
}

// update applies fn against the latest session state. Every mutation goes
// through here, so no handler can ever act on a snapshot captured when its
// subscription was installed.
func (e *Engine) update(fn func(*session)) {
	e.mu.Lock()
	fn(&e.s)
	e.mu.Unlock()
	e.notify()
}

// transition is update with a guard: fn may refuse by returning an error,
// in which case the state is untouched and nothing is signalled.
func (e *Engine) transition(fn func(*session) error) error {
	e.mu.Lock()
	err := fn(&e.s)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notify()
	return nil
}

func (e *Engine) notify() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}

// SubmitLogin requests login for username in the room current at call time.
// Fire-and-forget: completion only ever arrives as a loggedin event.
func (e *Engine) SubmitLogin(ctx context.Context, username string) error {
	var room string
	var sock Socket
	err := e.transition(func(s *session) error {
		if s.conn != Connected || e.sock == nil {
			return ErrNotConnected
		}
		switch s.identity {
		case AwaitingLoginAck:
			return ErrLoginPending
		case LoggedIn:
			return ErrAlreadyLoggedIn
		}
		s.identity = AwaitingLoginAck
		s.username = username
		s.loginRoom = s.activeRoom
		room = s.activeRoom
		sock = e.sock
		return nil
	})
	if err != nil {
		return err
	}

	if err := sock.SendLogin(ctx, username, room, e.token); err != nil {
		// The request never left, so the handshake is not actually
		// outstanding; roll back to Anonymous.
		e.update(func(s *session) {
			if s.identity == AwaitingLoginAck {
				s.identity = Anonymous
			}
		})
		e.log.Warn().Err(err).Str("username", username).Msg("login request failed to send")
		return err
	}

	e.log.Info().Str("username", username).Str("room", room).Msg("login requested")
	e.armAckWarn()
	return nil
}

// armAckWarn surfaces a notice if the login ack never arrives. No recovery
// transition is defined; the session stays in AwaitingLoginAck.
func (e *Engine) armAckWarn() {
	if e.ackWarn <= 0 {
		return
	}
	e.mu.Lock()
	if e.ackTimer != nil {
		e.ackTimer.Stop()
	}
	e.ackTimer = time.AfterFunc(e.ackWarn, func() {
		stuck := false
		e.update(func(s *session) {
			if s.identity == AwaitingLoginAck {
				s.notice = "login not acknowledged by server"
				stuck = true
			}
		})
		if stuck {
			e.log.Warn().Dur("waited", e.ackWarn).Msg("login ack still pending")
		}
	})
	e.mu.Unlock()
}

// ToggleRoom flips the active room between blue and red. Allowed only while
// Anonymous; once a login is requested the room is locked for the session.
// Any history viewed before login cannot outlive a room switch.
func (e *Engine) ToggleRoom() error {
	return e.transition(func(s *session) error {
		if s.identity != Anonymous {
			return ErrRoomLocked
		}
		if s.activeRoom == RoomBlue {
			s.activeRoom = RoomRed
		} else {
			s.activeRoom = RoomBlue
		}
		s.history = nil
		return nil
	})
}

// SendMessage appends an optimistic echo to the history and asks the server
// to broadcast it to the other clients in the active room. The echo is
// final: the server never delivers a message back to its sender.
func (e *Engine) SendMessage(ctx context.Context, text string) error {
	var (
		msg  Message
		room string
		sock Socket
	)
	err := e.transition(func(s *session) error {
		if s.identity != LoggedIn {
			return ErrNotLoggedIn
		}
		msg = Message{
			Text:      text,
			ID:        s.connID,
			Sender:    s.username,
			Timestamp: time.Now().UnixMilli(),
		}
		room = s.activeRoom
		sock = e.sock
		s.history = append(s.history, msg)
		return nil
	})
	if err != nil {
		return err
	}

	e.record(room, msg)
	if err := sock.SendMessage(ctx, msg, room); err != nil {
		// The echo stays; only delivery to others failed.
		e.log.Warn().Err(err).Msg("message broadcast request failed")
		return err
	}
	return nil
}

// HandleConnect implements EventSink. A (re)connect never resets
// application state; it only reopens the login window.
func (e *Engine) HandleConnect(id string) {
	e.update(func(s *session) {
		s.conn = Connected
		s.connID = id
	})
	e.log.Info().Str("conn_id", id).Msg("connection established")
}

// HandleDisconnect implements EventSink. Presence and history survive a
// transient disconnect untouched.
func (e *Engine) HandleDisconnect(err error) {
	e.update(func(s *session) {
		s.conn = Disconnected
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("connection lost")
	} else {
		e.log.Info().Msg("connection closed")
	}
}

// HandleLoggedIn implements EventSink. The ack's arrival alone is the
// signal; entering LoggedIn triggers the presence pull and the history pull
// for the room captured at login time.
func (e *Engine) HandleLoggedIn() {
	var room string
	acked := false
	e.update(func(s *session) {
		if s.identity != AwaitingLoginAck {
			return
		}
		s.identity = LoggedIn
		s.notice = ""
		room = s.loginRoom
		acked = true
	})
	if !acked {
		e.log.Warn().Msg("unexpected loggedin event ignored")
		return
	}

	e.mu.Lock()
	if e.ackTimer != nil {
		e.ackTimer.Stop()
		e.ackTimer = nil
	}
	e.mu.Unlock()

	e.log.Info().Str("room", room).Msg("logged in")
	go e.RefreshPresence(e.ctx)
	go e.LoadHistory(e.ctx, room)
}

// HandleNewConnection implements EventSink. Someone's membership changed
// somewhere; re-pull the full snapshot.
func (e *Engine) HandleNewConnection() {
	e.log.Debug().Msg("presence changed, refreshing online users")
	go e.RefreshPresence(e.ctx)
}

// HandleMessage implements EventSink. Appends a broadcast from another
// client to the latest history. Payloads with no sender are dropped so the
// append path stays total.
func (e *Engine) HandleMessage(msg Message) {
	if msg.Sender == "" {
		e.log.Warn().Msg("dropping inbound message without sender")
		return
	}
	var room string
	e.update(func(s *session) {
		s.history = append(s.history, msg)
		room = s.activeRoom
	})
	e.record(room, msg)
}

// RefreshPresence pulls the full online-user snapshot and replaces the
// presence list wholesale. On failure the previous snapshot stays and a
// notice is surfaced; no retry. Concurrent pulls are safe: the last one to
// complete wins.
func (e *Engine) RefreshPresence(ctx context.Context) {
	users, err := e.api.OnlineUsers(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("online users pull failed")
		e.update(func(s *session) {
			s.notice = "could not refresh online users"
		})
		return
	}
	e.update(func(s *session) {
		s.users = users
		s.notice = ""
	})
	e.log.Debug().Int("count", len(users)).Msg("presence snapshot replaced")
}

// LoadHistory pulls a room's stored history and replaces the current
// history wholesale. Failure keeps whatever was already displayed.
func (e *Engine) LoadHistory(ctx context.Context, room string) {
	msgs, err := e.api.RoomHistory(ctx, room)
	if err != nil {
		e.log.Warn().Err(err).Str("room", room).Msg("history pull failed")
		e.update(func(s *session) {
			s.notice = "could not load room history"
		})
		return
	}
	e.update(func(s *session) {
		s.history = msgs
		s.notice = ""
	})
	e.log.Debug().Str("room", room).Int("count", len(msgs)).Msg("history replaced")
}

// record archives a live message off the hot path. Bulk-loaded history is
// not archived; it is already the server's copy.
func (e *Engine) record(room string, msg Message) {
	if e.archive == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(e.ctx, 2*time.Second)
		defer cancel()
		if err := e.archive.SaveMessage(ctx, room, msg); err != nil {
			e.log.Warn().Err(err).Msg("failed to archive message")
		}
	}()
}
