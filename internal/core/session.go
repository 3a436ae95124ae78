package core

// ConnState reflects the transport lifecycle as surfaced by the socket.
type ConnState int

const (
	// Disconnected means the persistent connection is not established.
	Disconnected ConnState = iota
	// Connected means the persistent connection is up and login is possible.
	Connected
)

// String returns the string representation of a ConnState.
func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// IdentityState tracks the login handshake.
type IdentityState int

const (
	// Anonymous means no login has been requested yet.
	Anonymous IdentityState = iota
	// AwaitingLoginAck means a login request is outstanding.
	AwaitingLoginAck
	// LoggedIn is terminal for the session; there is no logout.
	LoggedIn
)

// String returns the string representation of an IdentityState.
func (s IdentityState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case AwaitingLoginAck:
		return "awaiting_login_ack"
	case LoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// session is the single mutable state of a running client. It is owned by
// the Engine and mutated only through Engine.update, which serializes every
// transform against the latest value.
type session struct {
	conn     ConnState
	connID   string
	identity IdentityState
	username string

	// activeRoom gates which presence entries and which history are
	// visible; loginRoom is captured when the login request is sent so the
	// post-ack history pull targets the room the user logged into.
	activeRoom string
	loginRoom  string

	users   []User    // latest presence snapshot, all rooms
	history []Message // active room's history, append order

	notice string // last non-blocking diagnostic, empty when clear
}

// Snapshot is the read-only projection handed to the presentation layer.
// OnlineUsers is already filtered to the active room.
type Snapshot struct {
	Conn        ConnState
	ConnID      string
	Identity    IdentityState
	Username    string
	ActiveRoom  string
	OnlineUsers []User
	History     []Message
	Notice      string
}

// snapshot copies the session into an independent Snapshot. Callers must
// hold at least a read lock.
func (s *session) snapshot() Snapshot {
	snap := Snapshot{
		Conn:       s.conn,
		ConnID:     s.connID,
		Identity:   s.identity,
		Username:   s.username,
		ActiveRoom: s.activeRoom,
		Notice:     s.notice,
	}
	for _, u := range s.users {
		if u.Room == s.activeRoom {
			snap.OnlineUsers = append(snap.OnlineUsers, u)
		}
	}
	if len(s.history) > 0 {
		snap.History = make([]Message, len(s.history))
		copy(snap.History, s.history)
	}
	return snap
}
