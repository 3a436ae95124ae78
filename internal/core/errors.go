package core

// Error codes for intent rejections.
const (
	ErrCodeNotConnected    = "not_connected"
	ErrCodeLoginPending    = "login_pending"
	ErrCodeAlreadyLoggedIn = "already_logged_in"
	ErrCodeNotLoggedIn     = "not_logged_in"
	ErrCodeRoomLocked      = "room_locked"
	ErrCodeBadPayload      = "bad_payload"
)

var (
	// ErrNotConnected rejects a login attempt before the transport is up.
	ErrNotConnected = &CoreError{Code: ErrCodeNotConnected, Message: "not connected to server"}
	// ErrLoginPending rejects a second login while an ack is outstanding.
	ErrLoginPending = &CoreError{Code: ErrCodeLoginPending, Message: "login already pending"}
	// ErrAlreadyLoggedIn rejects programmatic re-login; the session has no logout.
	ErrAlreadyLoggedIn = &CoreError{Code: ErrCodeAlreadyLoggedIn, Message: "already logged in"}
	// ErrNotLoggedIn rejects sending messages before login completes.
	ErrNotLoggedIn = &CoreError{Code: ErrCodeNotLoggedIn, Message: "not logged in"}
	// ErrRoomLocked rejects room toggling once login has been requested.
	ErrRoomLocked = &CoreError{Code: ErrCodeRoomLocked, Message: "room locked after login"}
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}
