// Package proto pins the wire protocol the reference server speaks: named
// events in a JSON envelope on the persistent connection, plus the shapes
// of the request/response endpoints.
package proto

import (
	"encoding/json"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

// Envelope frames every event on the persistent connection.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Server-sent events.
const (
	EventConnect       = "connect"
	EventLoggedIn      = "loggedin"
	EventNewConnection = "newConnection"
	EventMessage       = "message"
)

// Client-sent events.
const (
	EventSetUsername = "setUsername"
	EventSendMessage = "sendmessage"
)

// SetUsernameData is the login request payload.
type SetUsernameData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
	Token    string `json:"token,omitempty"`
}

// SendMessageData asks the server to broadcast a message to a room's other
// clients; the sender keeps its own optimistic echo.
type SendMessageData struct {
	Message core.Message `json:"message"`
	Room    string       `json:"room"`
}

// OnlineUsersResponse is the body of GET /online-users.
type OnlineUsersResponse struct {
	OnlineUsers []core.User `json:"onlineUsers"`
}
