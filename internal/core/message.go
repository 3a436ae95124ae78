package core

// Rooms the reference server partitions chat into. The room type stays an
// open string so new partitions do not ripple through the engine.
const (
	RoomBlue = "blue"
	RoomRed  = "red"
)

// Message is one entry in a room's history. Timestamp is unix milliseconds
// and is display metadata only; history order is append order, never
// timestamp order.
type Message struct {
	Text      string `json:"text"`
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

// User is one online participant as reported by the presence endpoint.
type User struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}
