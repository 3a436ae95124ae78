// Package ws owns the persistent connection. It dials, mints the local
// connection identity, decodes inbound envelopes into typed events for the
// core engine, and encodes outgoing protocol actions.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/core"
	"github.com/vovakirdan/wirechat-client/internal/proto"
)

// Socket is the session's one long-lived connection handle.
type Socket struct {
	id   string
	conn *websocket.Conn
	sink core.EventSink
	log  *zerolog.Logger
}

// Dial connects to the server and reports the connect lifecycle event to
// the sink. The returned socket is ready to Emit; call Run to start
// delivering inbound events.
func Dial(ctx context.Context, url string, sink core.EventSink, logger *zerolog.Logger) (*Socket, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	s := &Socket{
		id:   uuid.NewString(),
		conn: conn,
		sink: sink,
		log:  logger,
	}
	sink.HandleConnect(s.id)
	return s, nil
}

// ID returns the local connection identity.
func (s *Socket) ID() string {
	return s.id
}

// SendLogin implements core.Socket.
func (s *Socket) SendLogin(ctx context.Context, username, room, token string) error {
	return s.emit(ctx, proto.EventSetUsername, proto.SetUsernameData{
		Username: username,
		Room:     room,
		Token:    token,
	})
}

// SendMessage implements core.Socket.
func (s *Socket) SendMessage(ctx context.Context, msg core.Message, room string) error {
	return s.emit(ctx, proto.EventSendMessage, proto.SendMessageData{
		Message: msg,
		Room:    room,
	})
}

func (s *Socket) emit(ctx context.Context, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	if err := wsjson.Write(ctx, s.conn, proto.Envelope{Event: event, Data: raw}); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// Run reads envelopes until the connection or context ends, dispatching
// each to the sink in arrival order. It reports the disconnect to the sink
// before returning; expected closures return nil.
func (s *Socket) Run(ctx context.Context) error {
	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, s.conn, &env); err != nil {
			err = normalizeClose(err)
			s.sink.HandleDisconnect(err)
			return err
		}
		s.dispatch(env)
	}
}

// dispatch maps one envelope to a typed sink call. Malformed payloads are
// logged and skipped so a bad event can never take the session down.
func (s *Socket) dispatch(env proto.Envelope) {
	switch env.Event {
	case proto.EventConnect:
		// The server's greeting; the dial already reported Connected.
		s.log.Debug().Msg("server greeting received")
	case proto.EventLoggedIn:
		s.sink.HandleLoggedIn()
	case proto.EventNewConnection:
		s.sink.HandleNewConnection()
	case proto.EventMessage:
		var msg core.Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			s.log.Warn().Err(err).Msg("malformed message payload skipped")
			return
		}
		s.sink.HandleMessage(msg)
	default:
		s.log.Debug().Str("event", env.Event).Msg("unknown event ignored")
	}
}

// Close ends the connection cleanly.
func (s *Socket) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "bye")
}

// normalizeClose turns expected shutdowns into nil.
func normalizeClose(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return nil
	}
	return err
}
