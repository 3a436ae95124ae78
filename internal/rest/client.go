// Package rest is the request/response side of the protocol: on-demand bulk
// pulls of presence and room history.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/core"
	"github.com/vovakirdan/wirechat-client/internal/proto"
)

// StatusError is a non-2xx response. Callers treat it as recoverable and
// keep their previous snapshot.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}

// Client calls the server's HTTP endpoints.
type Client struct {
	base string
	http *http.Client
	log  *zerolog.Logger
}

// New builds a client for the given base URL.
func New(base string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
		log:  logger,
	}
}

// OnlineUsers fetches the full presence snapshot across all rooms.
func (c *Client) OnlineUsers(ctx context.Context) ([]core.User, error) {
	var body proto.OnlineUsersResponse
	if err := c.get(ctx, "/online-users", &body); err != nil {
		return nil, err
	}
	return body.OnlineUsers, nil
}

// RoomHistory fetches a room's stored messages in append order.
func (c *Client) RoomHistory(ctx context.Context, room string) ([]core.Message, error) {
	var msgs []core.Message
	if err := c.get(ctx, "/rooms/"+url.PathEscape(room), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	u := c.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, URL: u}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}
