// Package console is the thin interactive front end. It only reads
// snapshots and submits intents; all synchronization logic lives in core.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

// Console renders the session on stdout and turns stdin lines into intents.
type Console struct {
	engine *core.Engine
	log    *zerolog.Logger
	in     io.Reader
	out    io.Writer

	rendered   int // history entries already printed
	lastNotice string
}

// New builds a console over stdin/stdout.
func New(engine *core.Engine, logger *zerolog.Logger) *Console {
	return &Console{
		engine: engine,
		log:    logger,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// Run blocks until the context ends, stdin closes, or the user quits.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Commands: /login <username>, /room, /users, /quit. Anything else is sent as a message.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.engine.Updates():
			c.render()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) bool {
	text := strings.TrimSpace(line)
	if text == "" {
		return false
	}

	switch {
	case text == "/quit":
		return true
	case strings.HasPrefix(text, "/login"):
		username := strings.TrimSpace(strings.TrimPrefix(text, "/login"))
		if username == "" {
			fmt.Fprintln(c.out, "usage: /login <username>")
			return false
		}
		if err := c.engine.SubmitLogin(ctx, username); err != nil {
			fmt.Fprintf(c.out, "login rejected: %v\n", err)
		}
	case text == "/room":
		if err := c.engine.ToggleRoom(); err != nil {
			fmt.Fprintf(c.out, "room toggle rejected: %v\n", err)
		} else {
			fmt.Fprintf(c.out, "active room: %s\n", c.engine.Snapshot().ActiveRoom)
		}
	case text == "/users":
		snap := c.engine.Snapshot()
		if len(snap.OnlineUsers) == 0 {
			fmt.Fprintln(c.out, "No users yet!")
			return false
		}
		for _, u := range snap.OnlineUsers {
			fmt.Fprintf(c.out, "  %s\n", u.Username)
		}
	default:
		if err := c.engine.SendMessage(ctx, text); err != nil {
			fmt.Fprintf(c.out, "message rejected: %v\n", err)
		}
	}
	return false
}

// render prints whatever changed since the last call: new history entries,
// or the full history again after a wholesale replace shrank it.
func (c *Console) render() {
	snap := c.engine.Snapshot()

	if len(snap.History) < c.rendered {
		fmt.Fprintf(c.out, "--- %s ---\n", snap.ActiveRoom)
		c.rendered = 0
	}
	for _, msg := range snap.History[c.rendered:] {
		ts := time.UnixMilli(msg.Timestamp).Format("15:04:05")
		fmt.Fprintf(c.out, "%s | %s  %s\n", msg.Sender, msg.Text, ts)
	}
	c.rendered = len(snap.History)

	if snap.Notice != "" && snap.Notice != c.lastNotice {
		fmt.Fprintf(c.out, "! %s\n", snap.Notice)
	}
	c.lastNotice = snap.Notice
}
