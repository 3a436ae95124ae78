package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

type nopSocket struct{}

func (nopSocket) ID() string { return "conn-1" }
func (nopSocket) SendLogin(_ context.Context, _, _, _ string) error {
	return nil
}
func (nopSocket) SendMessage(_ context.Context, _ core.Message, _ string) error {
	return nil
}

type nopAPI struct{}

func (nopAPI) OnlineUsers(_ context.Context) ([]core.User, error) { return nil, nil }
func (nopAPI) RoomHistory(_ context.Context, _ string) ([]core.Message, error) {
	return nil, nil
}

func newConsole(t *testing.T) (*Console, *core.Engine, *bytes.Buffer) {
	t.Helper()

	logger := zerolog.Nop()
	eng := core.NewEngine(nopAPI{}, nil, &logger, core.Options{})
	eng.BindSocket(nopSocket{})

	out := &bytes.Buffer{}
	c := New(eng, &logger)
	c.out = out
	return c, eng, out
}

func TestHandleRejectsIntentsBeforeConnect(t *testing.T) {
	c, _, out := newConsole(t)

	c.handle(context.Background(), "/login alice")
	if !strings.Contains(out.String(), "login rejected") {
		t.Fatalf("expected rejection notice, got %q", out.String())
	}

	out.Reset()
	c.handle(context.Background(), "hello world")
	if !strings.Contains(out.String(), "message rejected") {
		t.Fatalf("expected rejection notice, got %q", out.String())
	}
}

func TestHandleQuit(t *testing.T) {
	c, _, _ := newConsole(t)

	if !c.handle(context.Background(), "/quit") {
		t.Fatal("expected quit")
	}
	if c.handle(context.Background(), "") {
		t.Fatal("blank line must not quit")
	}
}

func TestRenderPrintsOnlyNewEntries(t *testing.T) {
	c, eng, out := newConsole(t)
	eng.HandleConnect("conn-1")

	eng.HandleMessage(core.Message{Text: "one", Sender: "bob", ID: "b"})
	c.render()
	eng.HandleMessage(core.Message{Text: "two", Sender: "bob", ID: "b"})
	c.render()

	rendered := out.String()
	if strings.Count(rendered, "one") != 1 || strings.Count(rendered, "two") != 1 {
		t.Fatalf("entries repeated or missing:\n%s", rendered)
	}
	if strings.Index(rendered, "one") > strings.Index(rendered, "two") {
		t.Fatalf("entries out of order:\n%s", rendered)
	}
}

func TestRenderReprintsAfterHistoryReplace(t *testing.T) {
	c, eng, out := newConsole(t)
	eng.HandleConnect("conn-1")

	eng.HandleMessage(core.Message{Text: "one", Sender: "bob", ID: "b"})
	eng.HandleMessage(core.Message{Text: "two", Sender: "bob", ID: "b"})
	c.render()

	// A room toggle wipes the history; the console starts over.
	if err := eng.ToggleRoom(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	out.Reset()
	c.render()
	if !strings.Contains(out.String(), "--- red ---") {
		t.Fatalf("expected room separator after replace, got %q", out.String())
	}
}
