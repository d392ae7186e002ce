// Package game drives a single play session: it fetches the start screen,
// submits commands and applies the classified outcomes.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/text-adventure-client/pkg/protocol"
)

var ErrNotStarted = errors.New("game has not been started")

// Transport is the network side of a game. *client.Client satisfies it.
type Transport interface {
	FetchScreen(ctx context.Context, id string) (protocol.Screen, error)
	SubmitCommand(ctx context.Context, req protocol.CommandRequest) ([]byte, error)
}

// Game owns the session. It is not safe for concurrent use; callers issue
// one command at a time.
type Game struct {
	transport Transport
	startID   string
	logger    *slog.Logger

	session Session
	started bool
}

func New(transport Transport, startID string, logger *slog.Logger) *Game {
	return &Game{
		transport: transport,
		startID:   startID,
		logger:    logger,
	}
}

// Start fetches the start screen and resets the session onto it.
func (g *Game) Start(ctx context.Context) (protocol.Screen, error) {
	screen, err := g.transport.FetchScreen(ctx, g.startID)
	if err != nil {
		return protocol.Screen{}, fmt.Errorf("failed to load start screen %s: %w", g.startID, err)
	}

	g.session = NewSession(screen)
	g.started = true
	g.logger.Info("Game started", "screen_id", screen.ID)
	return screen.Clone(), nil
}

// IssueCommand submits text and applies the result. On any error the
// session is left exactly as it was, so the same command can be retried.
func (g *Game) IssueCommand(ctx context.Context, text string) (Render, error) {
	if !g.started {
		return Render{}, ErrNotStarted
	}

	req := g.session.Request(strings.TrimSpace(text))
	log := g.logger.With("screen_id", req.ContextScreenID, "command", req.Command)

	raw, err := g.transport.SubmitCommand(ctx, req)
	if err != nil {
		return Render{}, fmt.Errorf("failed to submit command: %w", err)
	}

	outcome, err := protocol.Classify(raw)
	if err != nil {
		log.Error("Unclassifiable command response", "error", err, "body", string(raw))
		return Render{}, err
	}

	if f, ok := outcome.(protocol.FailureOutcome); ok && f.Success {
		log.Warn("Failure response reported success", "message", f.Message)
	}

	next, render, err := Apply(g.session, outcome)
	if err != nil {
		log.Error("Rejected state token", "kind", outcome.Kind().String(), "error", err)
		return Render{}, err
	}

	if next.Screen.ID != g.session.Screen.ID {
		log.Debug("Moved to new screen", "to", next.Screen.ID)
	}
	g.session = next
	log.Debug("Command applied", "kind", outcome.Kind().String())
	return render, nil
}

// Look re-renders the current screen without touching the session.
func (g *Game) Look() Render {
	return Render{Lines: append([]string(nil), g.session.Screen.Body...)}
}

func (g *Game) Inventory() []string {
	return append([]string(nil), g.session.State.Inventory...)
}

func (g *Game) ScreenID() string {
	return g.session.Screen.ID
}

func (g *Game) ScreenBody() []string {
	return append([]string(nil), g.session.Screen.Body...)
}

// Session returns a copy of the current session.
func (g *Game) Session() Session {
	return g.session.Clone()
}

func (g *Game) Started() bool {
	return g.started
}
