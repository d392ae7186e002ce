// Package devserver is a small stand-in for the text-adventure API. It
// serves a fixed two-screen world so the client can be run and tested
// without the real server.
package devserver

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/jwebster45206/text-adventure-client/pkg/protocol"
	"github.com/jwebster45206/text-adventure-client/pkg/state"
)

const (
	CaveScreenID = "c4e1d2a8-6f0b-4c5e-9a77-3b2f10e8d5c1"
	lamp         = "lamp"
)

var ErrUnknownScreen = errors.New("unknown screen")

// World holds the screen graph. It is read-only after NewWorld, so one
// World can serve concurrent requests.
type World struct {
	startID string
	screens map[string]protocol.Screen
	exits   map[string]map[string]string // screen -> direction -> screen
}

// NewWorld builds the clearing and cave screens, with the clearing under
// startID.
func NewWorld(startID string) *World {
	return &World{
		startID: startID,
		screens: map[string]protocol.Screen{
			startID: {ID: startID, Body: []string{
				"You are standing in a small clearing.",
				"Something glints in the long grass.",
				"A dark path leads north.",
			}},
			CaveScreenID: {ID: CaveScreenID, Body: []string{
				"You are in a cave.",
				"Daylight shows the way back south.",
			}},
		},
		exits: map[string]map[string]string{
			startID:      {"north": CaveScreenID},
			CaveScreenID: {"south": startID},
		},
	}
}

func (w *World) StartID() string {
	return w.startID
}

func (w *World) Screen(id string) (protocol.Screen, bool) {
	s, ok := w.screens[id]
	return s.Clone(), ok
}

func (w *World) ScreenCount() int {
	return len(w.screens)
}

var directions = map[string]string{
	"n": "north", "north": "north",
	"s": "south", "south": "south",
	"e": "east", "east": "east",
	"w": "west", "west": "west",
}

// Handle plays command on screenID with gs and returns the outcome the API
// would send. Every successful command bumps a "turns" counter in the
// state, a field the client carries but never reads.
func (w *World) Handle(screenID, command string, gs state.GameState) (protocol.Outcome, error) {
	screen, ok := w.screens[screenID]
	if !ok {
		return nil, ErrUnknownScreen
	}

	words := strings.Fields(strings.ToLower(command))
	if len(words) == 0 {
		return failure("Say something."), nil
	}
	verb, object := words[0], strings.Join(words[1:], " ")

	switch verb {
	case "look", "l":
		return w.message(gs, screen.Body, nil, nil), nil

	case "take", "get":
		if object != lamp || screenID != w.startID {
			return failure("You don't see that here."), nil
		}
		if slices.Contains(gs.Inventory, lamp) {
			return failure("You already have the lamp."), nil
		}
		gs = gs.Clone()
		gs.Inventory = append(gs.Inventory, lamp)
		return w.message(gs, []string{"You pick up the lamp."}, []string{lamp}, nil), nil

	case "drop":
		i := slices.Index(gs.Inventory, object)
		if object == "" || i < 0 {
			return failure("You don't have that."), nil
		}
		gs = gs.Clone()
		gs.Inventory = slices.Delete(gs.Inventory, i, i+1)
		return w.message(gs, []string{"Dropped."}, nil, []string{object}), nil

	case "fly":
		return failure("You can't fly."), nil

	case "go", "walk":
		return w.move(screenID, directions[object], gs), nil
	}

	if dir, ok := directions[verb]; ok && object == "" {
		return w.move(screenID, dir, gs), nil
	}
	return failure("I don't understand that."), nil
}

func (w *World) move(from, dir string, gs state.GameState) protocol.Outcome {
	to, ok := w.exits[from][dir]
	if !ok {
		return failure("You can't go that way.")
	}
	return protocol.NavigationOutcome{
		CommandResult: result(tick(gs), "NAVIGATE", nil, nil),
		Screen:        w.screens[to].Clone(),
	}
}

func (w *World) message(gs state.GameState, lines, added, removed []string) protocol.Outcome {
	return protocol.MessageOutcome{
		CommandResult: result(tick(gs), "PRINT_MESSAGE", added, removed),
		Message:       lines,
	}
}

func result(gs state.GameState, action string, added, removed []string) protocol.CommandResult {
	if added == nil {
		added = []string{}
	}
	if removed == nil {
		removed = []string{}
	}
	return protocol.CommandResult{
		Success:      true,
		Action:       action,
		State:        state.Encode(gs),
		ItemsAdded:   added,
		ItemsRemoved: removed,
	}
}

func failure(msg string) protocol.Outcome {
	return protocol.FailureOutcome{Success: false, Message: msg}
}

func tick(gs state.GameState) state.GameState {
	turns := 0
	if raw, ok := gs.Lookup("turns"); ok {
		if n, err := strconv.Atoi(string(raw)); err == nil {
			turns = n
		}
	}
	return gs.WithField("turns", []byte(strconv.Itoa(turns+1)))
}
