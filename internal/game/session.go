package game

import (
	"fmt"

	"github.com/jwebster45206/text-adventure-client/pkg/protocol"
	"github.com/jwebster45206/text-adventure-client/pkg/state"
)

// Session is the client's whole view of a game: where the player is and
// the state the server last handed back. Token is that state exactly as the
// server encoded it and is what the next command sends.
type Session struct {
	Screen protocol.Screen
	State  state.GameState
	Token  string
}

// NewSession starts on screen with an empty inventory.
func NewSession(screen protocol.Screen) Session {
	gs := state.New()
	return Session{
		Screen: screen.Clone(),
		State:  gs,
		Token:  state.Encode(gs),
	}
}

// Clone returns a copy sharing no slices with s.
func (s Session) Clone() Session {
	return Session{Screen: s.Screen.Clone(), State: s.State.Clone(), Token: s.Token}
}

// Request builds the command request for text from the current screen and
// token.
func (s Session) Request(text string) protocol.CommandRequest {
	return protocol.CommandRequest{
		ContextScreenID: s.Screen.ID,
		Command:         text,
		State:           s.Token,
	}
}

// Apply returns the session that follows o, and what to print. If the
// outcome's state token does not decode, s is returned as it was together
// with the *state.DecodeError.
func Apply(s Session, o protocol.Outcome) (Session, Render, error) {
	switch o := o.(type) {
	case protocol.MessageOutcome:
		gs, err := state.Decode(o.State)
		if err != nil {
			return s, Render{}, err
		}
		next := Session{Screen: s.Screen.Clone(), State: gs, Token: o.State}
		return next, resultRender(o.Kind(), o.Message, o.CommandResult), nil

	case protocol.NavigationOutcome:
		gs, err := state.Decode(o.State)
		if err != nil {
			return s, Render{}, err
		}
		next := Session{Screen: o.Screen.Clone(), State: gs, Token: o.State}
		return next, resultRender(o.Kind(), o.Screen.Body, o.CommandResult), nil

	case protocol.FailureOutcome:
		return s, Render{Kind: o.Kind(), Lines: []string{o.Message}}, nil

	default:
		return s, Render{}, fmt.Errorf("unsupported outcome %T", o)
	}
}

func resultRender(kind protocol.Kind, lines []string, r protocol.CommandResult) Render {
	return Render{
		Kind:         kind,
		Lines:        append([]string(nil), lines...),
		ItemsAdded:   append([]string(nil), r.ItemsAdded...),
		ItemsRemoved: append([]string(nil), r.ItemsRemoved...),
	}
}
