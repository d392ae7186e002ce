// Package protocol holds the wire types exchanged with the text-adventure
// server and the classifier that turns a command response into an Outcome.
package protocol

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Screen is a server-defined narrative unit. GET /screen/{id} returns one.
type Screen struct {
	ID   string   `json:"id"`
	Body []string `json:"body"`
}

func (s Screen) Clone() Screen {
	return Screen{ID: s.ID, Body: append([]string(nil), s.Body...)}
}

// CommandRequest is the body of POST /command.
type CommandRequest struct {
	ContextScreenID string `json:"contextScreenId"` // screen the player is on
	Command         string `json:"command"`
	State           string `json:"state"` // encoded state token, sent verbatim
}

// ErrorResponse is the body the server uses for transport-level errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ParseScreen decodes a screen document, requiring a string id and a body of
// strings.
func ParseScreen(raw []byte) (Screen, error) {
	if !gjson.ValidBytes(raw) {
		return Screen{}, errors.New("screen is not valid JSON")
	}
	return screenFrom(gjson.ParseBytes(raw))
}

func screenFrom(doc gjson.Result) (Screen, error) {
	if !doc.IsObject() {
		return Screen{}, errors.New("screen is not a JSON object")
	}
	id := doc.Get("id")
	if id.Type != gjson.String {
		return Screen{}, errors.New("screen id is missing or not a string")
	}
	body, ok := stringList(doc.Get("body"))
	if !ok {
		return Screen{}, fmt.Errorf("screen %q body is missing or not a list of strings", id.Str)
	}
	return Screen{ID: id.Str, Body: body}, nil
}

func stringList(r gjson.Result) ([]string, bool) {
	if !r.IsArray() {
		return nil, false
	}
	elems := r.Array()
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e.Type != gjson.String {
			return nil, false
		}
		out = append(out, e.Str)
	}
	return out, true
}
