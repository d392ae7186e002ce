package protocol

import (
	"fmt"

	"github.com/tidwall/gjson"
)

type Kind int

const (
	KindMessage Kind = iota + 1
	KindNavigation
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindNavigation:
		return "navigation"
	case KindFailure:
		return "failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the classified result of a command. It is one of
// MessageOutcome, NavigationOutcome or FailureOutcome.
type Outcome interface {
	Kind() Kind
	outcome()
}

// CommandResult holds the fields shared by successful outcomes.
type CommandResult struct {
	Success      bool     `json:"success"`
	Action       string   `json:"type,omitempty"`
	State        string   `json:"state"`
	ItemsAdded   []string `json:"itemsAdded"`
	ItemsRemoved []string `json:"itemsRemoved"`
}

// MessageOutcome prints lines without leaving the current screen.
type MessageOutcome struct {
	CommandResult
	Message []string `json:"printMessage"`
}

// NavigationOutcome moves the player to a new screen.
type NavigationOutcome struct {
	CommandResult
	Screen Screen `json:"screen"`
}

// FailureOutcome is the server refusing a command. Nothing changes.
type FailureOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (MessageOutcome) Kind() Kind    { return KindMessage }
func (NavigationOutcome) Kind() Kind { return KindNavigation }
func (FailureOutcome) Kind() Kind    { return KindFailure }

func (MessageOutcome) outcome()    {}
func (NavigationOutcome) outcome() {}
func (FailureOutcome) outcome()    {}

// ProtocolError means a response fits none of the outcome shapes, which
// points at a schema mismatch with the server.
type ProtocolError struct {
	Reason string
	Body   []byte
}

func (e *ProtocolError) Error() string {
	return "protocol violation: " + e.Reason
}

type matcher func(doc gjson.Result) (Outcome, bool)

// Tried in order; the first full match wins. A response carrying both
// printMessage and screen is therefore a navigation.
var matchers = []matcher{
	matchMessage,
	matchNavigation,
	matchFailure,
}

// Classify decides which outcome a raw command response represents.
func Classify(raw []byte) (Outcome, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &ProtocolError{Reason: "response is not valid JSON", Body: raw}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, &ProtocolError{Reason: "response is not a JSON object", Body: raw}
	}

	for _, match := range matchers {
		if o, ok := match(doc); ok {
			return o, nil
		}
	}
	return nil, &ProtocolError{Reason: "response matches no outcome shape", Body: raw}
}

func matchMessage(doc gjson.Result) (Outcome, bool) {
	if present(doc.Get("screen")) {
		return nil, false
	}
	lines, ok := stringList(doc.Get("printMessage"))
	if !ok {
		return nil, false
	}
	result, ok := matchResult(doc)
	if !ok {
		return nil, false
	}
	return MessageOutcome{CommandResult: result, Message: lines}, true
}

func matchNavigation(doc gjson.Result) (Outcome, bool) {
	screen, err := screenFrom(doc.Get("screen"))
	if err != nil {
		return nil, false
	}
	result, ok := matchResult(doc)
	if !ok {
		return nil, false
	}
	return NavigationOutcome{CommandResult: result, Screen: screen}, true
}

func matchFailure(doc gjson.Result) (Outcome, bool) {
	success := doc.Get("success")
	message := doc.Get("message")
	if !success.IsBool() || message.Type != gjson.String {
		return nil, false
	}
	return FailureOutcome{Success: success.Bool(), Message: message.Str}, true
}

func matchResult(doc gjson.Result) (CommandResult, bool) {
	success := doc.Get("success")
	state := doc.Get("state")
	action := doc.Get("type")
	if !success.IsBool() || state.Type != gjson.String {
		return CommandResult{}, false
	}
	if present(action) && action.Type != gjson.String {
		return CommandResult{}, false
	}
	added, ok := stringList(doc.Get("itemsAdded"))
	if !ok {
		return CommandResult{}, false
	}
	removed, ok := stringList(doc.Get("itemsRemoved"))
	if !ok {
		return CommandResult{}, false
	}
	return CommandResult{
		Success:      success.Bool(),
		Action:       action.Str,
		State:        state.Str,
		ItemsAdded:   added,
		ItemsRemoved: removed,
	}, true
}

// present treats an explicit null like a missing field.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}
