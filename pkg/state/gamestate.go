package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Field is a top-level state field the client does not interpret. It is
// kept verbatim (compacted) so the server gets it back unchanged.
type Field struct {
	Key string
	Raw json.RawMessage
}

// GameState is the client-held game state that travels with every command.
// The server owns its meaning; the client only reads Inventory.
type GameState struct {
	Inventory []string
	Extra     []Field // unknown fields, in the order the server sent them
}

func New() GameState {
	return GameState{Inventory: make([]string, 0)}
}

// Lookup returns the raw value of an uninterpreted field.
func (gs GameState) Lookup(key string) (json.RawMessage, bool) {
	for _, f := range gs.Extra {
		if f.Key == key {
			return f.Raw, true
		}
	}
	return nil, false
}

// WithField returns a copy of gs with key set to raw, replacing an existing
// field in place or appending a new one.
func (gs GameState) WithField(key string, raw json.RawMessage) GameState {
	out := gs.Clone()
	for i := range out.Extra {
		if out.Extra[i].Key == key {
			out.Extra[i].Raw = raw
			return out
		}
	}
	out.Extra = append(out.Extra, Field{Key: key, Raw: raw})
	return out
}

func (gs GameState) Clone() GameState {
	out := GameState{
		Inventory: append(make([]string, 0, len(gs.Inventory)), gs.Inventory...),
	}
	for _, f := range gs.Extra {
		out.Extra = append(out.Extra, Field{Key: f.Key, Raw: slices.Clone(f.Raw)})
	}
	return out
}

// Equal reports whether a and b serialize identically. A nil inventory
// equals an empty one.
func Equal(a, b GameState) bool {
	return bytes.Equal(canonicalJSON(a), canonicalJSON(b))
}

func (gs GameState) MarshalJSON() ([]byte, error) {
	return canonicalJSON(gs), nil
}

func (gs *GameState) UnmarshalJSON(data []byte) error {
	parsed, err := parseJSON(data)
	if err != nil {
		return err
	}
	*gs = parsed
	return nil
}

// canonicalJSON writes inventory first, then the extra fields, with no
// whitespace and the same string escaping as JSON.stringify.
func canonicalJSON(gs GameState) []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, `{"inventory":[`...)
	for i, item := range gs.Inventory {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendString(buf, item)
	}
	buf = append(buf, ']')

	for _, f := range gs.Extra {
		buf = append(buf, ',')
		buf = appendString(buf, f.Key)
		buf = append(buf, ':')
		if len(f.Raw) == 0 {
			buf = append(buf, "null"...)
			continue
		}
		buf = append(buf, f.Raw...)
	}
	return append(buf, '}')
}

const hexDigits = "0123456789abcdef"

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if r < 0x20 {
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[r>>4], hexDigits[r&0xf])
				continue
			}
			buf = utf8.AppendRune(buf, r)
		}
	}
	return append(buf, '"')
}

func parseJSON(data []byte) (GameState, error) {
	if !gjson.ValidBytes(data) {
		return GameState{}, errors.New("state is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return GameState{}, fmt.Errorf("state is a JSON %s, not an object", describe(doc))
	}

	var (
		gs           GameState
		hasInventory bool
		parseErr     error
	)
	doc.ForEach(func(key, value gjson.Result) bool {
		if key.Str == "inventory" {
			items, err := stringArray(value)
			if err != nil {
				parseErr = fmt.Errorf("inventory: %w", err)
				return false
			}
			gs.Inventory = items
			hasInventory = true
			return true
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, []byte(value.Raw)); err != nil {
			parseErr = fmt.Errorf("field %q: %w", key.Str, err)
			return false
		}
		gs.Extra = append(gs.Extra, Field{Key: key.Str, Raw: compact.Bytes()})
		return true
	})
	if parseErr != nil {
		return GameState{}, parseErr
	}
	if !hasInventory {
		return GameState{}, errors.New("state has no inventory field")
	}
	return gs, nil
}

func stringArray(value gjson.Result) ([]string, error) {
	if !value.IsArray() {
		return nil, fmt.Errorf("expected array, got %s", describe(value))
	}
	elems := value.Array()
	items := make([]string, 0, len(elems))
	for i, elem := range elems {
		if elem.Type != gjson.String {
			return nil, fmt.Errorf("item %d is a %s, not a string", i, describe(elem))
		}
		items = append(items, elem.Str)
	}
	return items, nil
}

func describe(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	case r.IsBool():
		return "boolean"
	case r.Type == gjson.Number:
		return "number"
	case r.Type == gjson.String:
		return "string"
	default:
		return "null"
	}
}
