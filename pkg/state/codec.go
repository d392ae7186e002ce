package state

import (
	"fmt"

	"github.com/jwebster45206/text-adventure-client/pkg/lzstring"
)

// DecodeError reports a state token that could not be turned back into a
// GameState. Retrying with the previous token is always safe.
type DecodeError struct {
	Token  string
	Reason string // "decompress" or "parse"
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode state token: %s: %v", e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode serializes gs into a URI-safe state token.
func Encode(gs GameState) string {
	return lzstring.CompressToEncodedURIComponent(string(canonicalJSON(gs)))
}

// Decode parses a state token produced by Encode or by the game server.
func Decode(token string) (GameState, error) {
	text, err := lzstring.DecompressFromEncodedURIComponent(token)
	if err != nil {
		return GameState{}, &DecodeError{Token: token, Reason: "decompress", Err: err}
	}

	gs, err := parseJSON([]byte(text))
	if err != nil {
		return GameState{}, &DecodeError{Token: token, Reason: "parse", Err: err}
	}
	return gs, nil
}
