package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScreen(t *testing.T) {
	s, err := ParseScreen([]byte(`{"id":"0290922a","body":["A clearing.","Paths lead north."],"extra":1}`))
	require.NoError(t, err)
	assert.Equal(t, Screen{ID: "0290922a", Body: []string{"A clearing.", "Paths lead north."}}, s)

	s, err = ParseScreen([]byte(`{"id":"empty","body":[]}`))
	require.NoError(t, err)
	assert.Empty(t, s.Body)
}

func TestParseScreen_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"not json":      `<html>`,
		"array":         `[]`,
		"missing id":    `{"body":[]}`,
		"numeric id":    `{"id":1,"body":[]}`,
		"missing body":  `{"id":"a"}`,
		"body string":   `{"id":"a","body":"text"}`,
		"body numbers":  `{"id":"a","body":[1]}`,
		"error payload": `{"error":"not found"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScreen([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestCommandRequest_WireNames(t *testing.T) {
	raw, err := json.Marshal(CommandRequest{ContextScreenID: "abc", Command: "take lamp", State: "N4Ig"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"contextScreenId":"abc","command":"take lamp","state":"N4Ig"}`, string(raw))
}

func TestScreen_Clone(t *testing.T) {
	s := Screen{ID: "a", Body: []string{"one"}}
	c := s.Clone()
	c.Body[0] = "changed"
	assert.Equal(t, "one", s.Body[0])
}
