package main

import (
	"errors"
	"testing"

	"github.com/jwebster45206/text-adventure-client/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubView struct {
	inventory []string
	screenID  string
	body      []string
}

func (s stubView) Inventory() []string { return s.inventory }
func (s stubView) ScreenID() string     { return s.screenID }
func (s stubView) Look() game.Render    { return game.Render{Lines: s.body} }

func TestCommandSet_Run(t *testing.T) {
	view := stubView{
		inventory: []string{"lamp", "rusty key"},
		screenID:  "0290922a",
		body:      []string{"A clearing."},
	}

	tests := []struct {
		input     string
		wantLines []string
		wantQuit  bool
	}{
		{"/inventory", []string{"Current inventory:", "  lamp", "  rusty key"}, false},
		{"/screen-id", []string{"0290922a"}, false},
		{"/screen", []string{"0290922a"}, false},
		{"/look", []string{"A clearing."}, false},
		{"/whereami", []string{"A clearing."}, false},
		{"/where", []string{"A clearing."}, false},
		{"/repeat", []string{"A clearing."}, false},
		{"/again", []string{"A clearing."}, false},
		{"  /LOOK ", []string{"A clearing."}, false},
		{"/exit", nil, true},
		{"/Quit", nil, true},
	}

	c := newCommandSet(view)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, ok := c.Run(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.wantLines, result.Lines)
			assert.Equal(t, tt.wantQuit, result.Quit)
		})
	}
}

func TestCommandSet_PassesThroughGameCommands(t *testing.T) {
	c := newCommandSet(stubView{})
	for _, input := range []string{"take lamp", "look", "/unknown", "", "inventory"} {
		_, ok := c.Run(input)
		assert.False(t, ok, input)
	}
}

func TestCommandSet_EmptyInventory(t *testing.T) {
	result, ok := newCommandSet(stubView{}).Run("/inventory")
	require.True(t, ok)
	assert.Equal(t, []string{"Current inventory:"}, result.Lines)
}

func TestCommandSet_Help(t *testing.T) {
	c := newCommandSet(stubView{})
	result, ok := c.Run("/?")
	require.True(t, ok)

	help, ok := c.Run("/help")
	require.True(t, ok)
	assert.Equal(t, help, result)

	assert.Equal(t, "List of commands:", result.Lines[0])
	assert.Contains(t, result.Lines, "/screen-id")
	assert.Contains(t, result.Lines, "(alias: /whereami)")
	assert.Contains(t, result.Lines, "    Quit the game")
}

func TestCommandSet_CopyID(t *testing.T) {
	var copied string
	c := newCommandSet(stubView{screenID: "abc"})
	c.copyText = func(s string) error {
		copied = s
		return nil
	}

	result, ok := c.Run("/copy-id")
	require.True(t, ok)
	assert.Equal(t, "abc", copied)
	assert.Equal(t, []string{"Copied abc"}, result.Lines)

	c.copyText = func(string) error { return errors.New("no clipboard") }
	result, _ = c.Run("/copy-id")
	assert.Equal(t, []string{"Could not copy screen id: no clipboard"}, result.Lines)
}
