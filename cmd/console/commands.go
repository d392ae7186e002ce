package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/jwebster45206/text-adventure-client/internal/game"
	"golang.org/x/text/cases"
)

// sessionView is the part of *game.Game that slash commands read.
type sessionView interface {
	Inventory() []string
	ScreenID() string
	Look() game.Render
}

type commandResult struct {
	Lines []string
	Quit  bool
}

type slashCommand struct {
	names []string
	help  []string
	run   func(c *commandSet) commandResult
}

// commandSet resolves local slash commands. Input that is not one of them
// goes to the server as a game command, unknown slash commands included.
type commandSet struct {
	view     sessionView
	copyText func(string) error
	fold     cases.Caser
	commands []slashCommand
	index    map[string]int
}

func newCommandSet(view sessionView) *commandSet {
	c := &commandSet{
		view:     view,
		copyText: clipboard.WriteAll,
		fold:     cases.Fold(),
		index:    make(map[string]int),
	}
	c.commands = []slashCommand{
		{
			names: []string{"/inventory"},
			help:  []string{"List your inventory"},
			run:   (*commandSet).inventory,
		},
		{
			names: []string{"/screen-id", "/screen"},
			help:  []string{"Print the current screen's", "id (useful when creating a", "new screen)"},
			run: func(c *commandSet) commandResult {
				return commandResult{Lines: []string{c.view.ScreenID()}}
			},
		},
		{
			names: []string{"/copy-id"},
			help:  []string{"Copy the current screen's", "id to the clipboard"},
			run:   (*commandSet).copyID,
		},
		{
			names: []string{"/look", "/whereami", "/where", "/repeat", "/again"},
			help:  []string{"Print the current screen", "again"},
			run: func(c *commandSet) commandResult {
				return commandResult{Lines: c.view.Look().Text()}
			},
		},
		{
			names: []string{"/help", "/?"},
			help:  []string{"Print this help message"},
			run: func(c *commandSet) commandResult {
				return commandResult{Lines: c.helpText()}
			},
		},
		{
			names: []string{"/exit", "/quit"},
			help:  []string{"Quit the game"},
			run: func(*commandSet) commandResult {
				return commandResult{Quit: true}
			},
		},
	}
	for i, cmd := range c.commands {
		for _, name := range cmd.names {
			c.index[name] = i
		}
	}
	return c
}

// Run executes input if it names a slash command. ok is false for anything
// that should be submitted to the server instead.
func (c *commandSet) Run(input string) (commandResult, bool) {
	key := c.fold.String(strings.TrimSpace(input))
	i, ok := c.index[key]
	if !ok {
		return commandResult{}, false
	}
	return c.commands[i].run(c), true
}

func (c *commandSet) inventory() commandResult {
	lines := []string{"Current inventory:"}
	for _, item := range c.view.Inventory() {
		lines = append(lines, "  "+item)
	}
	return commandResult{Lines: lines}
}

func (c *commandSet) copyID() commandResult {
	id := c.view.ScreenID()
	if err := c.copyText(id); err != nil {
		return commandResult{Lines: []string{fmt.Sprintf("Could not copy screen id: %v", err)}}
	}
	return commandResult{Lines: []string{"Copied " + id}}
}

func (c *commandSet) helpText() []string {
	lines := []string{"List of commands:"}
	for i, cmd := range c.commands {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, cmd.names[0])
		for _, alias := range cmd.names[1:] {
			lines = append(lines, "(alias: "+alias+")")
		}
		for _, h := range cmd.help {
			lines = append(lines, "    "+h)
		}
	}
	return lines
}
