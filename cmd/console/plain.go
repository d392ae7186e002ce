package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jwebster45206/text-adventure-client/internal/game"
)

// runPlain is the line-oriented client: print the screen, then read
// commands from in until EOF or /exit.
func runPlain(ctx context.Context, g *game.Game, in io.Reader, out io.Writer) error {
	commands := newCommandSet(g)
	printLines(out, g.ScreenBody())

	scanner := bufio.NewScanner(in)
	for {
		if _, err := fmt.Fprint(out, "\n> "); err != nil {
			return err
		}
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if result, ok := commands.Run(input); ok {
			printLines(out, result.Lines)
			if result.Quit {
				return nil
			}
			continue
		}

		render, err := g.IssueCommand(ctx, input)
		if err != nil {
			_, _ = fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		printLines(out, render.Text())
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	_, _ = fmt.Fprintln(out)
	return nil
}

func printLines(out io.Writer, lines []string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(out, line)
	}
}
