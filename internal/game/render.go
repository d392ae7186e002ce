package game

import "github.com/jwebster45206/text-adventure-client/pkg/protocol"

// Render is what a transition asks the CLI to print. Kind is zero for local
// re-renders such as Look.
type Render struct {
	Kind         protocol.Kind
	Lines        []string
	ItemsAdded   []string
	ItemsRemoved []string
}

// Text flattens the render into display lines: the body first, then the
// inventory diff when there is one.
func (r Render) Text() []string {
	out := make([]string, 0, len(r.Lines)+len(r.ItemsAdded)+len(r.ItemsRemoved)+2)
	out = append(out, r.Lines...)
	if len(r.ItemsAdded) > 0 {
		out = append(out, "Items added:")
		for _, item := range r.ItemsAdded {
			out = append(out, "+ "+item)
		}
	}
	if len(r.ItemsRemoved) > 0 {
		out = append(out, "Items removed:")
		for _, item := range r.ItemsRemoved {
			out = append(out, "- "+item)
		}
	}
	return out
}
