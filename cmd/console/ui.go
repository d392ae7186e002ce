package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/text-adventure-client/internal/game"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "What do you do?"

type entryKind int

const (
	entryScreen entryKind = iota
	entryCommand
	entryResult
	entryInfo
	entryError
)

// entry is one block of transcript text. Entries are re-wrapped whenever
// the window is resized.
type entry struct {
	kind  entryKind
	lines []string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx      context.Context
	game     *game.Game
	commands *commandSet
	timeout  time.Duration

	// meta is read from the game only while no command is in flight.
	meta sessionMeta

	transcript   []entry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type commandResponseMsg struct {
	render game.Render
	err    error
	meta   *sessionMeta // nil keeps the current panel
}

// sessionMeta is what the side panel shows about the session.
type sessionMeta struct {
	screenID  string
	inventory []string
}

func snapshotMeta(g *game.Game) sessionMeta {
	return sessionMeta{screenID: g.ScreenID(), inventory: g.Inventory()}
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")) // light grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(ctx context.Context, g *game.Game, timeout time.Duration) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render("> ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		ctx:          ctx,
		game:         g,
		meta:         snapshotMeta(g),
		commands:     newCommandSet(g),
		timeout:      timeout,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		transcript:   []entry{{kind: entryScreen, lines: g.ScreenBody()}},
	}
}

func writeMetadata(meta sessionMeta) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	id := meta.screenID
	if len(id) > 8 {
		id = id[:8] + "..."
	}
	content.WriteString("Screen:\n")
	content.WriteString(id + "\n\n")

	content.WriteString("Inventory:\n")
	if len(meta.inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, item := range meta.inventory {
		content.WriteString(fmt.Sprintf("• %s\n", item))
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /look: Look again\n")

	return content.String()
}

func formatEntry(e entry, width int) string {
	switch e.kind {
	case entryCommand:
		return userStyle.Render("> ") + wordwrap.String(strings.Join(e.lines, " "), width-2)
	case entryError:
		return errorStyle.Render(wordwrap.String("Error: "+strings.Join(e.lines, " "), width))
	}

	wrapped := make([]string, 0, len(e.lines))
	for _, line := range e.lines {
		wrapped = append(wrapped, wordwrap.String(line, width))
	}
	text := strings.Join(wrapped, "\n")
	switch e.kind {
	case entryScreen:
		return narratorStyle.Render(text)
	case entryInfo:
		return infoStyle.Render(text)
	default:
		return text
	}
}

// writeChatContent rebuilds the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("TEXT ADVENTURE") + "\n\n")
	content.WriteString("Type a command below. /help lists the client commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, e := range m.transcript {
		content.WriteString(formatEntry(e, chatWidth) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) appendEntry(kind entryKind, lines ...string) {
	m.transcript = append(m.transcript, entry{kind: kind, lines: lines})
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.meta))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}

			if result, ok := m.commands.Run(input); ok {
				if result.Quit {
					return m, tea.Quit
				}
				m.appendEntry(entryInfo, result.Lines...)
				m.writeChatContent()
				return m, nil
			}

			m.appendEntry(entryCommand, input)
			m.loading = true
			m.progressTick = 0
			m.writeChatContent()
			return m, tea.Batch(m.issueCommand(input), progressTick())
		}

	case commandResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.appendEntry(entryError, msg.err.Error())
		} else {
			m.appendEntry(entryResult, msg.render.Text()...)
		}
		if msg.meta != nil {
			m.meta = *msg.meta
		}
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.meta))
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// issueCommand runs the command off the UI loop. Enter is ignored while it
// is in flight, so the game sees one command at a time. Update must not read
// the game until the response arrives; the panel snapshot is taken here.
func (m ConsoleUI) issueCommand(input string) tea.Cmd {
	g := m.game
	parent, timeout := m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		render, err := g.IssueCommand(ctx, input)
		meta := snapshotMeta(g)
		return commandResponseMsg{render: render, err: err, meta: &meta}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case commandResponseMsg:
		// Let a command that finished behind the modal land in the transcript.
		m.showQuitModal = false
		next, cmd := m.Update(msg)
		model := next.(ConsoleUI)
		model.showQuitModal = true
		return model, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
