package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docent-labs/docent/internal/core/domain"
)

// entry is one question-and-answer exchange in the transcript.
type entry struct {
	question string
	answer   domain.Answer
	err      error
}

// answerMsg carries the outcome of an asynchronous answer call back
// into the update loop.
type answerMsg struct {
	question string
	answer   domain.Answer
	err      error
}

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// input is the question entry field.
	input textinput.Model

	// viewport scrolls the conversation transcript.
	viewport viewport.Model

	// transcript holds past exchanges, oldest first.
	transcript []entry

	// waiting is true while an answer is in flight.
	waiting bool

	// status is the footer line.
	status string

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// NewApp creates a new chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Ready. Type a question to begin.",
	}, nil
}

// WithContext sets the context used for answer calls.
func (a *App) WithContext(ctx context.Context) {
	if ctx != nil {
		a.ctx = ctx
	}
}

// Init initialises the model (text input cursor blink).
func (a *App) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.ready = true
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.viewport.SetContent(a.renderTranscript())
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			return a, a.submit()
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return a, cmd
		}

	case answerMsg:
		a.waiting = false
		a.transcript = append(a.transcript, entry{
			question: msg.question,
			answer:   msg.answer,
			err:      msg.err,
		})
		if msg.err != nil {
			a.status = "Error: " + msg.err.Error()
		} else {
			a.status = fmt.Sprintf("Answered from %d sources.", len(msg.answer.Citations))
		}
		a.viewport.SetContent(a.renderTranscript())
		a.viewport.GotoBottom()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit starts an asynchronous answer call for the current input.
func (a *App) submit() tea.Cmd {
	if a.waiting {
		return nil
	}

	question := strings.TrimSpace(a.input.Value())
	if question == "" {
		return nil
	}

	a.input.Reset()
	a.waiting = true
	a.status = "Thinking..."

	ctx := a.ctx
	answerer := a.ports.Answer
	return func() tea.Msg {
		answer, err := answerer.Answer(ctx, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// View renders the chat layout.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := headerStyle.Render("Docent")
	transcript := transcriptBoxStyle.Render(a.viewport.View())
	input := inputBoxStyle.Render(a.input.View())

	status := statusStyle.Render(a.status)
	if strings.HasPrefix(a.status, "Error:") {
		status = errorStyle.Render(a.status)
	}

	return header + "\n" + transcript + "\n" + input + "\n" + status
}

// resize recomputes the viewport dimensions from the window size.
func (a *App) resize() {
	_, th := transcriptBoxStyle.GetFrameSize()
	_, ih := inputBoxStyle.GetFrameSize()

	// header + status + input line + frames
	reserved := 2 + ih + 1 + th
	vh := a.height - reserved
	if vh < 3 {
		vh = 3
	}

	vw := a.width - 4
	if vw < 20 {
		vw = 20
	}

	a.viewport.Width = vw
	a.viewport.Height = vh
}

// renderTranscript renders all exchanges, oldest first.
func (a *App) renderTranscript() string {
	if len(a.transcript) == 0 {
		return citationStyle.Render("No questions asked yet.")
	}

	var b strings.Builder
	for i, e := range a.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + e.question))
		b.WriteString("\n")

		if e.err != nil {
			b.WriteString(errorStyle.Render("Error: " + e.err.Error()))
			continue
		}

		b.WriteString(answerStyle.Render(e.answer.Text))
		for j, c := range e.answer.Citations {
			b.WriteString("\n")
			b.WriteString(citationStyle.Render(
				fmt.Sprintf("  [%d] %s, p%d (%.2f)", j+1, c.Title, c.Page, c.Score)))
		}
	}
	return b.String()
}
