// Package tui provides an interactive query view over the retrieval
// service for one tenant.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driving"
)

const resultCount = 5

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	refStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model is the Bubble Tea model for the interactive query loop.
type Model struct {
	retriever driving.RetrievalService
	tenantID  string

	input    textinput.Model
	viewport viewport.Model
	results  []domain.RetrievedChunk
	cursor   int
	status   string
	ready    bool
}

// New creates a query view for tenantID.
func New(retriever driving.RetrievalService, tenantID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()

	return Model{
		retriever: retriever,
		tenantID:  tenantID,
		input:     ti,
		viewport:  viewport.New(0, 0),
		status:    "Ready.",
	}
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, frame := boxStyle.GetFrameSize()
		height := msg.Height - frame - 6 // header, input box, status, spacers
		if height < 3 {
			height = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = height
		m.viewport.SetContent(m.renderResult())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.runQuery()
		case tea.KeyDown:
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderResult())
			}
			return m, nil
		case tea.KeyUp:
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderResult())
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runQuery() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}

	results, err := m.retriever.Retrieve(context.Background(), m.tenantID, query, resultCount)
	if err != nil {
		m.status = errorStyle.Render("Error: " + err.Error())
		m.results = nil
	} else if len(results) == 0 {
		m.status = statusStyle.Render("No matching chunks.")
		m.results = nil
	} else {
		m.status = statusStyle.Render(fmt.Sprintf("%d chunks for %q", len(results), query))
		m.results = results
		m.cursor = 0
	}
	m.viewport.SetContent(m.renderResult())
	return m, nil
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("kbase / " + m.tenantID)
	return strings.Join([]string{
		header,
		boxStyle.Render(m.viewport.View()),
		boxStyle.Render(m.input.View()),
		m.status,
	}, "\n")
}

func (m Model) renderResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	ref := refStyle.Render(fmt.Sprintf("%s #%d  distance=%.4f  (%d/%d, arrows to browse)",
		r.Ref.DocumentID, r.Ref.Ordinal, r.Distance, m.cursor+1, len(m.results)))
	return ref + "\n\n" + r.Text
}
