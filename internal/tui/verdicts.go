// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/validation"
	"grimm.is/dnsadvisor/internal/verdictlog"
)

// Source supplies verdicts to the browser. *verdictlog.Store implements it.
type Source interface {
	Recent(limit, offset int, search string) ([]verdictlog.Entry, error)
}

type entriesMsg []verdictlog.Entry

// SourceError reports a failed load.
type SourceError struct {
	Err error
}

// Model browses recent verdicts with an optional domain/client filter.
type Model struct {
	Source    Source
	Limit     int
	Query     string
	Entries   []verdictlog.Entry
	Err       error
	Table     table.Model
	Search    textinput.Model
	Searching bool
	Width     int
	Height    int
}

// NewModel returns a browser showing up to limit verdicts matching query.
func NewModel(src Source, limit int, query string) Model {
	columns := []table.Column{
		{Title: "Time", Width: 15},
		{Title: "Client", Width: 16},
		{Title: "Domain", Width: 36},
		{Title: "Type", Width: 6},
		{Title: "Score", Width: 6},
		{Title: "Decision", Width: 10},
		{Title: "Flags", Width: 26},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorDeep).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ColorIce).
		Background(ColorDeep).
		Bold(false)
	t.SetStyles(s)

	in := textinput.New()
	in.Prompt = "search: "
	in.Placeholder = "domain or client"
	in.SetValue(query)

	return Model{
		Source: src,
		Limit:  limit,
		Query:  query,
		Table:  t,
		Search: in,
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	src, limit, query := m.Source, m.Limit, m.Query
	return func() tea.Msg {
		entries, err := src.Recent(limit, 0, query)
		if err != nil {
			return SourceError{Err: err}
		}
		return entriesMsg(entries)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesMsg:
		m.Entries = msg
		m.Err = nil
		m.Table.SetRows(rows(msg))
		m.Table.GotoTop()
		return m, nil

	case SourceError:
		m.Err = msg.Err
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if h := msg.Height - 8; h > 3 {
			m.Table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		if m.Searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.load()
		case "/":
			m.Searching = true
			m.Table.Blur()
			return m, m.Search.Focus()
		}
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.Query = strings.TrimSpace(m.Search.Value())
		m.Searching = false
		m.Search.Blur()
		m.Table.Focus()
		return m, m.load()
	case tea.KeyEsc:
		m.Searching = false
		m.Search.SetValue(m.Query)
		m.Search.Blur()
		m.Table.Focus()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	return m, cmd
}

// Selected returns the highlighted verdict.
func (m Model) Selected() (verdictlog.Entry, bool) {
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.Entries) {
		return verdictlog.Entry{}, false
	}
	return m.Entries[i], true
}

func (m Model) View() string {
	title := "VERDICT LOG"
	if m.Query != "" {
		title += fmt.Sprintf(" (filter: %s)", m.Query)
	}

	parts := []string{StyleHeader.Render(title)}
	if m.Err != nil {
		parts = append(parts, StyleAlert.Render("Error: "+m.Err.Error()))
	}
	parts = append(parts, StyleCard.Render(m.Table.View()))

	if e, ok := m.Selected(); ok {
		parts = append(parts, detail(e))
	}
	if m.Searching {
		parts = append(parts, m.Search.View())
	} else {
		parts = append(parts, StyleSubtitle.Render(
			fmt.Sprintf("%d verdicts  /: search  r: refresh  q: quit", len(m.Entries))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func detail(e verdictlog.Entry) string {
	label := "unlabelled"
	if e.Label != nil {
		label = "label=allow"
		if *e.Label {
			label = "label=block"
		}
	}
	line := fmt.Sprintf("%s from %s at %s  score %.3f  %s  run %s",
		validation.Printable(e.Domain), validation.Printable(e.Client), e.Timestamp.Format("2006-01-02 15:04:05"), e.Score, label, e.RunID)
	if e.Decision == "recommend" {
		return StyleAlert.Render(line)
	}
	return StyleSubtitle.Render(line)
}

func rows(entries []verdictlog.Entry) []table.Row {
	out := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		out = append(out, table.Row{
			e.Timestamp.Format("01-02 15:04:05"),
			validation.Printable(e.Client),
			validation.Printable(e.Domain),
			e.QType,
			fmt.Sprintf("%.2f", e.Score),
			e.Decision,
			strings.Join(e.Flags, ","),
		})
	}
	return out
}

// Browse runs the verdict browser on the terminal until the user quits.
func Browse(src Source, limit int, query string) error {
	if _, err := tea.NewProgram(NewModel(src, limit, query), tea.WithAltScreen()).Run(); err != nil {
		return errors.Wrap(err, errors.KindIO, "run verdict browser")
	}
	return nil
}
