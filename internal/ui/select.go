// Package ui implements the interactive picker shown when a query matches
// several entries and stdin is a terminal.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/sahilm/fuzzy"

	"github.com/refsync/refsync/internal/match"
)

var (
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)
	unselectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

// IsInteractive reports whether an interactive prompt can be shown.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// SelectEntry prompts the user to pick one of several matched entries.
// Returns ok=false when the user cancels.
func SelectEntry(title string, entries []match.Entry) (match.Entry, bool, error) {
	m := newSelectModel(title, entries)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return match.Entry{}, false, fmt.Errorf("running picker: %w", err)
	}

	result := final.(selectModel)
	if result.cancelled || result.chosen == nil {
		return match.Entry{}, false, nil
	}
	return *result.chosen, true, nil
}

type selectModel struct {
	title     string
	entries   []match.Entry
	filtered  []match.Entry
	input     textinput.Model
	cursor    int
	chosen    *match.Entry
	cancelled bool
}

func newSelectModel(title string, entries []match.Entry) selectModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Focus()
	ti.CharLimit = 80
	ti.Width = 40
	ti.PromptStyle = cursorStyle

	return selectModel{
		title:    title,
		entries:  entries,
		filtered: entries,
		input:    ti,
	}
}

func (m selectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if len(m.filtered) > 0 && m.cursor < len(m.filtered) {
				m.chosen = &m.filtered[m.cursor]
			}
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	m.filtered = filterEntries(m.entries, m.input.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	return m, cmd
}

func (m selectModel) View() string {
	s := dimStyle.Render(m.title) + "\n" + m.input.View() + "\n\n"

	if len(m.filtered) == 0 {
		return s + dimStyle.Render("  no matches") + "\n"
	}

	for i, e := range m.filtered {
		line := e.Name
		if e.TargetPath != "" {
			line += dimStyle.Render("  " + e.TargetPath)
		}
		if i == m.cursor {
			s += selectedStyle.Render("> "+line) + "\n"
		} else {
			s += unselectedStyle.Render("  "+line) + "\n"
		}
	}
	return s + "\n" + dimStyle.Render("enter: select  esc: cancel") + "\n"
}

func filterEntries(entries []match.Entry, query string) []match.Entry {
	if query == "" {
		return entries
	}

	haystack := make([]string, len(entries))
	for i, e := range entries {
		haystack[i] = e.Name + " " + e.TargetPath
	}

	var out []match.Entry
	for _, hit := range fuzzy.Find(query, haystack) {
		out = append(out, entries[hit.Index])
	}
	return out
}
