package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectOption is one row of a selection menu. Value carries the id the
// caller acts on, so labels stay free-form.
type SelectOption struct {
	Label       string
	Description string
	Value       string
}

type SelectModel struct {
	title    string
	options  []SelectOption
	cursor   int
	selected int
	quitting bool
	aborted  bool
}

func NewSelect(title string, options []SelectOption) SelectModel {
	return SelectModel{title: title, options: options, selected: -1}
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.aborted = true
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.cursor
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SelectModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(CursorStyle.Render("▸ "))
			b.WriteString(SelectedStyle.Render(opt.Label))
		} else {
			b.WriteString("  ")
			b.WriteString(UnselectedStyle.Render(opt.Label))
		}
		if opt.Description != "" {
			b.WriteString("\n    ")
			b.WriteString(HelpStyle.Render(opt.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ navigate • Enter select • Esc cancel"))
	return b.String()
}

// Selected returns the chosen index, -1 when cancelled.
func (m SelectModel) Selected() int {
	if m.aborted {
		return -1
	}
	return m.selected
}

func (m SelectModel) Aborted() bool {
	return m.aborted
}

// Select runs the menu and returns the chosen index, -1 when cancelled.
func Select(title string, options []SelectOption) (int, error) {
	result, err := tea.NewProgram(NewSelect(title, options)).Run()
	if err != nil {
		return -1, fmt.Errorf("failed to run select: %w", err)
	}
	return result.(SelectModel).Selected(), nil
}
