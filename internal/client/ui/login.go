package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stark-server/preventis-desktop/internal/client/session"
)

// LoginModel is the Bubble Tea model for the email/password form.
type LoginModel struct {
	session *session.Manager

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
	done       bool
	aborted    bool
}

type loginResultMsg struct {
	err error
}

// NewLogin creates the login form.
func NewLogin(sess *session.Manager) LoginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return LoginModel{
		session: sess,
		inputs:  []textinput.Model{email, password},
	}
}

// Init implements tea.Model
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.submitting {
			// Ignore input while the request is in flight, except abort.
			if msg.String() == "ctrl+c" {
				m.aborted = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit

		case "tab", "shift+tab", "up", "down":
			if msg.String() == "shift+tab" || msg.String() == "up" {
				m.focus--
			} else {
				m.focus++
			}
			if m.focus < 0 {
				m.focus = len(m.inputs) - 1
			}
			if m.focus >= len(m.inputs) {
				m.focus = 0
			}
			cmds := make([]tea.Cmd, 0, len(m.inputs))
			for i := range m.inputs {
				if i == m.focus {
					cmds = append(cmds, m.inputs[i].Focus())
				} else {
					m.inputs[i].Blur()
				}
			}
			return m, tea.Batch(cmds...)

		case "enter":
			if m.focus < len(m.inputs)-1 {
				m.inputs[m.focus].Blur()
				m.focus++
				return m, m.inputs[m.focus].Focus()
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m LoginModel) submit() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[1].Value()
	if email == "" || password == "" {
		m.errMsg = "email and password are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	sess := m.session
	return m, func() tea.Msg {
		return loginResultMsg{err: sess.Login(context.Background(), email, password)}
	}
}

// View implements tea.Model
func (m LoginModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Preventis - sign in"))
	b.WriteString("\n\n")

	labels := []string{"Email   ", "Password"}
	for i, input := range m.inputs {
		label := UnselectedStyle.Render(labels[i])
		if i == m.focus {
			label = SelectedStyle.Render(labels[i])
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, input.View()))
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(HelpStyle.Render("Signing in..."))
	} else if m.errMsg != "" {
		b.WriteString(ErrorStyle.Render(m.errMsg))
	} else {
		b.WriteString(HelpStyle.Render("Tab switch field • Enter submit • Esc cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

// Authenticated reports whether login completed successfully.
func (m LoginModel) Authenticated() bool {
	return m.done && !m.aborted
}

// Aborted reports whether the user cancelled the form.
func (m LoginModel) Aborted() bool {
	return m.aborted
}

// Login runs the login form and reports whether a session was established.
func Login(sess *session.Manager) (bool, error) {
	m := NewLogin(sess)
	p := tea.NewProgram(m)

	result, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("failed to run login form: %w", err)
	}

	finalModel := result.(LoginModel)
	return finalModel.Authenticated(), nil
}
