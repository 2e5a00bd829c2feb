// Package views provides TUI view components for the ragline application.
package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ragline-dev/ragline/internal/tui"
)

// Auth form field indices.
const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
)

// AuthModel is the view model for the login/register screen.
type AuthModel struct {
	username textinput.Model
	email    textinput.Model
	password textinput.Model

	registerMode bool
	focus        int
	loading      bool
	errMsg       string

	width  int
	height int
}

// NewAuthModel creates the auth form in login mode.
func NewAuthModel(width, height int) AuthModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 50
	username.Focus()

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 100

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return AuthModel{
		username: username,
		email:    email,
		password: password,
		width:    width,
		height:   height,
	}
}

// SetSize updates the terminal dimensions.
func (m *AuthModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetError surfaces an auth failure inline on the form.
func (m *AuthModel) SetError(msg string) {
	m.errMsg = msg
	m.loading = false
}

// SetLoading toggles the submitting state.
func (m *AuthModel) SetLoading(loading bool) {
	m.loading = loading
}

// Reset clears the form, typically after logout.
func (m *AuthModel) Reset() {
	m.username.SetValue("")
	m.email.SetValue("")
	m.password.SetValue("")
	m.errMsg = ""
	m.loading = false
	m.focusField(fieldUsername)
}

// Update handles messages for the auth view.
func (m AuthModel) Update(msg tea.Msg) (AuthModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m.updateInputs(msg)
	}

	switch keyMsg.String() {
	case tui.KeyTab:
		m.focusField(m.nextField())
		return m, nil

	case tui.KeyEsc:
		// Toggle between login and register.
		m.registerMode = !m.registerMode
		m.errMsg = ""
		m.focusField(fieldUsername)
		return m, nil

	case tui.KeyEnter:
		username := strings.TrimSpace(m.username.Value())
		password := m.password.Value()
		if username == "" || password == "" {
			m.errMsg = "username and password are required"
			return m, nil
		}
		if m.registerMode && strings.TrimSpace(m.email.Value()) == "" {
			m.errMsg = "email is required"
			return m, nil
		}

		m.errMsg = ""
		m.loading = true
		submit := tui.AuthSubmitMsg{
			Register: m.registerMode,
			Username: username,
			Email:    strings.TrimSpace(m.email.Value()),
			Password: password,
		}
		return m, func() tea.Msg { return submit }
	}

	return m.updateInputs(msg)
}

func (m AuthModel) updateInputs(msg tea.Msg) (AuthModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	cmds = append(cmds, cmd)
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// nextField returns the next focusable field, skipping email in login mode.
func (m AuthModel) nextField() int {
	switch m.focus {
	case fieldUsername:
		if m.registerMode {
			return fieldEmail
		}
		return fieldPassword
	case fieldEmail:
		return fieldPassword
	default:
		return fieldUsername
	}
}

func (m *AuthModel) focusField(field int) {
	m.focus = field
	m.username.Blur()
	m.email.Blur()
	m.password.Blur()
	switch field {
	case fieldUsername:
		m.username.Focus()
	case fieldEmail:
		m.email.Focus()
	case fieldPassword:
		m.password.Focus()
	}
}

// View renders the auth form centered on screen.
func (m AuthModel) View() string {
	var b strings.Builder

	title := "Sign in"
	hint := "esc: switch to register"
	if m.registerMode {
		title = "Create account"
		hint = "esc: switch to sign in"
	}

	b.WriteString(tui.TitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString("Username\n")
	b.WriteString(m.username.View())
	b.WriteString("\n\n")
	if m.registerMode {
		b.WriteString("Email\n")
		b.WriteString(m.email.View())
		b.WriteString("\n\n")
	}
	b.WriteString("Password\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(tui.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	}
	if m.loading {
		b.WriteString(tui.DimStyle.Render("Signing in..."))
	} else {
		b.WriteString(tui.DimStyle.Render("enter: submit · tab: next field · " + hint))
	}

	box := tui.BoxStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
