package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/conversation"
	"github.com/ragline-dev/ragline/internal/tui"
)

// Focus identifies which dashboard pane receives keyboard input.
type Focus int

const (
	FocusWallet Focus = iota
	FocusDocuments
	FocusChat
)

// DashboardData is the read-only state the dashboard renders. The app
// rebuilds it from the core components after every refresh; the view
// itself never talks to the network.
type DashboardData struct {
	Username     string
	Balance      string
	HasSnapshot  bool
	Transactions []api.Transaction
	Documents    []api.Document
	SelectedID   int64
	SelectedName string
	Messages     []conversation.Message
	Querying     bool
	ErrMsg       string
	SuccessMsg   string
}

// DashboardModel is the view model for the main dashboard screen.
type DashboardModel struct {
	data DashboardData

	focus      Focus
	uploadMode bool
	cursor     int

	amountInput   textinput.Model
	pathInput     textinput.Model
	questionInput textinput.Model
	chatView      viewport.Model
	spinner       spinner.Model

	lastMsgCount int
	width        int
	height       int
}

// NewDashboardModel creates the dashboard view.
func NewDashboardModel(width, height int) DashboardModel {
	amount := textinput.New()
	amount.Placeholder = "amount, e.g. 10.00"
	amount.CharLimit = 12

	path := textinput.New()
	path.Placeholder = "path to PDF file"
	path.CharLimit = 512

	question := textinput.New()
	question.Placeholder = "Ask a question..."
	question.CharLimit = 1000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	vp := viewport.New(width-8, chatHeight(height))

	m := DashboardModel{
		amountInput:   amount,
		pathInput:     path,
		questionInput: question,
		chatView:      vp,
		spinner:       sp,
		width:         width,
		height:        height,
	}
	m.applyFocus()
	return m
}

func chatHeight(height int) int {
	h := height - 24
	if h < 5 {
		h = 5
	}
	return h
}

// SetSize updates the terminal dimensions.
func (m *DashboardModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.chatView.Width = width - 8
	m.chatView.Height = chatHeight(height)
}

// SetData replaces the rendered state after a refresh or query event.
func (m *DashboardModel) SetData(data DashboardData) {
	m.data = data
	if m.cursor >= len(data.Documents) {
		m.cursor = 0
	}
	m.chatView.SetContent(formatConversation(data.Messages, data.Querying, m.spinner.View()))
	if len(data.Messages) != m.lastMsgCount {
		m.lastMsgCount = len(data.Messages)
		m.chatView.GotoBottom()
	}
}

// Reset restores the initial pane state, typically after logout.
func (m *DashboardModel) Reset() {
	m.focus = FocusWallet
	m.uploadMode = false
	m.cursor = 0
	m.lastMsgCount = 0
	m.amountInput.SetValue("")
	m.pathInput.SetValue("")
	m.questionInput.SetValue("")
	m.applyFocus()
}

// Spin returns the command that keeps the in-flight spinner animated.
func (m DashboardModel) Spin() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the dashboard view.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.data.Querying {
			m.chatView.SetContent(formatConversation(m.data.Messages, true, m.spinner.View()))
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	key := msg.String()

	switch key {
	case tui.KeyCtrlL:
		return m, func() tea.Msg { return tui.LogoutMsg{} }

	case tui.KeyTab:
		m.uploadMode = false
		m.focus = m.nextFocus()
		m.applyFocus()
		return m, nil
	}

	switch m.focus {
	case FocusWallet:
		if key == tui.KeyEnter {
			amount := strings.TrimSpace(m.amountInput.Value())
			if amount == "" {
				return m, nil
			}
			m.amountInput.SetValue("")
			return m, func() tea.Msg { return tui.TopUpSubmitMsg{Amount: amount} }
		}

	case FocusDocuments:
		if m.uploadMode {
			switch key {
			case tui.KeyEnter:
				path := strings.TrimSpace(m.pathInput.Value())
				if path == "" {
					return m, nil
				}
				m.pathInput.SetValue("")
				m.uploadMode = false
				m.applyFocus()
				return m, func() tea.Msg { return tui.UploadSubmitMsg{Path: path} }
			case tui.KeyEsc:
				m.uploadMode = false
				m.applyFocus()
				return m, nil
			}
			break
		}

		switch key {
		case tui.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tui.KeyDown:
			if m.cursor < len(m.data.Documents)-1 {
				m.cursor++
			}
			return m, nil
		case tui.KeyEnter:
			if m.cursor < len(m.data.Documents) {
				id := m.data.Documents[m.cursor].ID
				return m, func() tea.Msg { return tui.SelectDocumentMsg{ID: id} }
			}
			return m, nil
		case "u":
			m.uploadMode = true
			m.applyFocus()
			return m, nil
		}

	case FocusChat:
		switch key {
		case tui.KeyEnter:
			if m.data.Querying {
				// One job in flight at a time.
				return m, nil
			}
			question := strings.TrimSpace(m.questionInput.Value())
			if question == "" {
				return m, nil
			}
			m.questionInput.SetValue("")
			return m, func() tea.Msg { return tui.AskSubmitMsg{Question: question} }
		case tui.KeyUp, tui.KeyDown:
			var cmd tea.Cmd
			m.chatView, cmd = m.chatView.Update(msg)
			return m, cmd
		}
	}

	return m.updateInputs(msg)
}

func (m DashboardModel) updateInputs(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)
	cmds = append(cmds, cmd)
	m.pathInput, cmd = m.pathInput.Update(msg)
	cmds = append(cmds, cmd)
	m.questionInput, cmd = m.questionInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m DashboardModel) nextFocus() Focus {
	switch m.focus {
	case FocusWallet:
		return FocusDocuments
	case FocusDocuments:
		if m.data.SelectedID != 0 {
			return FocusChat
		}
		return FocusWallet
	default:
		return FocusWallet
	}
}

func (m *DashboardModel) applyFocus() {
	m.amountInput.Blur()
	m.pathInput.Blur()
	m.questionInput.Blur()
	switch {
	case m.focus == FocusWallet:
		m.amountInput.Focus()
	case m.focus == FocusDocuments && m.uploadMode:
		m.pathInput.Focus()
	case m.focus == FocusChat:
		m.questionInput.Focus()
	}
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	halfWidth := m.width/2 - 4

	wallet := m.renderWallet(halfWidth)
	history := m.renderTransactions(halfWidth)
	docs := m.renderDocuments(m.width - 6)

	sections := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, wallet, history),
		docs,
	}
	if m.data.SelectedID != 0 {
		sections = append(sections, m.renderChat(m.width-6))
	}
	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) paneStyle(focused bool) lipgloss.Style {
	if focused {
		return tui.FocusedBoxStyle
	}
	return tui.BoxStyle
}

func (m DashboardModel) renderWallet(width int) string {
	var b strings.Builder
	balance := "—"
	if m.data.HasSnapshot {
		balance = "$" + m.data.Balance
	}
	b.WriteString(tui.TitleStyle.Render("Balance: " + balance))
	b.WriteString("\n\n")
	b.WriteString("Top up\n")
	b.WriteString(m.amountInput.View())

	if m.data.ErrMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(tui.ErrorStyle.Render(m.data.ErrMsg))
	}
	if m.data.SuccessMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(tui.SuccessStyle.Render(m.data.SuccessMsg))
	}

	return m.paneStyle(m.focus == FocusWallet).Width(width).Render(b.String())
}

func (m DashboardModel) renderTransactions(width int) string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Recent transactions"))
	b.WriteString("\n\n")

	if len(m.data.Transactions) == 0 {
		b.WriteString(tui.DimStyle.Render("No transactions yet"))
	}
	for _, tx := range m.data.Transactions {
		amount := "$" + tx.Amount.Abs().StringFixed(2)
		if tx.Type == api.TransactionTopUp {
			amount = tui.SuccessStyle.Render("+" + amount)
		} else {
			amount = tui.ErrorStyle.Render("-" + amount)
		}
		b.WriteString(fmt.Sprintf("%s  %s\n", amount, tx.Description))
	}

	return m.paneStyle(false).Width(width).Render(b.String())
}

func (m DashboardModel) renderDocuments(width int) string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Documents"))
	b.WriteString("\n\n")

	if len(m.data.Documents) == 0 {
		b.WriteString(tui.DimStyle.Render("No documents uploaded"))
		b.WriteString("\n")
	}
	for i, doc := range m.data.Documents {
		line := fmt.Sprintf("%s %s  %s", statusIcon(doc.Status), doc.Filename,
			tui.DimStyle.Render(fmt.Sprintf("%d pages · %.1f MB · %s", doc.PageCount, doc.FileSizeMB, doc.Status)))
		switch {
		case doc.ID == m.data.SelectedID:
			line = tui.SelectedStyle.Render("▶ ") + line
		case m.focus == FocusDocuments && !m.uploadMode && i == m.cursor:
			line = "> " + line
		default:
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.uploadMode {
		b.WriteString("Upload\n")
		b.WriteString(m.pathInput.View())
	} else {
		b.WriteString(tui.DimStyle.Render("enter: select ready document · u: upload PDF"))
	}

	return m.paneStyle(m.focus == FocusDocuments).Width(width).Render(b.String())
}

func (m DashboardModel) renderChat(width int) string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Chat: " + m.data.SelectedName))
	b.WriteString("\n\n")
	b.WriteString(m.chatView.View())
	b.WriteString("\n\n")
	b.WriteString(m.questionInput.View())

	return m.paneStyle(m.focus == FocusChat).Width(width).Render(b.String())
}

func (m DashboardModel) renderStatusBar() string {
	left := m.data.Username
	right := "tab: switch pane · ctrl+l: logout · ctrl+c ctrl+c: quit"
	return tui.StatusBarStyle.Width(m.width).Render(left + "  ·  " + right)
}

// formatConversation renders the message log for the chat viewport.
func formatConversation(msgs []conversation.Message, querying bool, spinnerView string) string {
	var b strings.Builder
	if len(msgs) == 0 && !querying {
		b.WriteString("Ask a question about this document")
	}
	for _, msg := range msgs {
		if msg.Role == conversation.RoleUser {
			b.WriteString(tui.UserMsgStyle.Render("You: "))
			b.WriteString(msg.Content)
		} else {
			b.WriteString(tui.AssistantMsgStyle.Render("Assistant: " + msg.Content))
			if msg.Billed {
				b.WriteString("\n")
				b.WriteString(tui.DimStyle.Render(
					fmt.Sprintf("  cost $%s · %d tokens", msg.Cost.StringFixed(4), msg.Tokens)))
			}
		}
		b.WriteString("\n\n")
	}
	if querying {
		b.WriteString(spinnerView)
		b.WriteString(tui.DimStyle.Render(" waiting for answer..."))
	}
	return b.String()
}

func statusIcon(status api.DocumentStatus) string {
	switch status {
	case api.DocumentReady:
		return tui.DocReady
	case api.DocumentProcessing:
		return tui.DocProcessing
	case api.DocumentFailed:
		return tui.DocFailed
	default:
		return tui.DocUploaded
	}
}
