package tui

import "github.com/charmbracelet/lipgloss"

// Color constants for the dashboard.
const (
	primaryColor   = "#7C3AED" // Purple
	secondaryColor = "#10B981" // Green
	warningColor   = "#F59E0B" // Amber
	errorColor     = "#EF4444" // Red
	dimColor       = "#6B7280" // Gray
)

// Style variables for consistent TUI rendering.
var (
	// BoxStyle provides a rounded border box with primary color.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Padding(1, 2)

	// FocusedBoxStyle marks the pane that receives keyboard input.
	FocusedBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(secondaryColor)).
			Padding(1, 2)

	// TitleStyle renders titles in primary color with bold.
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// SelectedStyle highlights selected items in primary color.
	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// DimStyle renders dim/muted text.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(dimColor))

	// SuccessStyle renders success messages and credits in green.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(secondaryColor))

	// ErrorStyle renders error messages and charges in red.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(errorColor))

	// WarningStyle renders warnings in amber.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(warningColor))

	// StatusBarStyle provides styling for the status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(lipgloss.Color("#9CA3AF")).
			Padding(0, 1)

	// UserMsgStyle renders the user's side of the conversation.
	UserMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// AssistantMsgStyle renders the assistant's side of the conversation.
	AssistantMsgStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#E5E7EB"))
)

// Document status icons (pre-rendered strings).
var (
	// DocReady indicates a document that can be chatted with.
	DocReady = SuccessStyle.Render("✓")

	// DocProcessing indicates a document still being ingested.
	DocProcessing = WarningStyle.Render("⟳")

	// DocUploaded indicates a document waiting for the pipeline.
	DocUploaded = DimStyle.Render("○")

	// DocFailed indicates ingestion failed.
	DocFailed = ErrorStyle.Render("✗")
)
