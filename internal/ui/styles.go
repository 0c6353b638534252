package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary = lipgloss.Color("#7C3AED") // Purple
	Success = lipgloss.Color("#10B981") // Green
	Error   = lipgloss.Color("#EF4444") // Red
	Warning = lipgloss.Color("#F59E0B") // Amber
	Muted   = lipgloss.Color("#6B7280") // Gray
	Info    = lipgloss.Color("#3B82F6") // Blue
)

// Text styles
var (
	Bold   = lipgloss.NewStyle().Bold(true)
	Italic = lipgloss.NewStyle().Italic(true)
	Subtle = lipgloss.NewStyle().Foreground(Muted)
)

// Status line styles
var (
	StatusPlain = lipgloss.NewStyle().Foreground(Muted)
	StatusDone  = lipgloss.NewStyle().Foreground(Success)
	StatusError = lipgloss.NewStyle().Foreground(Error)
	StatusInfo  = lipgloss.NewStyle().Foreground(Info)
)

// UI element styles
var (
	// Prompt style
	PromptStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// Title style for banners and menu headers
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary)

	// Highlighted menu row
	SelectedStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)

	// Space / endpoint info style
	SessionStyle = lipgloss.NewStyle().Foreground(Info)

	// Warning style
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)

	// Success style
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)

	// URL style
	LinkStyle = lipgloss.NewStyle().Foreground(Info).Underline(true)
)

// Icon constants
const (
	IconSuccess  = "✓"
	IconError    = "✗"
	IconArrow    = "→"
	IconWarning  = "⚠"
	IconInfo     = "ℹ"
	IconFolder   = "📁"
	IconFile     = "📄"
	IconUp       = "⬆"
	IconKeyboard = "⌨"
	IconTip      = "💡"
	IconStar     = "🌟"
	IconRocket   = "🚀"
	IconLink     = "🔗"
	IconSpace    = "🪐"
	IconPointer  = "❯"
)
