package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config holds UI configuration options
type Config struct {
	EnableSpinner  bool
	EnableMarkdown bool
}

// DefaultConfig returns the default UI configuration
func DefaultConfig() *Config {
	return &Config{
		EnableSpinner:  true,
		EnableMarkdown: true,
	}
}

// Renderer handles all UI output formatting
type Renderer struct {
	config *Config
}

// NewRenderer creates a new renderer with default config
func NewRenderer() *Renderer {
	return &Renderer{
		config: DefaultConfig(),
	}
}

// NewRendererWithConfig creates a renderer with custom config
func NewRendererWithConfig(config *Config) *Renderer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Renderer{
		config: config,
	}
}

// Spinner returns a spinner, or a silent one when spinners are disabled
func (r *Renderer) Spinner() *Spinner {
	s := NewSpinner()
	if !r.config.EnableSpinner {
		s.silent = true
	}
	return s
}

// Markdown renders markdown when enabled and returns it unchanged otherwise
func (r *Renderer) Markdown(content string) string {
	if !r.config.EnableMarkdown {
		return content
	}
	return RenderMarkdown(content)
}

// WelcomeMessage returns the styled welcome banner
func (r *Renderer) WelcomeMessage() string {
	var sb strings.Builder

	title := TitleStyle.Render(IconRocket + " Pattern Launcher")
	subtitle := Subtle.Render("deploy patterns and link charms")

	sb.WriteString(fmt.Sprintf("%s - %s\n", title, subtitle))
	sb.WriteString(Subtle.Render("Type to filter menus, q or Ctrl+C to quit"))
	sb.WriteString("\n")

	return sb.String()
}

// TargetMessage describes where the session deploys to
func (r *Renderer) TargetMessage(target, endpoint, space string) string {
	var sb strings.Builder
	sb.WriteString(SessionStyle.Render(fmt.Sprintf("%s %s (%s)", IconSpace, target, endpoint)))
	if space != "" {
		sb.WriteString(SessionStyle.Render(fmt.Sprintf("  space: %s", space)))
	}
	sb.WriteString("\n")
	return sb.String()
}

// DeployingMessage is shown while a pattern is being deployed
func (r *Renderer) DeployingMessage(path, space string) string {
	return fmt.Sprintf("Deploying %s to %s", filepath.Base(path), space)
}

// DeployedMessage reports a deploy that produced an artifact id
func (r *Renderer) DeployedMessage(id, url string) string {
	var sb strings.Builder
	sb.WriteString(StatusDone.Render(fmt.Sprintf("%s Deployed charm %s", IconSuccess, id)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %s %s\n", IconArrow, LinkStyle.Render(url)))
	return sb.String()
}

// DeployedWithoutIDMessage reports a successful deploy whose id could not be
// recovered from the command output
func (r *Renderer) DeployedWithoutIDMessage(spaceURL string) string {
	var sb strings.Builder
	sb.WriteString(StatusDone.Render(IconSuccess + " Deployed"))
	sb.WriteString(Subtle.Render(" (could not read the charm id from the output)"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %s %s\n", IconArrow, LinkStyle.Render(spaceURL)))
	return sb.String()
}

// CommandOutput formats captured subprocess output for display
func (r *Renderer) CommandOutput(output string) string {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return ""
	}
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return StatusPlain.Render(strings.Join(lines, "\n")) + "\n"
}

// LinkedMessage reports a successful link
func (r *Renderer) LinkedMessage(source, target string) string {
	return StatusDone.Render(fmt.Sprintf("%s Linked %s %s %s", IconLink, source, IconArrow, target))
}

// PatternLabel formats a recent pattern for a menu
func (r *Renderer) PatternLabel(name, dir string, lastUsed time.Time) string {
	return fmt.Sprintf("%s  %s", name, Subtle.Render(fmt.Sprintf("%s, %s", dir, FormatTimeAgo(lastUsed))))
}

// PromptString returns the styled prompt
func (r *Renderer) PromptString() string {
	return PromptStyle.Render(IconPointer) + " "
}

// ErrorMessage formats an error message
func (r *Renderer) ErrorMessage(err error) string {
	return StatusError.Render(fmt.Sprintf("%s Error: %v", IconError, err))
}

// WarningMessage formats a warning message
func (r *Renderer) WarningMessage(msg string) string {
	return WarningStyle.Render(fmt.Sprintf("%s %s", IconWarning, msg))
}

// InfoMessage formats an info message
func (r *Renderer) InfoMessage(msg string) string {
	return SessionStyle.Render(fmt.Sprintf("%s %s", IconInfo, msg))
}

// HintMessage formats an actionable suggestion
func (r *Renderer) HintMessage(msg string) string {
	return WarningStyle.Render(fmt.Sprintf("%s %s", IconTip, msg))
}

// SuccessMessage formats a success message
func (r *Renderer) SuccessMessage(msg string) string {
	return SuccessStyle.Render(fmt.Sprintf("%s %s", IconSuccess, msg))
}

// FormatTimeAgo renders t relative to now, e.g. "5m ago"
func FormatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
