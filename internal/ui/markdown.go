package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWordWrap = 100

var markdownRenderer *glamour.TermRenderer

func init() {
	initMarkdownRenderer()
}

// initMarkdownRenderer initializes the Glamour markdown renderer
func initMarkdownRenderer() {
	width := defaultWordWrap
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 && w < width {
		width = w
	}
	SetWordWrap(width)
}

// RenderMarkdown renders markdown content for the terminal
func RenderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}

	// Trim extra whitespace that glamour sometimes adds
	return strings.TrimSpace(rendered)
}

// SetWordWrap reinitializes the renderer with a new word wrap width
func SetWordWrap(width int) {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		// Fallback: RenderMarkdown returns plain text
		markdownRenderer = nil
	}
}
