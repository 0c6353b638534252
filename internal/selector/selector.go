// Package selector provides the filterable single-choice menu used by every
// interactive prompt of the launcher.
//
// Keys:
//
//	printable  append to the filter (q/Q quits while the filter is empty)
//	up/down    move the highlight, wrapping at both ends
//	backspace  drop the last filter character
//	esc        clear the filter
//	enter      choose the highlighted item
//	ctrl+c     restore the terminal and exit the process
package selector

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patternlab/ctlaunch/internal/ui"
)

// ErrAborted is returned when the user quits or chooses nothing
var ErrAborted = errors.New("selection aborted")

// InterruptExitCode is the process exit status after ctrl+c
const InterruptExitCode = ui.InterruptExitCode

const defaultVisible = 15

// exit terminates the process after an interrupt
var exit = os.Exit

// Item is one menu entry
type Item[T any] struct {
	Label string
	Icon  string
	Value T
}

// Model is the bubbletea model behind Run
type Model[T any] struct {
	title       string
	items       []Item[T]
	filter      []rune
	filtered    []int
	cursor      int
	offset      int
	visible     int
	chosen      int
	done        bool
	interrupted bool
}

// New creates a selector model over items
func New[T any](title string, items []Item[T]) Model[T] {
	m := Model[T]{
		title:   title,
		items:   items,
		visible: defaultVisible,
		chosen:  -1,
	}
	m.applyFilter()
	return m
}

// Run shows the menu and blocks until the user chooses. It returns
// ErrAborted when the user quits or confirms an empty list. Ctrl+C and an
// interrupt signal both end the process with InterruptExitCode.
func Run[T any](title string, items []Item[T]) (T, error) {
	final, err := tea.NewProgram(New(title, items)).Run()
	return result[T](final, err)
}

// result maps the end state of a program run to Run's return values
func result[T any](final tea.Model, err error) (T, error) {
	var zero T

	if errors.Is(err, tea.ErrInterrupted) {
		exit(InterruptExitCode)
		return zero, ErrAborted
	}
	if err != nil {
		return zero, fmt.Errorf("selector: %w", err)
	}

	m, ok := final.(Model[T])
	if !ok {
		return zero, fmt.Errorf("selector: unexpected model %T", final)
	}
	if m.interrupted {
		// The program has already restored the terminal.
		exit(InterruptExitCode)
		return zero, ErrAborted
	}
	if value, ok := m.Selected(); ok {
		return value, nil
	}
	return zero, ErrAborted
}

// Init implements tea.Model
func (m Model[T]) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.visible = min(defaultVisible, max(msg.Height-4, 3))
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.interrupted = true
		m.done = true
		return m, tea.Quit

	case tea.KeyEnter:
		if len(m.filtered) > 0 {
			m.chosen = m.filtered[m.cursor]
		}
		m.done = true
		return m, tea.Quit

	case tea.KeyUp:
		if n := len(m.filtered); n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
			m.scroll()
		}

	case tea.KeyDown:
		if n := len(m.filtered); n > 0 {
			m.cursor = (m.cursor + 1) % n
			m.scroll()
		}

	case tea.KeyBackspace:
		if len(m.filter) > 0 {
			m.filter = appendRunes(m.filter[:len(m.filter)-1])
			m.applyFilter()
		}

	case tea.KeyEsc:
		if len(m.filter) > 0 {
			m.filter = nil
			m.applyFilter()
		}

	case tea.KeySpace:
		m.filter = appendRunes(m.filter, ' ')
		m.applyFilter()

	case tea.KeyRunes:
		if len(m.filter) == 0 && len(msg.Runes) == 1 && (msg.Runes[0] == 'q' || msg.Runes[0] == 'Q') {
			m.done = true
			return m, tea.Quit
		}
		m.filter = appendRunes(m.filter, msg.Runes...)
		m.applyFilter()
	}
	return m, nil
}

// appendRunes never writes into a backing array shared with earlier models
func appendRunes(filter []rune, r ...rune) []rune {
	out := make([]rune, 0, len(filter)+len(r))
	out = append(out, filter...)
	return append(out, r...)
}

func (m *Model[T]) applyFilter() {
	needle := strings.ToLower(string(m.filter))
	m.filtered = make([]int, 0, len(m.items))
	for i, item := range m.items {
		if needle == "" || strings.Contains(strings.ToLower(item.Label), needle) {
			m.filtered = append(m.filtered, i)
		}
	}
	m.cursor = 0
	m.offset = 0
}

// scroll keeps the cursor inside the visible window
func (m *Model[T]) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.visible {
		m.offset = m.cursor - m.visible + 1
	}
}

// View implements tea.Model
func (m Model[T]) View() string {
	if m.done {
		return ""
	}

	var sb strings.Builder
	if m.title != "" {
		sb.WriteString(ui.TitleStyle.Render(m.title))
		sb.WriteString("\n")
	}

	if len(m.filter) > 0 {
		sb.WriteString(ui.PromptStyle.Render("Filter: "))
		sb.WriteString(string(m.filter))
		sb.WriteString(ui.Subtle.Render(fmt.Sprintf("  (%d/%d)", len(m.filtered), len(m.items))))
	} else {
		sb.WriteString(ui.Subtle.Render("Type to filter, ↑/↓ to move, Enter to select, q to quit"))
	}
	sb.WriteString("\n")

	if len(m.filtered) == 0 {
		sb.WriteString(ui.WarningStyle.Render("  No matches"))
		sb.WriteString("\n")
		return sb.String()
	}

	end := min(m.offset+m.visible, len(m.filtered))
	if m.offset > 0 {
		sb.WriteString(ui.Subtle.Render("  ↑ more"))
		sb.WriteString("\n")
	}
	for pos := m.offset; pos < end; pos++ {
		item := m.items[m.filtered[pos]]
		label := item.Label
		if item.Icon != "" {
			label = item.Icon + " " + label
		}
		if pos == m.cursor {
			sb.WriteString(ui.SelectedStyle.Render(ui.IconPointer + " " + label))
		} else {
			sb.WriteString("  " + label)
		}
		sb.WriteString("\n")
	}
	if end < len(m.filtered) {
		sb.WriteString(ui.Subtle.Render("  ↓ more"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Filter returns the current filter text
func (m Model[T]) Filter() string {
	return string(m.filter)
}

// Cursor returns the highlighted position within the filtered list
func (m Model[T]) Cursor() int {
	return m.cursor
}

// Visible returns the labels that pass the current filter
func (m Model[T]) Visible() []string {
	labels := make([]string, len(m.filtered))
	for i, idx := range m.filtered {
		labels[i] = m.items[idx].Label
	}
	return labels
}

// Done reports whether the session has ended
func (m Model[T]) Done() bool {
	return m.done
}

// Interrupted reports whether the session ended with ctrl+c
func (m Model[T]) Interrupted() bool {
	return m.interrupted
}

// Selected returns the chosen value, if any
func (m Model[T]) Selected() (T, bool) {
	if m.chosen < 0 {
		var zero T
		return zero, false
	}
	return m.items[m.chosen].Value, true
}
