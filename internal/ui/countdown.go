package ui

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// InterruptExitCode is the process exit status after ctrl+c or SIGINT
const InterruptExitCode = 130

// exit terminates the process after an interrupt
var exit = os.Exit

// countdownTick is delivered once per second while a countdown is pending
type countdownTick struct{}

// Countdown asks a yes/no question that resolves to Yes when the time runs
// out. Enter answers yes, any other key answers no.
type Countdown struct {
	prompt      string
	remaining   int
	step        time.Duration
	answer      bool
	done        bool
	timedOut    bool
	interrupted bool
}

// NewCountdown creates a countdown of the given length, rounded up to whole
// seconds
func NewCountdown(prompt string, timeout time.Duration) Countdown {
	secs := int((timeout + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return Countdown{prompt: prompt, remaining: secs, step: time.Second}
}

// RunCountdown shows the prompt and blocks until a key is pressed or the time
// runs out. Ctrl+C and an interrupt signal end the process.
func RunCountdown(prompt string, timeout time.Duration) (bool, error) {
	final, err := tea.NewProgram(NewCountdown(prompt, timeout)).Run()
	return countdownResult(final, err)
}

func countdownResult(final tea.Model, err error) (bool, error) {
	if errors.Is(err, tea.ErrInterrupted) {
		exit(InterruptExitCode)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("countdown: %w", err)
	}
	m, ok := final.(Countdown)
	if !ok {
		return false, fmt.Errorf("countdown: unexpected model %T", final)
	}
	if m.interrupted {
		exit(InterruptExitCode)
		return false, nil
	}
	return m.answer, nil
}

func (c Countdown) tick() tea.Cmd {
	return tea.Tick(c.step, func(time.Time) tea.Msg {
		return countdownTick{}
	})
}

// Init implements tea.Model
func (c Countdown) Init() tea.Cmd {
	return c.tick()
}

// Update implements tea.Model
func (c Countdown) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if c.done {
		return c, nil
	}

	switch msg := msg.(type) {
	case countdownTick:
		c.remaining--
		if c.remaining <= 0 {
			c.answer = true
			c.timedOut = true
			c.done = true
			return c, tea.Quit
		}
		return c, c.tick()

	case tea.KeyMsg:
		c.interrupted = msg.Type == tea.KeyCtrlC
		c.answer = msg.Type == tea.KeyEnter
		c.done = true
		return c, tea.Quit
	}
	return c, nil
}

// View implements tea.Model
func (c Countdown) View() string {
	if c.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n",
		PromptStyle.Render(c.prompt),
		Subtle.Render(fmt.Sprintf("[Enter: yes, any key: no, auto-yes in %ds]", c.remaining)))
}

// Answer reports the resolved answer and whether the countdown is over
func (c Countdown) Answer() (answer, done bool) {
	return c.answer, c.done
}

// TimedOut reports whether the answer came from the timer
func (c Countdown) TimedOut() bool {
	return c.timedOut
}

// Interrupted reports whether the countdown ended with ctrl+c
func (c Countdown) Interrupted() bool {
	return c.interrupted
}

// Remaining returns the whole seconds left
func (c Countdown) Remaining() int {
	return c.remaining
}
