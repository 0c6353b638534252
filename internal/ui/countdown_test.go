package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(t *testing.T, c Countdown, msg tea.Msg) (Countdown, tea.Cmd) {
	t.Helper()
	next, cmd := c.Update(msg)
	out, ok := next.(Countdown)
	require.True(t, ok)
	return out, cmd
}

func TestCountdownRoundsUpToSeconds(t *testing.T) {
	assert.Equal(t, 10, NewCountdown("Open?", 10*time.Second).Remaining())
	assert.Equal(t, 3, NewCountdown("Open?", 2500*time.Millisecond).Remaining())
	assert.Equal(t, 1, NewCountdown("Open?", 0).Remaining())
}

func TestCountdownTimesOutToYes(t *testing.T) {
	c := NewCountdown("Open?", 3*time.Second)
	require.NotNil(t, c.Init())

	c, cmd := step(t, c, countdownTick{})
	assert.NotNil(t, cmd)
	assert.Equal(t, 2, c.Remaining())
	assert.Contains(t, c.View(), "2s")

	c, _ = step(t, c, countdownTick{})
	c, _ = step(t, c, countdownTick{})

	answer, done := c.Answer()
	assert.True(t, done)
	assert.True(t, answer)
	assert.True(t, c.TimedOut())
	assert.Empty(t, c.View())
}

func TestCountdownEnterAnswersYes(t *testing.T) {
	c, cmd := step(t, NewCountdown("Open?", 10*time.Second), tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)

	answer, done := c.Answer()
	assert.True(t, done)
	assert.True(t, answer)
	assert.False(t, c.TimedOut())
}

func TestCountdownOtherKeyAnswersNo(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'n'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		c, _ := step(t, NewCountdown("Open?", 10*time.Second), msg)
		answer, done := c.Answer()
		assert.True(t, done)
		assert.False(t, answer)
		assert.Equal(t, msg.Type == tea.KeyCtrlC, c.Interrupted())
	}
}

func stubExit(t *testing.T) *int {
	t.Helper()
	code := -1
	prev := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = prev })
	return &code
}

func TestCountdownInterruptExits(t *testing.T) {
	code := stubExit(t)
	open, err := countdownResult(nil, tea.ErrInterrupted)
	require.NoError(t, err)
	assert.False(t, open)
	assert.Equal(t, InterruptExitCode, *code)

	*code = -1
	c, _ := step(t, NewCountdown("Open?", 10*time.Second), tea.KeyMsg{Type: tea.KeyCtrlC})
	open, err = countdownResult(c, nil)
	require.NoError(t, err)
	assert.False(t, open)
	assert.Equal(t, InterruptExitCode, *code)
}

func TestCountdownResultAnswer(t *testing.T) {
	code := stubExit(t)
	c, _ := step(t, NewCountdown("Open?", 10*time.Second), tea.KeyMsg{Type: tea.KeyEnter})
	open, err := countdownResult(c, nil)
	require.NoError(t, err)
	assert.True(t, open)

	_, err = countdownResult(nil, errors.New("no tty"))
	assert.ErrorContains(t, err, "no tty")
	assert.Equal(t, -1, *code)
}

func TestCountdownIgnoresTicksAfterKeystroke(t *testing.T) {
	c, _ := step(t, NewCountdown("Open?", time.Second), tea.KeyMsg{Type: tea.KeyEsc})
	c, cmd := step(t, c, countdownTick{})

	assert.Nil(t, cmd)
	answer, _ := c.Answer()
	assert.False(t, answer)
	assert.False(t, c.TimedOut())
}

func TestRendererMessages(t *testing.T) {
	r := NewRendererWithConfig(&Config{EnableSpinner: false})

	assert.Contains(t, r.ErrorMessage(errors.New("boom")), "boom")
	assert.Contains(t, r.HintMessage("connect the tunnel"), "connect the tunnel")
	assert.Contains(t, r.DeployedMessage("baedabc", "http://x/s/baedabc"), "baedabc")
	assert.Equal(t, "", r.CommandOutput("\n"))
	assert.Contains(t, r.CommandOutput("line one\nline two\n"), "  line two")
	assert.Equal(t, "# plain", r.Markdown("# plain"))
}

func TestSilentSpinner(t *testing.T) {
	s := NewRendererWithConfig(&Config{EnableSpinner: false}).Spinner()
	s.Start("working")
	assert.True(t, s.IsRunning())
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "never", FormatTimeAgo(time.Time{}))
	assert.Equal(t, "just now", FormatTimeAgo(now.Add(-10*time.Second)))
	assert.Equal(t, "5m ago", FormatTimeAgo(now.Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "3h ago", FormatTimeAgo(now.Add(-3*time.Hour-time.Second)))
	assert.Equal(t, "2d ago", FormatTimeAgo(now.Add(-49*time.Hour)))
}
