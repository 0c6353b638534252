package selector

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fruits() Model[string] {
	return New("Pick a fruit", []Item[string]{
		{Label: "Apple", Value: "apple"},
		{Label: "Banana", Value: "banana"},
		{Label: "Grape", Value: "grape"},
	})
}

func press(t *testing.T, m Model[string], msgs ...tea.KeyMsg) Model[string] {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model[string])
		require.True(t, ok)
	}
	return m
}

func typed(s string) []tea.KeyMsg {
	var msgs []tea.KeyMsg
	for _, r := range s {
		if r == ' ' {
			msgs = append(msgs, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestFilterIsCaseInsensitiveSubstring(t *testing.T) {
	m := fruits()
	assert.Equal(t, []string{"Apple", "Banana", "Grape"}, m.Visible())

	m = press(t, m, typed("an")...)
	assert.Equal(t, "an", m.Filter())
	assert.Equal(t, []string{"Banana"}, m.Visible())
	assert.Equal(t, 0, m.Cursor())

	m = press(t, fruits(), typed("AP")...)
	assert.Equal(t, []string{"Apple", "Grape"}, m.Visible())
}

func TestFilterChangeResetsCursor(t *testing.T) {
	m := press(t, fruits(), key(tea.KeyDown), key(tea.KeyDown))
	assert.Equal(t, 2, m.Cursor())

	m = press(t, m, typed("a")...)
	assert.Equal(t, 0, m.Cursor())

	m = press(t, m, key(tea.KeyDown))
	assert.Equal(t, 1, m.Cursor())
	m = press(t, m, key(tea.KeyBackspace))
	assert.Equal(t, 0, m.Cursor())
}

func TestArrowKeysWrap(t *testing.T) {
	m := press(t, fruits(), key(tea.KeyUp))
	assert.Equal(t, 2, m.Cursor())

	m = press(t, m, key(tea.KeyDown))
	assert.Equal(t, 0, m.Cursor())
}

func TestArrowKeysOnEmptyListAreNoOps(t *testing.T) {
	m := press(t, fruits(), typed("xyz")...)
	require.Empty(t, m.Visible())

	m = press(t, m, key(tea.KeyDown), key(tea.KeyUp))
	assert.Equal(t, 0, m.Cursor())
	assert.False(t, m.Done())
}

func TestBackspace(t *testing.T) {
	m := press(t, fruits(), typed("gr")...)
	assert.Equal(t, []string{"Grape"}, m.Visible())

	m = press(t, m, key(tea.KeyBackspace))
	assert.Equal(t, "g", m.Filter())
	assert.Equal(t, []string{"Grape"}, m.Visible())

	m = press(t, m, key(tea.KeyBackspace), key(tea.KeyBackspace))
	assert.Equal(t, "", m.Filter())
	assert.Len(t, m.Visible(), 3)
}

func TestEscapeClearsFilterOnly(t *testing.T) {
	m := press(t, fruits(), typed("ban")...)
	m = press(t, m, key(tea.KeyEsc))
	assert.Equal(t, "", m.Filter())
	assert.Len(t, m.Visible(), 3)
	assert.False(t, m.Done())

	m = press(t, m, key(tea.KeyEsc))
	assert.False(t, m.Done(), "escape with an empty filter does not close")
}

func TestEnterSelectsHighlighted(t *testing.T) {
	m := press(t, fruits(), key(tea.KeyDown))
	next, cmd := m.Update(key(tea.KeyEnter))
	m = next.(Model[string])

	require.NotNil(t, cmd)
	assert.True(t, m.Done())
	value, ok := m.Selected()
	assert.True(t, ok)
	assert.Equal(t, "banana", value)
	assert.Equal(t, "", m.View())
}

func TestEnterOnFilteredSelection(t *testing.T) {
	m := press(t, fruits(), typed("ape")...)
	m = press(t, m, key(tea.KeyDown), key(tea.KeyEnter))

	value, ok := m.Selected()
	assert.True(t, ok)
	assert.Equal(t, "grape", value)
}

func TestEnterOnEmptyListSelectsNothing(t *testing.T) {
	m := press(t, fruits(), typed("kiwi")...)
	m = press(t, m, key(tea.KeyEnter))

	assert.True(t, m.Done())
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestQuitKeyWithEmptyFilter(t *testing.T) {
	for _, r := range []rune{'q', 'Q'} {
		next, cmd := fruits().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m := next.(Model[string])

		assert.NotNil(t, cmd)
		assert.True(t, m.Done())
		_, ok := m.Selected()
		assert.False(t, ok)
		assert.False(t, m.Interrupted())
	}
}

func TestQuitKeyIsFilterInputOnceFiltering(t *testing.T) {
	m := New("", []Item[string]{
		{Label: "Aqua", Value: "aqua"},
		{Label: "Aquq", Value: "aquq"},
		{Label: "Other", Value: "other"},
	})
	m = press(t, m, typed("aq")...)
	assert.False(t, m.Done())
	assert.Equal(t, "aq", m.Filter())
	assert.Equal(t, []string{"Aqua", "Aquq"}, m.Visible())

	m = press(t, m, typed("uq")...)
	assert.False(t, m.Done())
	assert.Equal(t, "aquq", m.Filter())
	assert.Equal(t, []string{"Aquq"}, m.Visible())

	m = press(t, m, key(tea.KeyBackspace), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Q'}})
	assert.Equal(t, "aquQ", m.Filter())
	assert.False(t, m.Done())
}

func TestPastedTextStartingWithQIsFilterInput(t *testing.T) {
	m := New("", []Item[string]{
		{Label: "Quux", Value: "quux"},
		{Label: "Other", Value: "other"},
	})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("qu")})
	assert.False(t, m.Done())
	assert.Equal(t, "qu", m.Filter())
	assert.Equal(t, []string{"Quux"}, m.Visible())
}

func TestKeysAfterQuitAreIgnored(t *testing.T) {
	m := press(t, fruits(), typed("q")...)
	require.True(t, m.Done())

	m = press(t, m, typed("an")...)
	m = press(t, m, key(tea.KeyDown), key(tea.KeyEnter))
	assert.Equal(t, "", m.Filter())
	assert.Equal(t, 0, m.Cursor())
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestSpaceIsFilterInput(t *testing.T) {
	m := New("", []Item[string]{
		{Label: "My Pattern", Value: "a"},
		{Label: "MyPattern", Value: "b"},
	})
	m = press(t, m, typed("my p")...)
	assert.Equal(t, []string{"My Pattern"}, m.Visible())
}

func TestCtrlCInterrupts(t *testing.T) {
	next, cmd := fruits().Update(key(tea.KeyCtrlC))
	m := next.(Model[string])

	assert.NotNil(t, cmd)
	assert.True(t, m.Done())
	assert.True(t, m.Interrupted())
}

func stubExit(t *testing.T) *int {
	t.Helper()
	code := -1
	prev := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = prev })
	return &code
}

func TestResultExitsOnInterruptSignal(t *testing.T) {
	code := stubExit(t)

	_, err := result[string](nil, fmt.Errorf("program: %w", tea.ErrInterrupted))
	assert.Equal(t, InterruptExitCode, *code)
	assert.ErrorIs(t, err, ErrAborted)
}

func TestResultExitsOnCtrlC(t *testing.T) {
	code := stubExit(t)

	final, _ := fruits().Update(key(tea.KeyCtrlC))
	_, err := result[string](final, nil)
	assert.Equal(t, InterruptExitCode, *code)
	assert.ErrorIs(t, err, ErrAborted)
}

func TestResultReturnsSelectionOrAbort(t *testing.T) {
	code := stubExit(t)

	final, _ := press(t, fruits(), key(tea.KeyDown)).Update(key(tea.KeyEnter))
	value, err := result[string](final, nil)
	require.NoError(t, err)
	assert.Equal(t, "banana", value)

	final, _ = fruits().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	_, err = result[string](final, nil)
	assert.ErrorIs(t, err, ErrAborted)

	_, err = result[string](nil, errors.New("tty gone"))
	assert.ErrorContains(t, err, "tty gone")
	assert.NotErrorIs(t, err, ErrAborted)
	assert.Equal(t, -1, *code)
}

func TestViewShowsHighlightAndScrolls(t *testing.T) {
	var items []Item[int]
	for i := 0; i < 30; i++ {
		items = append(items, Item[int]{Label: string(rune('a'+i%26)) + "-item", Value: i})
	}
	m := New("Numbers", items)

	view := m.View()
	assert.Contains(t, view, "Numbers")
	assert.Contains(t, view, "a-item")
	assert.Contains(t, view, "↓ more")
	assert.NotContains(t, view, "↑ more")

	for i := 0; i < 20; i++ {
		next, _ := m.Update(key(tea.KeyDown))
		m = next.(Model[int])
	}
	assert.Equal(t, 20, m.Cursor())
	view = m.View()
	assert.Contains(t, view, "↑ more")
	assert.Contains(t, view, "u-item")
}

func TestViewNoMatches(t *testing.T) {
	m := press(t, fruits(), typed("zzz")...)
	assert.Contains(t, m.View(), "No matches")
	assert.Contains(t, m.View(), "Filter: ")
}

func TestWindowSizeShrinksVisibleRows(t *testing.T) {
	next, _ := fruits().Update(tea.WindowSizeMsg{Width: 80, Height: 6})
	m := next.(Model[string])
	assert.Equal(t, 3, m.visible)
}
