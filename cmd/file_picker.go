package cmd

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/patternlab/ctlaunch/internal/browser"
	"github.com/patternlab/ctlaunch/internal/selector"
	"github.com/patternlab/ctlaunch/internal/ui"
)

// PathCompleter implements readline.AutoCompleter for filesystem paths
type PathCompleter struct {
	baseDir string
}

// NewPathCompleter completes relative paths against baseDir
func NewPathCompleter(baseDir string) *PathCompleter {
	return &PathCompleter{baseDir: baseDir}
}

// Do implements readline.AutoCompleter interface
func (p *PathCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	typed := string(line[:pos])

	// Split into the directory part and the partial name being completed
	dirPart, prefix := "", typed
	if idx := strings.LastIndex(typed, "/"); idx >= 0 {
		dirPart, prefix = typed[:idx+1], typed[idx+1:]
	}

	dir := expandHome(dirPart)
	if dir == "" {
		dir = p.baseDir
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.baseDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		// Hidden entries only when asked for
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	candidates := make([][]rune, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, []rune(name[len(prefix):]))
	}
	return candidates, len([]rune(prefix))
}

// readlinePrompter reads a manually typed path with tab completion
type readlinePrompter struct {
	baseDir  string
	renderer *ui.Renderer
}

// PromptPath implements browser.PathPrompter
func (r readlinePrompter) PromptPath(label string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.PromptStyle.Render(label) + " " + r.renderer.PromptString(),
		AutoComplete:    NewPathCompleter(r.baseDir),
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	return rl.Readline()
}

// menuChooser shows browser menus with the interactive selector
type menuChooser struct{}

// Choose implements browser.Chooser
func (menuChooser) Choose(title string, choices []browser.Choice) (browser.Choice, error) {
	items := make([]selector.Item[browser.Choice], len(choices))
	for i, c := range choices {
		items[i] = selector.Item[browser.Choice]{Label: c.Label, Icon: c.Icon, Value: c}
	}
	return selector.Run(title, items)
}
