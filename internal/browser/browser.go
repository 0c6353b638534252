// Package browser walks the pattern tree to pick a file to deploy.
package browser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/patternlab/ctlaunch/internal/selector"
	"github.com/patternlab/ctlaunch/internal/ui"
)

// DefaultExcludeDirs are directories never offered for navigation
var DefaultExcludeDirs = map[string]bool{
	"node_modules":     true,
	"vendor":           true,
	"dist":             true,
	"build":            true,
	"coverage":         true,
	"bower_components": true,
	"__pycache__":      true,
}

// Entry is one listed directory or pattern file
type Entry struct {
	Name string
	Path string
	Dir  bool
}

// ChoiceKind says what a menu choice does
type ChoiceKind int

const (
	ChoiceUp ChoiceKind = iota
	ChoiceDir
	ChoiceFile
	ChoiceManual
	ChoiceShortcut
)

// Choice is one row of the browse menu
type Choice struct {
	Kind  ChoiceKind
	Label string
	Icon  string
	Path  string
}

// Chooser shows a menu and returns the picked choice
type Chooser interface {
	Choose(title string, choices []Choice) (Choice, error)
}

// PathPrompter reads a typed path
type PathPrompter interface {
	PromptPath(label string) (string, error)
}

// Browser navigates a directory tree clamped at Root
type Browser struct {
	root      string
	extension string
	include   string
	shortcuts []string
	chooser   Chooser
	prompter  PathPrompter
	out       io.Writer
	renderer  *ui.Renderer
	logger    *zap.Logger
}

// Option configures a Browser
type Option func(*Browser)

// WithExtension sets the recognized pattern extension
func WithExtension(ext string) Option {
	return func(b *Browser) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		b.extension = ext
	}
}

// WithInclude sets the doublestar glob, relative to the root, that files
// must match to be listed
func WithInclude(pattern string) Option {
	return func(b *Browser) {
		b.include = pattern
	}
}

// WithShortcuts adds recently used directories to the menu
func WithShortcuts(dirs []string) Option {
	return func(b *Browser) {
		b.shortcuts = dirs
	}
}

// WithOutput sets where warnings and errors are printed
func WithOutput(w io.Writer, r *ui.Renderer) Option {
	return func(b *Browser) {
		b.out = w
		if r != nil {
			b.renderer = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Browser) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a browser rooted at root
func New(root string, chooser Chooser, prompter PathPrompter, opts ...Option) (*Browser, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	b := &Browser{
		root:      abs,
		extension: ".tsx",
		chooser:   chooser,
		prompter:  prompter,
		out:       os.Stdout,
		renderer:  ui.NewRenderer(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.include != "" && !doublestar.ValidatePattern(b.include) {
		return nil, fmt.Errorf("invalid include pattern %q", b.include)
	}
	return b, nil
}

// Root returns the absolute root directory
func (b *Browser) Root() string {
	return b.root
}

// ListDir returns the visible subdirectories and pattern files of dir,
// directories first and each group sorted by name
func (b *Browser) ListDir(dir string) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var entries []Entry
	for _, item := range items {
		name := item.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		isDir := item.IsDir()
		if item.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				b.logger.Debug("skipping broken symlink", zap.String("path", path), zap.Error(err))
				continue
			}
			isDir = info.IsDir()
		}

		if isDir {
			if DefaultExcludeDirs[name] {
				continue
			}
			entries = append(entries, Entry{Name: name, Path: path, Dir: true})
			continue
		}
		if b.matches(path) {
			entries = append(entries, Entry{Name: name, Path: path})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Dir != entries[j].Dir {
			return entries[i].Dir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func (b *Browser) matches(path string) bool {
	if b.extension != "" && !strings.HasSuffix(path, b.extension) {
		return false
	}
	if b.include == "" {
		return true
	}
	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	ok, err := doublestar.Match(b.include, filepath.ToSlash(rel))
	return err == nil && ok
}

// Within reports whether path is the root or below it
func (b *Browser) Within(path string) bool {
	rel, err := filepath.Rel(b.root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Parent returns the directory above dir, never leaving the root
func (b *Browser) Parent(dir string) string {
	dir = filepath.Clean(dir)
	if dir == b.root || !b.Within(dir) {
		return b.root
	}
	return filepath.Dir(dir)
}

// ValidatePath checks a manually entered path. A missing path or one that is
// not a regular file is an error; an unexpected extension only a warning.
func (b *Browser) ValidatePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s does not exist", path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}
	if b.extension != "" && !strings.HasSuffix(path, b.extension) {
		return fmt.Sprintf("%s does not end in %s, deploying anyway", filepath.Base(path), b.extension), nil
	}
	return "", nil
}

// Browse runs the navigation loop from start and returns the chosen file.
// It returns false when the user backs out or a directory cannot be read.
func (b *Browser) Browse(start string) (string, bool) {
	dir := b.root
	if start != "" {
		if abs, err := filepath.Abs(start); err == nil && b.Within(abs) {
			dir = abs
		}
	}

	for {
		entries, err := b.ListDir(dir)
		if err != nil {
			b.printf("%s\n", b.renderer.ErrorMessage(err))
			return "", false
		}

		choice, err := b.chooser.Choose(b.title(dir), b.choices(dir, entries))
		if err != nil {
			if !errors.Is(err, selector.ErrAborted) {
				b.printf("%s\n", b.renderer.ErrorMessage(err))
			}
			return "", false
		}

		switch choice.Kind {
		case ChoiceUp:
			dir = b.Parent(dir)
		case ChoiceDir, ChoiceShortcut:
			dir = choice.Path
		case ChoiceFile:
			return choice.Path, true
		case ChoiceManual:
			if path, ok := b.promptManual(); ok {
				return path, true
			}
		}
	}
}

func (b *Browser) title(dir string) string {
	rel, err := filepath.Rel(b.root, dir)
	if err != nil || rel == "." {
		return fmt.Sprintf("%s %s", ui.IconFolder, filepath.Base(b.root)+"/")
	}
	return fmt.Sprintf("%s %s/%s/", ui.IconFolder, filepath.Base(b.root), filepath.ToSlash(rel))
}

func (b *Browser) choices(dir string, entries []Entry) []Choice {
	var choices []Choice
	if dir != b.root {
		choices = append(choices, Choice{Kind: ChoiceUp, Label: "..", Icon: ui.IconUp})
	}
	for _, e := range entries {
		if e.Dir {
			choices = append(choices, Choice{Kind: ChoiceDir, Label: e.Name + "/", Icon: ui.IconFolder, Path: e.Path})
		} else {
			choices = append(choices, Choice{Kind: ChoiceFile, Label: e.Name, Icon: ui.IconFile, Path: e.Path})
		}
	}
	choices = append(choices, Choice{Kind: ChoiceManual, Label: "Enter path manually", Icon: ui.IconKeyboard})

	for _, s := range b.shortcuts {
		s = filepath.Clean(s)
		if s == dir || !b.Within(s) {
			continue
		}
		if info, err := os.Stat(s); err != nil || !info.IsDir() {
			continue
		}
		label := s
		if rel, err := filepath.Rel(b.root, s); err == nil {
			label = filepath.ToSlash(rel) + "/"
		}
		choices = append(choices, Choice{Kind: ChoiceShortcut, Label: "Recent: " + label, Icon: ui.IconStar, Path: s})
	}
	return choices
}

// promptManual re-prompts until a valid path is entered. An empty answer or
// a prompt error returns to the listing.
func (b *Browser) promptManual() (string, bool) {
	for {
		input, err := b.prompter.PromptPath("Path to pattern file")
		if err != nil {
			b.logger.Debug("manual path entry cancelled", zap.Error(err))
			return "", false
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return "", false
		}

		path := expandHome(input)
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}

		warning, err := b.ValidatePath(path)
		if err != nil {
			b.printf("%s\n", b.renderer.WarningMessage(err.Error()))
			continue
		}
		if warning != "" {
			b.printf("%s\n", b.renderer.WarningMessage(warning))
		}
		return path, true
	}
}

func (b *Browser) printf(format string, args ...any) {
	if b.out != nil {
		fmt.Fprintf(b.out, format, args...)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
