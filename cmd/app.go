package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/patternlab/ctlaunch/internal/deploy"
	"github.com/patternlab/ctlaunch/internal/storage"
	"github.com/patternlab/ctlaunch/internal/ui"
)

// app is the state shared by one command invocation
type app struct {
	store     *storage.Store
	cfg       *storage.Config
	renderer  *ui.Renderer
	out       io.Writer
	logger    *zap.Logger
	endpoints deploy.Endpoints
	runner    deploy.Runner
	labsDir   string
	now       func() time.Time

	saveWarned bool
}

func newApp() *app {
	store := storage.NewStore(viper.GetString("history_file"), logger)
	a := &app{
		store: store,
		cfg:   store.Load(),
		renderer: ui.NewRendererWithConfig(&ui.Config{
			EnableSpinner:  !viper.GetBool("no_spinner"),
			EnableMarkdown: true,
		}),
		out:    os.Stdout,
		logger: logger,
		endpoints: deploy.Endpoints{
			Local: viper.GetString("endpoints.local"),
			Prod:  viper.GetString("endpoints.prod"),
		},
		runner: deploy.NewExecRunner(deploy.DefaultCommandTimeout, logger),
		now:    time.Now,
	}

	if dropped := a.cfg.PruneMissingPatterns(); dropped > 0 {
		a.logger.Debug("pruned missing patterns", zap.Int("count", dropped))
		a.save()
	}
	return a
}

// save persists the config. A failed write is shown to the user once per
// run and never fails the command.
func (a *app) save() {
	err := a.store.Save(a.cfg)
	if err == nil {
		return
	}
	a.logger.Warn("could not save launcher history", zap.String("path", a.store.Path()), zap.Error(err))
	if !a.saveWarned {
		a.saveWarned = true
		a.println(a.renderer.WarningMessage(fmt.Sprintf("History not saved: %v", err)))
	}
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

// requireTTY fails interactive flows that have no terminal to draw on
func requireTTY(what string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("%s needs an interactive terminal", what)
	}
	return nil
}

func isTTY() bool {
	return requireTTY("") == nil
}

// target picks the deployment target: --prod wins, otherwise the last one
// used
func (a *app) target() storage.Target {
	if viper.GetBool("prod") {
		return storage.TargetProd
	}
	if t, err := deploy.ParseTarget(string(a.cfg.LastDeploymentTarget)); err == nil {
		return t
	}
	return storage.TargetLocal
}

// cli resolves the labs directory and builds the ct invocation
func (a *app) cli() (deploy.CLI, error) {
	dir, err := a.resolveLabsDir()
	if err != nil {
		return deploy.CLI{}, err
	}

	identity := viper.GetString("identity")
	if identity == "" {
		identity = os.Getenv(deploy.EnvIdentity)
	}
	return deploy.NewCLI(viper.GetString("ct.command"), dir, identity)
}

// errNoLabsDir means the labs checkout could not be found, even by asking
var errNoLabsDir = errors.New("could not determine the labs directory; pass --labs-dir or set labs_dir in the config")

// resolveLabsDir tries the flag or config value, the remembered override and
// a sibling ../labs before asking
func (a *app) resolveLabsDir() (string, error) {
	if a.labsDir != "" {
		return a.labsDir, nil
	}

	var candidates []string
	if v := viper.GetString("labs_dir"); v != "" {
		if !isDir(v) {
			return "", fmt.Errorf("labs directory %s does not exist", v)
		}
		candidates = append(candidates, v)
	}
	if a.cfg.LabsDir != "" {
		candidates = append(candidates, a.cfg.LabsDir)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(cwd), "labs"))
	}

	for _, c := range candidates {
		if isDir(c) {
			return a.useLabsDir(c, false), nil
		}
	}

	if !isTTY() {
		return "", errNoLabsDir
	}
	dir, err := promptLabsDir()
	if err != nil {
		a.logger.Debug("labs directory prompt failed", zap.Error(err))
		return "", errNoLabsDir
	}
	return a.useLabsDir(dir, true), nil
}

func (a *app) useLabsDir(dir string, remember bool) string {
	dir = expandHome(dir)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	a.labsDir = dir
	loadEnvFile(filepath.Join(dir, ".env"))
	if remember {
		a.cfg.LabsDir = dir
		a.save()
		a.println(a.renderer.SuccessMessage("Remembered labs directory " + dir))
	}
	a.logger.Debug("using labs directory", zap.String("path", dir))
	return dir
}

func isDir(path string) bool {
	info, err := os.Stat(expandHome(path))
	return err == nil && info.IsDir()
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
