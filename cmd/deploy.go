package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/patternlab/ctlaunch/internal/browser"
	"github.com/patternlab/ctlaunch/internal/deploy"
	"github.com/patternlab/ctlaunch/internal/selector"
	"github.com/patternlab/ctlaunch/internal/storage"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [file]",
	Short: "Deploy a pattern file",
	Long: `Deploys a pattern into a space. Without a file argument the pattern
browser opens. The space comes from --space or the last space used for the
target.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		target := a.target()

		space := viper.GetString("space")
		if space == "" {
			space = a.cfg.LastSpace(target)
		}
		if space == "" {
			if err := requireTTY("choosing a space"); err != nil {
				return fmt.Errorf("no space given: pass --space (%w)", err)
			}
			var err error
			if space, err = a.chooseSpace(target); err != nil {
				return err
			}
		}

		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			if err := requireTTY("browsing for a pattern"); err != nil {
				return err
			}
			var ok bool
			if path, ok = a.browse(); !ok {
				return selector.ErrAborted
			}
		}

		a.rememberSpace(target, space)
		return a.deployPattern(cmd.Context(), path, space, target)
	},
}

// newBrowser builds the pattern browser over patterns_root
func (a *app) newBrowser() (*browser.Browser, error) {
	root := viper.GetString("patterns_root")
	return browser.New(root, menuChooser{}, readlinePrompter{baseDir: root, renderer: a.renderer},
		browser.WithExtension(viper.GetString("extension")),
		browser.WithInclude(viper.GetString("include")),
		browser.WithShortcuts(a.cfg.RecentPatternDirs(5)),
		browser.WithOutput(a.out, a.renderer),
		browser.WithLogger(a.logger),
	)
}

// browse opens the browser at the most recently used directory
func (a *app) browse() (string, bool) {
	b, err := a.newBrowser()
	if err != nil {
		a.println(a.renderer.ErrorMessage(err))
		return "", false
	}
	start := ""
	if dirs := a.cfg.RecentPatternDirs(1); len(dirs) == 1 {
		start = dirs[0]
	}
	return b.Browse(start)
}

func (a *app) rememberSpace(target storage.Target, space string) {
	a.cfg.SetLastTarget(target)
	a.cfg.SetLastSpace(target, space)
	a.save()
}

// deployPattern runs one deploy and records it. A failed deploy returns a
// *deploy.FailedError after its output has been printed.
func (a *app) deployPattern(ctx context.Context, path, space string, target storage.Target) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	// Every attempt counts as a use of the pattern
	a.cfg.RecordPatternUsage(path, a.now())
	a.save()

	cli, err := a.cli()
	if err != nil {
		return err
	}
	deployer := deploy.NewDeployer(cli, a.endpoints, a.runner, deploy.WithDeployLogger(a.logger))

	spinner := a.renderer.Spinner()
	spinner.Start(a.renderer.DeployingMessage(path, space))
	outcome, err := deployer.Deploy(ctx, deploy.Request{Path: path, Space: space, Target: target})
	spinner.Stop()
	if err != nil {
		return err
	}

	switch outcome.Status {
	case deploy.StatusDeployed:
		a.cfg.RecordArtifact(outcome.ID, space, outcome.Endpoint, path, a.now())
		a.save()
		fmt.Fprint(a.out, a.renderer.DeployedMessage(outcome.ID, outcome.URL()))
		a.offerOpen(outcome.URL())
		return nil

	case deploy.StatusNoID:
		fmt.Fprint(a.out, a.renderer.CommandOutput(outcome.Output))
		fmt.Fprint(a.out, a.renderer.DeployedWithoutIDMessage(outcome.URL()))
		a.offerOpen(outcome.URL())
		return nil
	}

	a.println(a.renderer.ErrorMessage(fmt.Errorf("deploy of %s failed", filepath.Base(path))))
	fmt.Fprint(a.out, a.renderer.CommandOutput(outcome.Output))
	if outcome.Hint != "" {
		a.println(a.renderer.HintMessage(outcome.Hint))
	}
	a.logger.Debug("deploy failed", zap.String("path", path), zap.Int("exit_code", outcome.ExitCode))
	return outcome.Err()
}
