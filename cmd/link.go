package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/patternlab/ctlaunch/internal/deploy"
	"github.com/patternlab/ctlaunch/internal/links"
	"github.com/patternlab/ctlaunch/internal/selector"
	"github.com/patternlab/ctlaunch/internal/storage"
	"github.com/patternlab/ctlaunch/internal/ui"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Suggest and create links between recently deployed charms",
	Long: `Inspects the charms most recently deployed to a space, ranks the
output-to-input field pairs that look compatible and links the one you pick.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTTY("choosing a link"); err != nil {
			return err
		}
		a := newApp()
		target := a.target()

		space := viper.GetString("space")
		if space == "" {
			space = a.cfg.LastSpace(target)
		}
		if space == "" {
			var err error
			if space, err = a.chooseSpace(target); err != nil {
				return err
			}
		}
		return a.linkFlow(cmd.Context(), space, target)
	},
}

// linkFlow inspects recent charms of space, lets the user pick a suggestion
// and runs the link
func (a *app) linkFlow(ctx context.Context, space string, target storage.Target) error {
	artifacts := a.linkableArtifacts(target, space)
	if len(artifacts) < 2 {
		a.println(a.renderer.InfoMessage(fmt.Sprintf("Deploy at least two charms to %s to link them", space)))
		return nil
	}

	cli, err := a.cli()
	if err != nil {
		return err
	}

	inspector := deploy.NewCLIInspector(cli, a.endpoints, target, a.runner, a.logger)
	engine := links.NewEngine(inspector,
		links.WithMaxArtifacts(viper.GetInt("suggestions.artifacts")),
		links.WithLogger(a.logger),
	)

	inspected := min(len(artifacts), max(viper.GetInt("suggestions.artifacts"), 1))
	spinner := a.renderer.Spinner()
	spinner.Start(fmt.Sprintf("Inspecting %d charms in %s", inspected, space))
	suggestions := engine.Generate(ctx, artifacts, viper.GetInt("suggestions.max"))
	spinner.Stop()

	if len(suggestions) == 0 {
		a.println(a.renderer.InfoMessage("No compatible fields found between the recent charms"))
		return nil
	}

	items := make([]selector.Item[links.Suggestion], len(suggestions))
	for i, s := range suggestions {
		items[i] = selector.Item[links.Suggestion]{Label: s.Label(), Value: s}
	}
	chosen, err := selector.Run(fmt.Sprintf("%s Link suggestions (✓ compatible, ? maybe)", ui.IconLink), items)
	if err != nil {
		return err
	}

	req := deploy.LinkRequestFor(chosen, space, a.endpoints.For(target))
	linker := deploy.NewLinker(cli, a.runner, a.logger)

	spinner = a.renderer.Spinner()
	spinner.Start(fmt.Sprintf("Linking %s", req.SourceRef()))
	err = linker.Link(ctx, req)
	spinner.Stop()
	if err != nil {
		return err
	}

	a.println(a.renderer.LinkedMessage(
		chosen.Source.Name+"."+chosen.Source.Field.FullPath,
		chosen.Target.Name+"."+chosen.Target.Field.FullPath))
	return nil
}
