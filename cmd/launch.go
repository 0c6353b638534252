package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/patternlab/ctlaunch/internal/selector"
	"github.com/patternlab/ctlaunch/internal/storage"
	"github.com/patternlab/ctlaunch/internal/ui"
)

const recentPatternsInMenu = 5

type menuAction int

const (
	actionBrowse menuAction = iota
	actionRecent
	actionLink
	actionSpace
	actionTarget
	actionQuit
)

type menuChoice struct {
	action menuAction
	path   string
}

// spaceChoice is a row of the space menu; an empty name means "new space"
type spaceChoice struct {
	name string
}

// runLaunch is the interactive session: target, space, then the main menu
func runLaunch(ctx context.Context) error {
	if err := requireTTY("the interactive launcher"); err != nil {
		return fmt.Errorf("%w (use `ctlaunch deploy <file> --space <name>` in scripts)", err)
	}

	a := newApp()
	fmt.Fprint(a.out, a.renderer.WelcomeMessage())

	target := a.target()
	if !viper.GetBool("prod") {
		var err error
		if target, err = a.chooseTarget(target); err != nil {
			return quietAbort(err)
		}
	}

	space := viper.GetString("space")
	if space == "" {
		var err error
		if space, err = a.chooseSpace(target); err != nil {
			return quietAbort(err)
		}
	}
	a.rememberSpace(target, space)

	for {
		fmt.Fprint(a.out, a.renderer.TargetMessage(string(target), a.endpoints.For(target), space))

		choice, err := selector.Run("What next?", a.mainMenu(target, space))
		if err != nil {
			return quietAbort(err)
		}

		switch choice.action {
		case actionBrowse:
			path, ok := a.browse()
			if !ok {
				continue
			}
			return a.deployPattern(ctx, path, space, target)

		case actionRecent:
			return a.deployPattern(ctx, choice.path, space, target)

		case actionLink:
			if err := a.linkFlow(ctx, space, target); err != nil && !errors.Is(err, selector.ErrAborted) {
				a.println(a.renderer.ErrorMessage(err))
			}

		case actionSpace:
			next, err := a.chooseSpace(target)
			if err != nil {
				continue
			}
			space = next
			a.rememberSpace(target, space)

		case actionTarget:
			next, err := a.chooseTarget(target)
			if err != nil {
				continue
			}
			nextSpace, err := a.chooseSpace(next)
			if err != nil {
				continue
			}
			target, space = next, nextSpace
			a.rememberSpace(target, space)

		case actionQuit:
			return nil
		}
	}
}

// quietAbort turns a user quit into a clean exit
func quietAbort(err error) error {
	if errors.Is(err, selector.ErrAborted) {
		return nil
	}
	return err
}

func (a *app) mainMenu(target storage.Target, space string) []selector.Item[menuChoice] {
	items := []selector.Item[menuChoice]{
		{Label: "Browse for a pattern", Icon: ui.IconFolder, Value: menuChoice{action: actionBrowse}},
	}

	for i, p := range a.cfg.Patterns {
		if i == recentPatternsInMenu {
			break
		}
		label := a.renderer.PatternLabel(storage.DisplayName(p.Path), filepath.Base(filepath.Dir(p.Path)), p.LastUsed)
		items = append(items, selector.Item[menuChoice]{
			Label: label,
			Icon:  ui.IconRocket,
			Value: menuChoice{action: actionRecent, path: p.Path},
		})
	}

	if n := len(a.linkableArtifacts(target, space)); n >= 2 {
		items = append(items, selector.Item[menuChoice]{
			Label: fmt.Sprintf("Link charms in %s (%d deployed)", space, n),
			Icon:  ui.IconLink,
			Value: menuChoice{action: actionLink},
		})
	}

	return append(items,
		selector.Item[menuChoice]{Label: "Switch space", Icon: ui.IconSpace, Value: menuChoice{action: actionSpace}},
		selector.Item[menuChoice]{Label: "Switch target", Icon: ui.IconArrow, Value: menuChoice{action: actionTarget}},
		selector.Item[menuChoice]{Label: "Quit", Icon: ui.IconError, Value: menuChoice{action: actionQuit}},
	)
}

// chooseTarget lists local and prod with the current one first
func (a *app) chooseTarget(current storage.Target) (storage.Target, error) {
	targets := []storage.Target{storage.TargetLocal, storage.TargetProd}
	if current == storage.TargetProd {
		targets[0], targets[1] = targets[1], targets[0]
	}

	items := make([]selector.Item[storage.Target], len(targets))
	for i, t := range targets {
		items[i] = selector.Item[storage.Target]{
			Label: fmt.Sprintf("%s (%s)", t, a.endpoints.For(t)),
			Value: t,
		}
	}
	return selector.Run("Deploy target", items)
}

// chooseSpace offers the last space, spaces seen in recent deploys and a
// new one
func (a *app) chooseSpace(target storage.Target) (string, error) {
	var items []selector.Item[spaceChoice]
	seen := make(map[string]bool)
	add := func(name, label string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		items = append(items, selector.Item[spaceChoice]{Label: label, Icon: ui.IconSpace, Value: spaceChoice{name: name}})
	}

	last := a.cfg.LastSpace(target)
	add(last, last+" (last used)")

	endpoint := a.endpoints.For(target)
	for _, r := range a.cfg.RecentArtifacts {
		if r.APIURL == "" || r.APIURL == endpoint {
			add(r.Space, r.Space)
		}
	}
	items = append(items, selector.Item[spaceChoice]{Label: "New space...", Icon: ui.IconStar})

	choice, err := selector.Run(fmt.Sprintf("Space on %s", target), items)
	if err != nil {
		return "", err
	}
	if choice.name != "" {
		return choice.name, nil
	}

	name, err := promptSpace("")
	if err != nil {
		return "", selector.ErrAborted
	}
	return name, nil
}

// linkableArtifacts are the recent charms of space deployed to target's
// endpoint
func (a *app) linkableArtifacts(target storage.Target, space string) []storage.ArtifactRecord {
	endpoint := a.endpoints.For(target)
	var out []storage.ArtifactRecord
	for _, r := range a.cfg.ArtifactsInSpace(space) {
		if r.APIURL == "" || r.APIURL == endpoint {
			out = append(out, r)
		}
	}
	return out
}
