package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/patternlab/ctlaunch/internal/deploy"
	"github.com/patternlab/ctlaunch/internal/storage"
	"github.com/patternlab/ctlaunch/internal/ui"
)

var (
	historyOutput string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently used patterns and deployed charms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		return writeHistory(a.out, a.renderer, buildHistory(a.cfg, historyLimit), historyOutput)
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "markdown", "output format: markdown, json or yaml")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "entries per list (0 for all)")
}

type historyPattern struct {
	Name     string    `json:"name" yaml:"name"`
	Path     string    `json:"path" yaml:"path"`
	LastUsed time.Time `json:"lastUsed" yaml:"lastUsed"`
}

type historyArtifact struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Space      string    `json:"space" yaml:"space"`
	URL        string    `json:"url" yaml:"url"`
	OriginPath string    `json:"originPath" yaml:"originPath"`
	DeployedAt time.Time `json:"deployedAt" yaml:"deployedAt"`
}

type historyView struct {
	LastTarget string            `json:"lastTarget" yaml:"lastTarget"`
	Spaces     map[string]string `json:"spaces" yaml:"spaces"`
	LabsDir    string            `json:"labsDir,omitempty" yaml:"labsDir,omitempty"`
	Patterns   []historyPattern  `json:"patterns" yaml:"patterns"`
	Artifacts  []historyArtifact `json:"artifacts" yaml:"artifacts"`
}

func buildHistory(cfg *storage.Config, limit int) historyView {
	view := historyView{
		LastTarget: string(cfg.LastDeploymentTarget),
		Spaces:     map[string]string{},
		LabsDir:    cfg.LabsDir,
		Patterns:   []historyPattern{},
		Artifacts:  []historyArtifact{},
	}
	for _, t := range []storage.Target{storage.TargetLocal, storage.TargetProd} {
		if s := cfg.LastSpace(t); s != "" {
			view.Spaces[string(t)] = s
		}
	}

	for i, p := range cfg.Patterns {
		if limit > 0 && i == limit {
			break
		}
		view.Patterns = append(view.Patterns, historyPattern{Name: storage.DisplayName(p.Path), Path: p.Path, LastUsed: p.LastUsed})
	}
	for i, r := range cfg.RecentArtifacts {
		if limit > 0 && i == limit {
			break
		}
		url := ""
		if r.APIURL != "" {
			url = deploy.ArtifactURL(r.APIURL, r.Space, r.ID)
		}
		view.Artifacts = append(view.Artifacts, historyArtifact{
			ID:         r.ID,
			Name:       r.Name,
			Space:      r.Space,
			URL:        url,
			OriginPath: r.OriginPath,
			DeployedAt: r.DeployedAt,
		})
	}
	return view
}

func writeHistory(w io.Writer, r *ui.Renderer, view historyView, format string) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		return enc.Close()

	case "markdown", "md", "":
		_, err := fmt.Fprintln(w, r.Markdown(historyMarkdown(view)))
		return err
	}
	return fmt.Errorf("unknown output format %q (want markdown, json or yaml)", format)
}

func historyMarkdown(view historyView) string {
	var sb strings.Builder
	sb.WriteString("# Launcher history\n\n")
	if view.LastTarget != "" {
		sb.WriteString(fmt.Sprintf("Last target: **%s**", view.LastTarget))
		if s := view.Spaces[view.LastTarget]; s != "" {
			sb.WriteString(fmt.Sprintf(", space `%s`", s))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Recent patterns\n\n")
	if len(view.Patterns) == 0 {
		sb.WriteString("_None yet._\n\n")
	} else {
		sb.WriteString("| Pattern | Directory | Last used |\n|---|---|---|\n")
		for _, p := range view.Patterns {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", p.Name, filepath.Dir(p.Path), ui.FormatTimeAgo(p.LastUsed)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Deployed charms\n\n")
	if len(view.Artifacts) == 0 {
		sb.WriteString("_None yet._\n")
		return sb.String()
	}
	sb.WriteString("| Charm | Space | Id | Deployed |\n|---|---|---|---|\n")
	for _, a := range view.Artifacts {
		id := shortID(a.ID)
		if a.URL != "" {
			id = fmt.Sprintf("[%s](%s)", id, a.URL)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", a.Name, a.Space, id, ui.FormatTimeAgo(a.DeployedAt)))
	}
	return sb.String()
}

func shortID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "…" + id[len(id)-6:]
}
