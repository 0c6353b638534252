package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// sourceExtensions are stripped from file names to build display names
var sourceExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// Store reads and writes the launcher history file
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a store backed by the JSON file at path
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the history file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the history file. A missing or corrupt file yields defaults.
func (s *Store) Load() *Config {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("reading history file", zap.String("path", s.path), zap.Error(err))
		}
		return DefaultConfig()
	}

	cfg, err := parseConfig(data)
	if err != nil {
		s.logger.Warn("history file is corrupt, starting fresh", zap.String("path", s.path), zap.Error(err))
		return DefaultConfig()
	}
	return cfg
}

func parseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Older files kept a single lastSpace shared by every target
	var legacy legacyConfig
	if err := json.Unmarshal(data, &legacy); err == nil && legacy.LastSpace != "" {
		target := cfg.LastDeploymentTarget
		if target != TargetProd {
			target = TargetLocal
		}
		if cfg.LastSpace(target) == "" {
			cfg.SetLastSpace(target, legacy.LastSpace)
		}
	}

	if cfg.LastDeploymentTarget != TargetProd {
		cfg.LastDeploymentTarget = TargetLocal
	}
	if cfg.Patterns == nil {
		cfg.Patterns = []PatternRecord{}
	}
	if cfg.RecentArtifacts == nil {
		cfg.RecentArtifacts = []ArtifactRecord{}
	}
	return cfg, nil
}

// Save overwrites the history file with cfg
func (s *Store) Save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// LastSpace returns the space most recently used with target
func (c *Config) LastSpace(target Target) string {
	if target == TargetProd {
		return c.LastSpaceProd
	}
	return c.LastSpaceLocal
}

// SetLastSpace records the space used with target
func (c *Config) SetLastSpace(target Target, space string) {
	if target == TargetProd {
		c.LastSpaceProd = space
		return
	}
	c.LastSpaceLocal = space
}

// SetLastTarget records the deployment target choice
func (c *Config) SetLastTarget(target Target) {
	c.LastDeploymentTarget = target
}

// RecordPatternUsage moves path to the front of the pattern history
func (c *Config) RecordPatternUsage(path string, at time.Time) {
	patterns := make([]PatternRecord, 0, len(c.Patterns)+1)
	patterns = append(patterns, PatternRecord{Path: path, LastUsed: at})
	for _, p := range c.Patterns {
		if p.Path != path {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) > MaxPatternHistory {
		patterns = patterns[:MaxPatternHistory]
	}
	c.Patterns = patterns
}

// RecordArtifact moves a deployed artifact to the front of the recent list
func (c *Config) RecordArtifact(id, space, apiURL, originPath string, at time.Time) {
	record := ArtifactRecord{
		Space:      space,
		ID:         id,
		Name:       DisplayName(originPath),
		OriginPath: originPath,
		DeployedAt: at,
		APIURL:     apiURL,
	}

	artifacts := make([]ArtifactRecord, 0, len(c.RecentArtifacts)+1)
	artifacts = append(artifacts, record)
	for _, a := range c.RecentArtifacts {
		if a.ID != id {
			artifacts = append(artifacts, a)
		}
	}
	if len(artifacts) > MaxRecentArtifacts {
		artifacts = artifacts[:MaxRecentArtifacts]
	}
	c.RecentArtifacts = artifacts
}

// PruneMissingPatterns drops history entries whose file is gone and
// returns how many were removed. Any stat failure counts as missing.
func (c *Config) PruneMissingPatterns() int {
	kept := make([]PatternRecord, 0, len(c.Patterns))
	for _, p := range c.Patterns {
		info, err := os.Stat(p.Path)
		if err != nil || info.IsDir() {
			continue
		}
		kept = append(kept, p)
	}
	removed := len(c.Patterns) - len(kept)
	c.Patterns = kept
	return removed
}

// RecentPatternDirs returns up to n distinct directories of recent patterns
func (c *Config) RecentPatternDirs(n int) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range c.Patterns {
		dir := filepath.Dir(p.Path)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
		if len(dirs) == n {
			break
		}
	}
	return dirs
}

// ArtifactsInSpace returns recent artifacts deployed to space, most recent first
func (c *Config) ArtifactsInSpace(space string) []ArtifactRecord {
	var result []ArtifactRecord
	for _, a := range c.RecentArtifacts {
		if a.Space == space {
			result = append(result, a)
		}
	}
	return result
}

// DisplayName derives a short name from a pattern file path
func DisplayName(path string) string {
	base := filepath.Base(path)
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}
