package storage

import "time"

const (
	// MaxPatternHistory caps the recently used pattern list
	MaxPatternHistory = 50
	// MaxRecentArtifacts caps the recently deployed artifact list
	MaxRecentArtifacts = 100
)

// Target identifies a deployment environment
type Target string

const (
	TargetLocal Target = "local"
	TargetProd  Target = "prod"
)

// Config is the launcher history persisted between runs
type Config struct {
	LastSpaceLocal       string           `json:"lastSpaceLocal,omitempty"`
	LastSpaceProd        string           `json:"lastSpaceProd,omitempty"`
	LastDeploymentTarget Target           `json:"lastDeploymentTarget,omitempty"`
	LabsDir              string           `json:"labsDir,omitempty"`
	Patterns             []PatternRecord  `json:"patterns"`
	RecentArtifacts      []ArtifactRecord `json:"recentArtifacts"`
}

// PatternRecord remembers a pattern file the user deployed
type PatternRecord struct {
	Path     string    `json:"path"`
	LastUsed time.Time `json:"lastUsed"`
}

// ArtifactRecord remembers a successful deployment
type ArtifactRecord struct {
	Space      string    `json:"space"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OriginPath string    `json:"originPath"`
	DeployedAt time.Time `json:"deployedAt"`
	APIURL     string    `json:"apiUrl"`
}

// legacyConfig carries fields written by older launcher versions
type legacyConfig struct {
	LastSpace string `json:"lastSpace"`
}

// DefaultConfig returns an empty history
func DefaultConfig() *Config {
	return &Config{
		LastDeploymentTarget: TargetLocal,
		Patterns:             []PatternRecord{},
		RecentArtifacts:      []ArtifactRecord{},
	}
}
