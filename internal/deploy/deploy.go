package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patternlab/ctlaunch/internal/storage"
)

// Status classifies a deploy outcome
type Status int

const (
	// StatusDeployed means the command succeeded and an id was found
	StatusDeployed Status = iota
	// StatusNoID means the command succeeded but no id could be extracted
	StatusNoID
	// StatusFailed means the command exited non-zero or could not run
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDeployed:
		return "deployed"
	case StatusNoID:
		return "deployed-no-id"
	default:
		return "failed"
	}
}

// IDMatcher recovers a charm id from command output. The first capture group
// of Pattern is the id.
type IDMatcher struct {
	Name     string
	Pattern  *regexp.Regexp
	Validate func(string) bool
}

func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

const uuidExpr = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// DefaultIDMatchers are tried in order; the first match wins
var DefaultIDMatchers = []IDMatcher{
	{Name: "cid-line", Pattern: regexp.MustCompile(`(?m)^\s*(baed[a-z2-7]{50,})\s*$`)},
	{Name: "cid-trailing", Pattern: regexp.MustCompile(`(baed[a-z2-7]{50,})\s*$`)},
	{Name: "uuid-line", Pattern: regexp.MustCompile(`(?m)^\s*(` + uuidExpr + `)\s*$`), Validate: validUUID},
	{Name: "charm-uuid", Pattern: regexp.MustCompile(`charm:\s*(` + uuidExpr + `)`), Validate: validUUID},
	{Name: "url-uuid", Pattern: regexp.MustCompile(`https?://\S*/(` + uuidExpr + `)\b`), Validate: validUUID},
}

// ExtractID returns the id found by the first matching matcher
func ExtractID(output string, matchers []IDMatcher) (string, bool) {
	for _, m := range matchers {
		for _, sub := range m.Pattern.FindAllStringSubmatch(output, -1) {
			if len(sub) < 2 {
				continue
			}
			if m.Validate == nil || m.Validate(sub[1]) {
				return sub[1], true
			}
		}
	}
	return "", false
}

// networkMarkers are lowercase fragments of connection failures
var networkMarkers = []string{
	"connection refused",
	"econnrefused",
	"timed out",
	"timeout",
	"enotfound",
	"getaddrinfo",
	"dns",
	"fetch failed",
	"could not resolve",
	"network",
}

// NetworkHintText is shown when a production deploy looks like a network failure
const NetworkHintText = "Could not reach the production endpoint. Connect to the tailnet VPN and retry."

// NetworkHint reports whether output looks like a network failure
func NetworkHint(output string) (string, bool) {
	lower := strings.ToLower(output)
	for _, marker := range networkMarkers {
		if strings.Contains(lower, marker) {
			return NetworkHintText, true
		}
	}
	return "", false
}

// Request describes one deploy
type Request struct {
	Path   string
	Space  string
	Target storage.Target
}

// Outcome is the result of a deploy
type Outcome struct {
	Status   Status
	ID       string
	Path     string
	Space    string
	Target   storage.Target
	Endpoint string
	ExitCode int
	Output   string
	Hint     string
}

// URL returns the charm URL, or the space URL when no id is known
func (o *Outcome) URL() string {
	if o.ID == "" {
		return SpaceURL(o.Endpoint, o.Space)
	}
	return ArtifactURL(o.Endpoint, o.Space, o.ID)
}

// Err returns a *FailedError for failed deploys and nil otherwise
func (o *Outcome) Err() error {
	if o.Status != StatusFailed {
		return nil
	}
	return &FailedError{Path: o.Path, Target: o.Target, ExitCode: o.ExitCode}
}

// FailedError marks a deploy whose output has already been shown
type FailedError struct {
	Path     string
	Target   storage.Target
	ExitCode int
}

func (e *FailedError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("deploy of %s to %s failed (exit code %d)", filepath.Base(e.Path), e.Target, e.ExitCode)
	}
	return fmt.Sprintf("deploy of %s to %s failed", filepath.Base(e.Path), e.Target)
}

// Deployer runs `charm new` through the ct CLI
type Deployer struct {
	cli       CLI
	endpoints Endpoints
	runner    Runner
	matchers  []IDMatcher
	logger    *zap.Logger
}

// DeployerOption configures a Deployer
type DeployerOption func(*Deployer)

// WithIDMatchers replaces the id matchers
func WithIDMatchers(matchers []IDMatcher) DeployerOption {
	return func(d *Deployer) {
		d.matchers = matchers
	}
}

// WithDeployLogger sets the logger
func WithDeployLogger(logger *zap.Logger) DeployerOption {
	return func(d *Deployer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDeployer creates a deployer
func NewDeployer(cli CLI, endpoints Endpoints, runner Runner, opts ...DeployerOption) *Deployer {
	d := &Deployer{
		cli:       cli,
		endpoints: endpoints,
		runner:    runner,
		matchers:  DefaultIDMatchers,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deploy deploys req.Path into req.Space. Command failures are reported in
// the outcome; the error is only for invalid requests.
func (d *Deployer) Deploy(ctx context.Context, req Request) (*Outcome, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("deploy: no pattern path")
	}
	if req.Space == "" {
		return nil, fmt.Errorf("deploy: no space")
	}
	path, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, fmt.Errorf("deploy: resolve %s: %w", req.Path, err)
	}

	endpoint := d.endpoints.For(req.Target)
	outcome := &Outcome{
		Path:     path,
		Space:    req.Space,
		Target:   req.Target,
		Endpoint: endpoint,
	}

	cmd := d.cli.command(endpoint, "charm", "new", "--space", req.Space, path)
	result, err := d.runner.Run(ctx, cmd)
	outcome.Output = result.Combined()
	outcome.ExitCode = result.ExitCode

	if err != nil || !result.Success() {
		outcome.Status = StatusFailed
		if err != nil {
			outcome.Output = strings.TrimRight(outcome.Output, "\n")
			if outcome.Output != "" {
				outcome.Output += "\n"
			}
			outcome.Output += err.Error()
		}
		if req.Target == storage.TargetProd {
			outcome.Hint, _ = NetworkHint(outcome.Output)
		}
		d.logger.Debug("deploy failed",
			zap.String("path", path), zap.String("space", req.Space),
			zap.Int("exit_code", result.ExitCode), zap.Error(err))
		return outcome, nil
	}

	if id, ok := ExtractID(result.Stdout, d.matchers); ok {
		outcome.Status = StatusDeployed
		outcome.ID = id
	} else {
		outcome.Status = StatusNoID
		d.logger.Warn("deploy succeeded but no charm id found in output", zap.String("path", path))
	}
	return outcome, nil
}
