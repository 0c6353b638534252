package deploy

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/patternlab/ctlaunch/internal/links"
	"github.com/patternlab/ctlaunch/internal/schema"
	"github.com/patternlab/ctlaunch/internal/storage"
)

// CLIInspector fetches charm shapes with `charm inspect --json`
type CLIInspector struct {
	cli       CLI
	endpoints Endpoints
	target    storage.Target
	runner    Runner
	logger    *zap.Logger
}

var _ links.Inspector = (*CLIInspector)(nil)

// NewCLIInspector creates an inspector. Artifacts recorded without an API
// endpoint are inspected against the endpoint of target.
func NewCLIInspector(cli CLI, endpoints Endpoints, target storage.Target, runner Runner, logger *zap.Logger) *CLIInspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIInspector{cli: cli, endpoints: endpoints, target: target, runner: runner, logger: logger}
}

// Inspect implements links.Inspector
func (i *CLIInspector) Inspect(ctx context.Context, a storage.ArtifactRecord) (*links.Inspection, error) {
	endpoint := a.APIURL
	if endpoint == "" {
		endpoint = i.endpoints.For(i.target)
	}

	cmd := i.cli.command(endpoint, "charm", "inspect", "--space", a.Space, "--charm", a.ID, "--json")
	result, err := i.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", a.ID, err)
	}
	if !result.Success() {
		return nil, fmt.Errorf("inspect %s: exit code %d: %s", a.ID, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	inspection, err := ParseInspection([]byte(result.Stdout))
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", a.ID, err)
	}
	return inspection, nil
}

// ParseInspection decodes the {name, source, result} document printed by
// the inspect command. Text around the JSON object is ignored.
func ParseInspection(data []byte) (*links.Inspection, error) {
	value, err := schema.Decode(data)
	if err != nil {
		start, end := bytes.IndexByte(data, '{'), bytes.LastIndexByte(data, '}')
		if start < 0 || end <= start {
			return nil, fmt.Errorf("decode inspect output: %w", err)
		}
		if value, err = schema.Decode(data[start : end+1]); err != nil {
			return nil, fmt.Errorf("decode inspect output: %w", err)
		}
	}

	obj, ok := value.(*schema.Object)
	if !ok {
		return nil, fmt.Errorf("inspect output is %T, not an object", value)
	}

	inspection := &links.Inspection{}
	if name, ok := obj.Get("name"); ok {
		inspection.Name, _ = name.(string)
	}
	inspection.Source, _ = obj.Get("source")
	inspection.Result, _ = obj.Get("result")
	return inspection, nil
}
