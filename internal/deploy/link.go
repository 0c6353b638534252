package deploy

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/patternlab/ctlaunch/internal/links"
)

// LinkRequest wires SourceID's output field into TargetID's input field
type LinkRequest struct {
	Space      string
	Endpoint   string
	SourceID   string
	SourcePath []string
	TargetID   string
	TargetPath []string
}

// LinkRequestFor builds the request for a suggestion. The endpoint recorded
// with the source charm is used unless it is empty.
func LinkRequestFor(s links.Suggestion, space, endpoint string) LinkRequest {
	if s.Source.Artifact.APIURL != "" {
		endpoint = s.Source.Artifact.APIURL
	}
	return LinkRequest{
		Space:      space,
		Endpoint:   endpoint,
		SourceID:   s.Source.Artifact.ID,
		SourcePath: s.Source.Field.Path,
		TargetID:   s.Target.Artifact.ID,
		TargetPath: s.Target.Field.Path,
	}
}

// SourceRef is the "id/path/to/field" reference of the producer side
func (r LinkRequest) SourceRef() string {
	return fieldRef(r.SourceID, r.SourcePath)
}

// TargetRef is the "id/path/to/field" reference of the consumer side
func (r LinkRequest) TargetRef() string {
	return fieldRef(r.TargetID, r.TargetPath)
}

func fieldRef(id string, path []string) string {
	return strings.Join(append([]string{id}, path...), "/")
}

// Linker runs `charm link` through the ct CLI
type Linker struct {
	cli    CLI
	runner Runner
	logger *zap.Logger
}

// NewLinker creates a linker
func NewLinker(cli CLI, runner Runner, logger *zap.Logger) *Linker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Linker{cli: cli, runner: runner, logger: logger}
}

// Link executes the request. On failure the returned error carries the
// command's stderr.
func (l *Linker) Link(ctx context.Context, req LinkRequest) error {
	if req.SourceID == "" || req.TargetID == "" {
		return fmt.Errorf("link: both charm ids are required")
	}
	if req.Space == "" {
		return fmt.Errorf("link: no space")
	}

	src, tgt := req.SourceRef(), req.TargetRef()
	cmd := l.cli.command(req.Endpoint, "charm", "link", "--space", req.Space, src, tgt)
	result, err := l.runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("link %s -> %s: %w", src, tgt, err)
	}
	if !result.Success() {
		detail := strings.TrimSpace(result.Stderr)
		if detail == "" {
			detail = strings.TrimSpace(result.Stdout)
		}
		return fmt.Errorf("link %s -> %s failed (exit code %d): %s", src, tgt, result.ExitCode, detail)
	}

	l.logger.Debug("linked", zap.String("source", src), zap.String("target", tgt), zap.String("space", req.Space))
	return nil
}
