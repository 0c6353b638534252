// Package links ranks candidate links between recently deployed artifacts.
package links

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/patternlab/ctlaunch/internal/compat"
	"github.com/patternlab/ctlaunch/internal/schema"
	"github.com/patternlab/ctlaunch/internal/storage"
)

const (
	// DefaultMaxArtifacts bounds how many artifacts are inspected per pass
	DefaultMaxArtifacts = 10
	// DefaultMaxCandidates bounds how many suggestions are returned
	DefaultMaxCandidates = 10
)

// Inspection is the current input and output shape of a deployed artifact
type Inspection struct {
	Name   string
	Source any
	Result any
}

// Inspector fetches the live shape of an artifact
type Inspector interface {
	Inspect(ctx context.Context, artifact storage.ArtifactRecord) (*Inspection, error)
}

// Endpoint is one side of a suggested link
type Endpoint struct {
	Artifact storage.ArtifactRecord
	Name     string
	Field    schema.FlatField
}

// Ref returns the "artifactId/path/to/field" reference for the link command
func (e Endpoint) Ref() string {
	return e.Artifact.ID + "/" + e.Field.Ref()
}

// Suggestion is a scored producer -> consumer link candidate
type Suggestion struct {
	Source  Endpoint
	Target  Endpoint
	Verdict compat.Verdict
	Score   int
}

// Label renders the suggestion for a menu
func (s Suggestion) Label() string {
	marker := "✓"
	if s.Verdict == compat.Maybe {
		marker = "?"
	}
	source := fmt.Sprintf("%s.%s (%s)", s.Source.Name, s.Source.Field.FullPath, s.Source.Field.Type)
	if s.Source.Field.Sample != "" {
		source += " = " + s.Source.Field.Sample
	}
	return fmt.Sprintf("%s %s → %s.%s (%s)",
		marker, source,
		s.Target.Name, s.Target.Field.FullPath, s.Target.Field.Type)
}

// inspected is an artifact whose shape was fetched successfully
type inspected struct {
	record  storage.ArtifactRecord
	name    string
	recency int
	outputs []schema.FlatField
	inputs  []schema.FlatField
}

// Engine generates link suggestions
type Engine struct {
	inspector    Inspector
	checker      compat.Checker
	logger       *zap.Logger
	maxArtifacts int
	maxDepth     int
}

// Option configures an Engine
type Option func(*Engine)

// WithMaxArtifacts bounds the number of inspected artifacts
func WithMaxArtifacts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxArtifacts = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine backed by inspector
func NewEngine(inspector Inspector, opts ...Option) *Engine {
	e := &Engine{
		inspector:    inspector,
		checker:      compat.Default,
		logger:       zap.NewNop(),
		maxArtifacts: DefaultMaxArtifacts,
		maxDepth:     schema.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate inspects the most recent artifacts and returns the best
// maxCandidates links between them, highest score first. Artifacts that
// fail inspection are skipped.
func (e *Engine) Generate(ctx context.Context, artifacts []storage.ArtifactRecord, maxCandidates int) []Suggestion {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	if len(artifacts) > e.maxArtifacts {
		artifacts = artifacts[:e.maxArtifacts]
	}

	var pool []inspected
	for i, a := range artifacts {
		if ctx.Err() != nil {
			break
		}
		result, err := e.inspector.Inspect(ctx, a)
		if err != nil {
			e.logger.Debug("skipping artifact, inspection failed",
				zap.String("id", a.ID), zap.String("space", a.Space), zap.Error(err))
			continue
		}

		name := result.Name
		if name == "" {
			name = a.Name
		}
		pool = append(pool, inspected{
			record:  a,
			name:    name,
			recency: i,
			outputs: schema.Flatten(result.Result, nil, e.maxDepth),
			inputs:  schema.Flatten(result.Source, nil, e.maxDepth),
		})
	}

	if len(pool) < 2 {
		return nil
	}

	var suggestions []Suggestion
	for _, producer := range pool {
		for _, consumer := range pool {
			if producer.record.ID == consumer.record.ID {
				continue
			}
			suggestions = append(suggestions, e.pairSuggestions(producer, consumer)...)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > maxCandidates {
		suggestions = suggestions[:maxCandidates]
	}
	return suggestions
}

func (e *Engine) pairSuggestions(producer, consumer inspected) []Suggestion {
	var out []Suggestion
	for _, output := range producer.outputs {
		if len(output.Path) == 0 {
			continue
		}
		for _, input := range consumer.inputs {
			if len(input.Path) == 0 {
				continue
			}
			verdict := e.checker.Check(output.Schema, input.Schema)
			if verdict == compat.Incompatible {
				continue
			}
			out = append(out, Suggestion{
				Source:  Endpoint{Artifact: producer.record, Name: producer.name, Field: output},
				Target:  Endpoint{Artifact: consumer.record, Name: consumer.name, Field: input},
				Verdict: verdict,
				Score:   Score(verdict, output, input, producer.recency, consumer.recency),
			})
		}
	}
	return out
}
