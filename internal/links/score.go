package links

import (
	"strings"

	"github.com/patternlab/ctlaunch/internal/compat"
	"github.com/patternlab/ctlaunch/internal/schema"
)

// Scoring weights, strongest signal first.
const (
	scoreCompatible   = 100
	scoreMaybe        = 50
	scoreExactName    = 50
	scorePartialName  = 25
	scoreRecencyScale = 2
	recencyWindow     = 10
	scoreTopLevel     = 10
)

// Score rates a candidate link. Recency indexes count from 0 for the most
// recently deployed artifact.
func Score(verdict compat.Verdict, output, input schema.FlatField, producerRecency, consumerRecency int) int {
	score := 0

	switch verdict {
	case compat.Compatible:
		score += scoreCompatible
	case compat.Maybe:
		score += scoreMaybe
	}

	out, in := strings.ToLower(output.Name()), strings.ToLower(input.Name())
	switch {
	case out != "" && out == in:
		score += scoreExactName
	case out != "" && in != "" && (strings.Contains(out, in) || strings.Contains(in, out)):
		score += scorePartialName
	}

	score += recencyScore(producerRecency) + recencyScore(consumerRecency)

	if output.Depth() == 1 {
		score += scoreTopLevel
	}
	if input.Depth() == 1 {
		score += scoreTopLevel
	}
	return score
}

func recencyScore(index int) int {
	if index < 0 {
		index = 0
	}
	if index > recencyWindow {
		index = recencyWindow
	}
	return scoreRecencyScale * (recencyWindow - index)
}
