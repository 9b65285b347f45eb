package observability

import (
	"context"

	"github.com/bkyoung/lint-scout/internal/intersect"
)

// DecisionTracer adapts a Logger into an intersect.TraceSink so verbose runs
// can explain why each finding was kept or dropped without the matching
// logic knowing anything about logging.
type DecisionTracer struct {
	logger Logger
}

// NewDecisionTracer creates a trace sink writing through the given logger.
func NewDecisionTracer(logger Logger) *DecisionTracer {
	return &DecisionTracer{logger: logger}
}

// Decision implements intersect.TraceSink.
func (t *DecisionTracer) Decision(d intersect.Decision) {
	fields := map[string]interface{}{
		"tool":   d.Finding.Tool,
		"file":   d.Finding.File,
		"lines":  [2]int{d.Finding.LineStart, d.Finding.LineEnd},
		"kept":   d.Kept,
		"reason": d.Reason,
	}
	if d.MatchedKey != "" {
		fields["matchedKey"] = d.MatchedKey
	}
	t.logger.LogDebug(context.Background(), "finding decision", fields)
}
