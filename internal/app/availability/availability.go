// Package availability answers "is this interval free for the team" and,
// when it is not, proposes one later interval of the same length.
package availability

import (
	"context"
	"time"

	"github.com/dalemusser/assetflow/internal/domain/models"
)

// DefaultGap separates the end of a rejected interval from the start of the
// suggested one.
const DefaultGap = 30 * time.Minute

// ConflictFinder reports slots overlapping [start, end) within a team.
type ConflictFinder interface {
	FindConflicts(ctx context.Context, teamID string, start, end time.Time, ignoreAssetID string) ([]models.Conflict, error)
}

// Suggestion is a candidate interval offered when the requested one is taken.
// It is not checked against existing slots.
type Suggestion struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of an availability check.
type Result struct {
	Available  bool              `json:"available"`
	Conflicts  []models.Conflict `json:"conflicts"`
	Suggestion *Suggestion       `json:"suggestion"`
}

// Suggester wraps a ConflictFinder with the single-shot suggestion rule.
type Suggester struct {
	finder ConflictFinder
	gap    time.Duration
}

// New returns a Suggester. A gap <= 0 uses DefaultGap.
func New(finder ConflictFinder, gap time.Duration) *Suggester {
	if gap <= 0 {
		gap = DefaultGap
	}
	return &Suggester{finder: finder, gap: gap}
}

// Check looks up conflicts for [start, end) and, if any exist, suggests
// [end+gap, end+gap+(end-start)). Interval validation is left to the finder.
func (s *Suggester) Check(ctx context.Context, teamID string, start, end time.Time, excludeAssetID string) (Result, error) {
	conflicts, err := s.finder.FindConflicts(ctx, teamID, start, end, excludeAssetID)
	if err != nil {
		return Result{}, err
	}
	if len(conflicts) == 0 {
		return Result{Available: true, Conflicts: []models.Conflict{}}, nil
	}
	dur := end.Sub(start)
	next := end.Add(s.gap)
	return Result{
		Available: false,
		Conflicts: conflicts,
		Suggestion: &Suggestion{
			Start:    next,
			End:      next.Add(dur),
			Duration: dur,
		},
	}, nil
}
