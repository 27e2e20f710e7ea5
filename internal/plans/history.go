package plans

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"nutrivision-go/internal/apperr"
)

const (
	KindDiet    = "diet"
	KindWorkout = "workout"
)

func ValidKind(kind string) bool {
	return kind == KindDiet || kind == KindWorkout
}

// ExportFilename names a downloadable plan. Index 0 is the plan currently
// on screen; past plans are numbered from 1, newest first.
func ExportFilename(kind string, index int) string {
	if index <= 0 {
		return fmt.Sprintf("%s_plan.txt", kind)
	}
	return fmt.Sprintf("%s_plan_%d.txt", kind, index)
}

// Entry is one stored plan in a user's history.
type Entry struct {
	Index     int       `json:"index"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	Filename  string    `json:"filename"`
}

// History lists stored plans of the given kind, newest first.
func (p *Planner) History(ctx context.Context, userID uint, kind string) ([]Entry, error) {
	type row struct {
		text string
		at   time.Time
	}
	var rows []row
	switch kind {
	case KindDiet:
		list, err := p.diets.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			rows = append(rows, row{r.PlanText, r.CreatedAt})
		}
	case KindWorkout:
		list, err := p.workouts.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			rows = append(rows, row{r.PlanText, r.CreatedAt})
		}
	default:
		return nil, apperr.Invalid("kind", "unknown plan kind")
	}

	out := make([]Entry, 0, len(rows))
	for i, r := range rows {
		out = append(out, Entry{Index: i + 1, Plan: r.text, CreatedAt: r.at, Filename: ExportFilename(kind, i+1)})
	}
	return out, nil
}

// PastPlan returns the index-th entry of History (1-based).
func (p *Planner) PastPlan(ctx context.Context, userID uint, kind string, index int) (*Entry, error) {
	entries, err := p.History(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > len(entries) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "%s plan %d", kind, index)
	}
	return &entries[index-1], nil
}

// CurrentPlan returns the most recent plan of the given kind.
func (p *Planner) CurrentPlan(ctx context.Context, userID uint, kind string) (*Entry, error) {
	var (
		text string
		at   time.Time
	)
	switch kind {
	case KindDiet:
		r, err := p.diets.Latest(ctx, userID)
		if err != nil {
			return nil, err
		}
		text, at = r.PlanText, r.CreatedAt
	case KindWorkout:
		r, err := p.workouts.Latest(ctx, userID)
		if err != nil {
			return nil, err
		}
		text, at = r.PlanText, r.CreatedAt
	default:
		return nil, apperr.Invalid("kind", "unknown plan kind")
	}
	return &Entry{Plan: text, CreatedAt: at, Filename: ExportFilename(kind, 0)}, nil
}
