package filtering

import (
	"context"
	"fmt"

	"github.com/outreachkit/prospector/internal/ai"
	"github.com/outreachkit/prospector/internal/prospect"
	"go.uber.org/zap"
)

// Filter represents a single filtering step applied to the prospect list.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, list *prospect.List) (*prospect.List, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger  *zap.Logger
	Company *prospect.Company
	Scorer  ai.Scorer
}

// Step describes the result of executing a filtering step.
type Step struct {
	Name    string
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Run executes the supplied filters sequentially, returning the surviving
// prospects and per-step counters for the stage summary.
func Run(ctx context.Context, deps Deps, steps []Filter, list *prospect.List) (*prospect.List, []Step, error) {
	reports := make([]Step, 0, len(steps))

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, list)
		if err != nil {
			return nil, reports, fmt.Errorf("%s: %w", step.Name(), err)
		}
		info.Name = step.Name()

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		list = next
		reports = append(reports, info)
	}

	return list, reports, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
