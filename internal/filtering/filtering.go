// Package filtering narrows an item pool before a swipe session opens.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hh-swiper/internal/headhunter"
	"github.com/spigell/hh-swiper/internal/swipe"
)

// Filter represents a single filtering step applied to the pool.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, items []swipe.Item) ([]swipe.Item, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	HH     *headhunter.Client
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	// Companies are excluded by name (case-insensitive) or hh employer id.
	Companies   []string
	MatchesFile string
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

// Default returns the standard steps in the order they run.
func Default() []Filter {
	return []Filter{
		NewAlreadyMatched(),
		NewCompanies(),
		NewWithTest(),
		NewAppliedHistory(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially, returning what is left of the pool.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, items []swipe.Item) ([]swipe.Item, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, items)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		items = next
	}

	return items, nil
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

// exclude keeps the items drop rejects and returns the ids it removed. Order
// is preserved since it decides which card is drawn first.
func exclude(items []swipe.Item, drop func(swipe.Item) bool) ([]swipe.Item, []string) {
	kept := make([]swipe.Item, 0, len(items))
	var removed []string
	for _, item := range items {
		if drop(item) {
			removed = append(removed, item.ID)
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}

func stepOf(initial int, left []swipe.Item) Step {
	return Step{Initial: initial, Dropped: initial - len(left), Left: len(left)}
}
