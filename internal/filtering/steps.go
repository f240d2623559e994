package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-swiper/internal/matches"
	"github.com/spigell/hh-swiper/internal/swipe"
)

// toggle carries the enable state shared by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type alreadyMatchedFilter struct {
	toggle
	path string
}

// NewAlreadyMatched creates a filter that removes items stored in the matches file.
func NewAlreadyMatched() Filter {
	return &alreadyMatchedFilter{}
}

func (f *alreadyMatchedFilter) Name() string { return "already_matched" }

func (f *alreadyMatchedFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.MatchesFile)
	}
	return nil
}

func (f *alreadyMatchedFilter) Apply(_ context.Context, deps Deps, items []swipe.Item) ([]swipe.Item, Step, error) {
	initial := len(items)
	if f.path == "" {
		return items, stepOf(initial, items), nil
	}

	store, err := matches.Load(f.path)
	if err != nil {
		return items, Step{}, fmt.Errorf("getting matched items from file: %w", err)
	}

	ids := make(map[string]struct{}, store.Len())
	for _, id := range store.IDs() {
		ids[id] = struct{}{}
	}

	left, removed := exclude(items, func(item swipe.Item) bool {
		_, ok := ids[item.ID]
		return ok
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding already matched items",
			zap.String("path", f.path),
			zap.Strings("excluded_items", removed),
			zap.Int("items_left", len(left)),
		)
	}

	return left, stepOf(initial, left), nil
}

func (f *alreadyMatchedFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type companiesFilter struct {
	toggle
	companies []string
}

// NewCompanies creates a filter that removes items of excluded companies.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg == nil {
		return nil
	}
	for _, company := range cfg.Companies {
		company = strings.TrimSpace(company)
		if company == "" {
			return fmt.Errorf("empty company name in exclude list")
		}
		f.companies = append(f.companies, company)
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, items []swipe.Item) ([]swipe.Item, Step, error) {
	initial := len(items)
	if len(f.companies) == 0 {
		return items, stepOf(initial, items), nil
	}

	left, removed := exclude(items, f.excluded)
	if len(removed) > 0 {
		deps.Logger.Info("excluding items by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_items", removed),
			zap.Int("items_left", len(left)),
		)
	}

	return left, stepOf(initial, left), nil
}

func (f *companiesFilter) excluded(item swipe.Item) bool {
	var employerID string
	if id, ok := item.Extra["employer_id"]; ok && id != nil {
		employerID = fmt.Sprint(id)
	}
	for _, company := range f.companies {
		if strings.EqualFold(company, item.Company) || (employerID != "" && company == employerID) {
			return true
		}
	}
	return false
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type withTestFilter struct {
	toggle
}

// NewWithTest creates a filter that removes hh.ru vacancies requiring a test.
func NewWithTest() Filter {
	return &withTestFilter{}
}

func (f *withTestFilter) Name() string { return "with_test" }

func (f *withTestFilter) Validate(*Config) error { return nil }

func (f *withTestFilter) Apply(_ context.Context, deps Deps, items []swipe.Item) ([]swipe.Item, Step, error) {
	initial := len(items)
	left, removed := exclude(items, func(item swipe.Item) bool {
		hasTest, _ := item.Extra["has_test"].(bool)
		return hasTest
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding vacancies with tests",
			zap.Strings("excluded_items", removed),
			zap.Int("items_left", len(left)),
		)
	}

	return left, stepOf(initial, left), nil
}

func (f *withTestFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type appliedHistoryFilter struct {
	toggle
}

// NewAppliedHistory creates a filter that removes vacancies found in the
// user's hh.ru negotiations.
func NewAppliedHistory() Filter {
	return &appliedHistoryFilter{}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Validate(*Config) error { return nil }

func (f *appliedHistoryFilter) Apply(_ context.Context, deps Deps, items []swipe.Item) ([]swipe.Item, Step, error) {
	initial := len(items)
	if deps.HH == nil || deps.HH.Anonymous() {
		deps.Logger.Debug("skipping negotiations lookup", zap.String("reason", "no hh token"))
		return items, stepOf(initial, items), nil
	}

	negotiations, err := deps.HH.GetNegotiations()
	if err != nil {
		return items, Step{}, fmt.Errorf("get my negotiations: %w", err)
	}

	applied := make(map[string]struct{})
	for _, id := range negotiations.VacanciesIDs() {
		applied[id] = struct{}{}
	}

	left, removed := exclude(items, func(item swipe.Item) bool {
		_, ok := applied[item.ID]
		return ok
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding vacancies based on my negotiations",
			zap.Strings("excluded_items", removed),
			zap.Int("items_left", len(left)),
		)
	}

	return left, stepOf(initial, left), nil
}

func (f *appliedHistoryFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
