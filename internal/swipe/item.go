// Package swipe implements the card-matching engine behind a swipe session:
// a bounded stack of scored cards drawn from an item pool, gesture and key
// interpretation, decision recording with match promotion, card expansion and
// the celebration shown on a match.
//
// A Session is a single-threaded state machine. The host delivers input and
// timer ticks from one goroutine.
package swipe

import "fmt"

// Kind tells the presenter what an item describes.
type Kind string

const (
	KindJob         Kind = "job"
	KindCandidate   Kind = "candidate"
	KindInstruction Kind = "instruction"
)

// ContentType selects which pool a session swipes through.
type ContentType string

const (
	ContentJobs       ContentType = "jobs"
	ContentCandidates ContentType = "candidates"
)

// ItemKind returns the kind of regular items for the content type.
func (c ContentType) ItemKind() Kind {
	if c == ContentCandidates {
		return KindCandidate
	}
	return KindJob
}

// ParseContentType accepts "jobs" or "candidates".
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(s) {
	case ContentJobs, ContentCandidates:
		return ContentType(s), nil
	default:
		return "", fmt.Errorf("unknown content type %q (want %q or %q)", s, ContentJobs, ContentCandidates)
	}
}

// Item is a job or candidate record. Only ID is interpreted by the engine,
// the rest is passed through to the presenter.
type Item struct {
	ID       string         `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Kind     Kind           `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind" validate:"omitempty,oneof=job candidate instruction"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Company  string         `json:"company,omitempty" yaml:"company,omitempty" mapstructure:"company"`
	Location string         `json:"location,omitempty" yaml:"location,omitempty" mapstructure:"location"`
	Salary   string         `json:"salary,omitempty" yaml:"salary,omitempty" mapstructure:"salary"`
	Summary  string         `json:"summary,omitempty" yaml:"summary,omitempty" mapstructure:"summary"`
	Tags     []string       `json:"tags,omitempty" yaml:"tags,omitempty" mapstructure:"tags"`
	Details  []string       `json:"details,omitempty" yaml:"details,omitempty" mapstructure:"details"`
	URL      string         `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url" validate:"omitempty,url"`
	Extra    map[string]any `json:"extra,omitempty" yaml:"extra,omitempty" mapstructure:"extra"`
}

// DisplayName is what a toast or headline calls the item.
func (i Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Title
}

// Instructional reports whether the item is a how-to card rather than a real record.
func (i Item) Instructional() bool {
	return i.Kind == KindInstruction
}

// ScoredItem is an item placed on the stack. The score is computed once when
// the item is drawn and never rerolled while the item stays in the session.
type ScoredItem struct {
	Item
	MatchPercentage int  `json:"match_percentage"`
	Tier            Tier `json:"tier"`
	// StackIndex is the item's ordinal in the pool.
	StackIndex int `json:"stack_index"`
}

// Direction of a swipe decision. Its sign matches the sign of the drag offset.
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}
