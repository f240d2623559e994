// Package ai drafts the first message sent after a match.
package ai

import (
	"context"

	"github.com/spigell/hh-swiper/internal/swipe"
)

// Drafter writes a short introduction for a matched item.
type Drafter interface {
	Draft(ctx context.Context, item swipe.ScoredItem) (string, error)
}

// Nop never drafts anything. It stands in when no provider is configured.
type Nop struct{}

func (Nop) Draft(context.Context, swipe.ScoredItem) (string, error) { return "", nil }
