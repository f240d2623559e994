package swipe

import (
	"fmt"
	"math/rand"
	"time"
)

// Tier is the visual band of a match percentage.
type Tier string

const (
	TierGreen  Tier = "green"
	TierYellow Tier = "yellow"
	TierRed    Tier = "red"
)

// DefaultTierCycle cycles tiers by pool ordinal so any visible window mixes match quality.
var DefaultTierCycle = []Tier{TierGreen, TierYellow, TierRed}

type scoreRange struct {
	min, max int
}

var tierRanges = map[Tier]scoreRange{
	TierGreen:  {90, 100},
	TierYellow: {75, 89},
	TierRed:    {50, 74},
}

// Rand is the random source used for scores, match promotion and particles.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// NewRand returns a time-seeded source for production use.
func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// ParseTier accepts green, yellow or red.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierRanges[t]; !ok {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// TierFor derives the tier of a percentage.
func TierFor(percentage int) Tier {
	switch {
	case percentage >= 90:
		return TierGreen
	case percentage >= 75:
		return TierYellow
	default:
		return TierRed
	}
}

// Scorer assigns match percentages. It is a generator: scoring the same
// ordinal twice may give different numbers within the same tier.
type Scorer struct {
	rand  Rand
	cycle []Tier
}

// NewScorer returns a scorer. An empty cycle falls back to DefaultTierCycle.
func NewScorer(r Rand, cycle []Tier) *Scorer {
	if r == nil {
		r = NewRand()
	}
	if len(cycle) == 0 {
		cycle = DefaultTierCycle
	}
	return &Scorer{rand: r, cycle: append([]Tier(nil), cycle...)}
}

// TierForOrdinal returns the tier the cycle assigns to a pool ordinal.
func (s *Scorer) TierForOrdinal(ordinal int) Tier {
	n := len(s.cycle)
	idx := ordinal % n
	if idx < 0 {
		idx += n
	}
	return s.cycle[idx]
}

// Score draws a percentage inside the ordinal's tier range.
func (s *Scorer) Score(ordinal int) (int, Tier) {
	tier := s.TierForOrdinal(ordinal)
	r := tierRanges[tier]
	return r.min + s.rand.Intn(r.max-r.min+1), tier
}

func (s *Scorer) scoreItem(item Item, ordinal int) ScoredItem {
	pct, tier := s.Score(ordinal)
	return ScoredItem{
		Item:            item,
		MatchPercentage: pct,
		Tier:            tier,
		StackIndex:      ordinal,
	}
}
