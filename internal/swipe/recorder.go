package swipe

// DefaultMatchProbability is the chance that an "interested" decision becomes a match.
const DefaultMatchProbability = 0.33

// Decisions holds the two append-only outcome lists in decision order.
type Decisions struct {
	interested []ScoredItem
	passed     []ScoredItem
	ids        map[string]Direction
}

func newDecisions() *Decisions {
	return &Decisions{ids: make(map[string]Direction)}
}

// Contains reports whether id was already decided. A nil receiver contains nothing.
func (d *Decisions) Contains(id string) bool {
	if d == nil {
		return false
	}
	_, ok := d.ids[id]
	return ok
}

// Interested returns a copy of the "interested" list.
func (d *Decisions) Interested() []ScoredItem {
	return append([]ScoredItem(nil), d.interested...)
}

// Passed returns a copy of the "passed" list.
func (d *Decisions) Passed() []ScoredItem {
	return append([]ScoredItem(nil), d.passed...)
}

// Len is the total number of decisions.
func (d *Decisions) Len() int {
	return len(d.interested) + len(d.passed)
}

func (d *Decisions) add(dir Direction, item ScoredItem) bool {
	if d.Contains(item.ID) {
		return false
	}
	switch dir {
	case Right:
		d.interested = append(d.interested, item)
	case Left:
		d.passed = append(d.passed, item)
	default:
		return false
	}
	d.ids[item.ID] = dir
	return true
}

// Stats is what the host shows under the stack.
type Stats struct {
	Interested int `json:"interested"`
	Passed     int `json:"passed"`
	Remaining  int `json:"remaining"`
}

// SessionEnd is delivered once when every pool item has been decided.
type SessionEnd struct {
	Interested []ScoredItem `json:"interested"`
	Passed     []ScoredItem `json:"passed"`
}

// Outcome describes the side effects of one recorded decision.
type Outcome struct {
	Recorded  bool
	Item      ScoredItem
	Direction Direction
	// Matched is set when an interested decision was promoted to a match.
	Matched bool
	// Flash is set for passed decisions; the host shows a short rejection flash.
	Flash bool
	// End is non-nil on the transition into the terminal state.
	End *SessionEnd
}

// Recorder partitions decided cards and detects the end of a session.
type Recorder struct {
	stack       *Stack
	decisions   *Decisions
	poolSize    int
	probability float64
	rand        Rand
	ended       bool
}

// NewRecorder returns a recorder bound to stack.
func NewRecorder(stack *Stack, poolSize int, probability float64, r Rand) *Recorder {
	if r == nil {
		r = NewRand()
	}
	return &Recorder{
		stack:       stack,
		decisions:   newDecisions(),
		poolSize:    poolSize,
		probability: probability,
		rand:        r,
	}
}

// Decisions exposes the recorded lists.
func (r *Recorder) Decisions() *Decisions { return r.decisions }

// Record appends the front card to the list for dir, dismisses it from the
// stack and reports the side effects. Items that are not the current front
// card are ignored.
func (r *Recorder) Record(dir Direction, itemID string) Outcome {
	front, ok := r.stack.Front()
	if !ok || front.ID != itemID {
		return Outcome{}
	}
	if dir != Left && dir != Right {
		return Outcome{}
	}
	if !r.decisions.add(dir, front) {
		return Outcome{}
	}

	out := Outcome{Recorded: true, Item: front, Direction: dir}
	switch dir {
	case Right:
		// the draw happens for every interested card so the random sequence
		// does not depend on the item kind
		promoted := r.rand.Float64() < r.probability
		out.Matched = promoted && !front.Instructional()
	case Left:
		out.Flash = true
	}

	r.stack.DismissFront(r.decisions)

	if r.Terminal() && !r.ended {
		r.ended = true
		out.End = &SessionEnd{
			Interested: r.decisions.Interested(),
			Passed:     r.decisions.Passed(),
		}
	}

	return out
}

// Terminal reports whether the stack is exhausted and every pool item decided.
func (r *Recorder) Terminal() bool {
	return r.stack.Empty() && r.decisions.Len() == r.poolSize
}

// Stats returns the current counters. Remaining counts undecided pool items.
func (r *Recorder) Stats() Stats {
	return Stats{
		Interested: len(r.decisions.interested),
		Passed:     len(r.decisions.passed),
		Remaining:  r.poolSize - r.decisions.Len(),
	}
}

// Reset clears all decisions and redraws the stack from the start of the pool.
func (r *Recorder) Reset() {
	r.decisions = newDecisions()
	r.ended = false
	r.stack.Reset()
}
