package swipe

// DefaultWindowSize is how many cards are visible at once.
const DefaultWindowSize = 5

// Stack is the bounded window of cards drawn from a pool. Index 0 is the
// bottom card and the last element is the front card. Items are drawn in
// forward pool order, so the first pool item starts as the front card.
type Stack struct {
	pool   []Item
	window int
	scorer *Scorer

	cards []ScoredItem
	// next is the pool ordinal of the next undrawn item.
	next  int
	drawn map[string]struct{}
}

// NewStack builds the initial window over pool.
func NewStack(pool []Item, window int, scorer *Scorer) *Stack {
	if window <= 0 {
		window = DefaultWindowSize
	}
	s := &Stack{pool: pool, window: window, scorer: scorer}
	s.Reset()
	return s
}

// Reset discards the current window and draws the first items of the pool again.
func (s *Stack) Reset() {
	s.cards = make([]ScoredItem, 0, s.window)
	s.next = 0
	s.drawn = make(map[string]struct{}, len(s.pool))

	for len(s.cards) < s.window {
		card, ok := s.draw(nil)
		if !ok {
			break
		}
		// each new draw goes underneath the cards already placed
		s.cards = append([]ScoredItem{card}, s.cards...)
	}
}

// Len is the number of cards currently on the stack.
func (s *Stack) Len() int { return len(s.cards) }

// Window is the maximum stack size.
func (s *Stack) Window() int { return s.window }

// Empty reports whether no card is left.
func (s *Stack) Empty() bool { return len(s.cards) == 0 }

// Front returns the topmost card.
func (s *Stack) Front() (ScoredItem, bool) {
	if len(s.cards) == 0 {
		return ScoredItem{}, false
	}
	return s.cards[len(s.cards)-1], true
}

// At returns the card at index i counted from the bottom.
func (s *Stack) At(i int) (ScoredItem, bool) {
	if i < 0 || i >= len(s.cards) {
		return ScoredItem{}, false
	}
	return s.cards[i], true
}

// Cards returns a copy of the stack, bottom first.
func (s *Stack) Cards() []ScoredItem {
	return append([]ScoredItem(nil), s.cards...)
}

// IDs returns the card ids, bottom first.
func (s *Stack) IDs() []string {
	ids := make([]string, 0, len(s.cards))
	for _, c := range s.cards {
		ids = append(ids, c.ID)
	}
	return ids
}

// Contains reports whether a card with id is on the stack.
func (s *Stack) Contains(id string) bool {
	for _, c := range s.cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Undrawn is the number of pool items not drawn yet.
func (s *Stack) Undrawn() int {
	return len(s.pool) - len(s.drawn)
}

// DismissFront removes the front card and, when the pool still has an item
// that is neither on the stack nor decided, draws it to the bottom.
// Dismissing an empty stack is a no-op.
func (s *Stack) DismissFront(decided *Decisions) (ScoredItem, bool) {
	front, ok := s.Front()
	if !ok {
		return ScoredItem{}, false
	}
	s.cards = s.cards[:len(s.cards)-1]

	if len(s.cards) < s.window {
		if card, ok := s.draw(decided); ok {
			s.cards = append([]ScoredItem{card}, s.cards...)
		}
	}

	return front, true
}

func (s *Stack) draw(decided *Decisions) (ScoredItem, bool) {
	for s.next < len(s.pool) {
		ordinal := s.next
		item := s.pool[ordinal]
		s.next++

		if _, seen := s.drawn[item.ID]; seen {
			continue
		}
		if s.Contains(item.ID) || decided.Contains(item.ID) {
			continue
		}

		s.drawn[item.ID] = struct{}{}
		return s.scorer.scoreItem(item, ordinal), true
	}
	return ScoredItem{}, false
}
