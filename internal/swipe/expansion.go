package swipe

// Expansion tracks which card, if any, shows its detail view. Only the front
// card can be expanded and only one card at a time.
type Expansion struct {
	id string
}

// Expanded reports whether any card is expanded.
func (e *Expansion) Expanded() bool { return e.id != "" }

// ExpandedID returns the id of the expanded card or "".
func (e *Expansion) ExpandedID() string { return e.id }

// Is reports whether the card with id is expanded.
func (e *Expansion) Is(id string) bool { return id != "" && e.id == id }

// Expand opens the detail view of front. It is a no-op while dragging, for
// instruction cards, and when a card is already expanded.
func (e *Expansion) Expand(front ScoredItem, dragging bool) bool {
	if dragging || front.ID == "" || front.Instructional() || e.Expanded() {
		return false
	}
	e.id = front.ID
	return true
}

// Collapse closes the detail view.
func (e *Expansion) Collapse() bool {
	if !e.Expanded() {
		return false
	}
	e.id = ""
	return true
}

// Follow collapses the view when the front card is no longer the expanded one.
func (e *Expansion) Follow(frontID string) {
	if e.id != "" && e.id != frontID {
		e.id = ""
	}
}
