package swipe

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hh-swiper/internal/logger"
)

const (
	DefaultExitDuration  = 300 * time.Millisecond
	DefaultFlashDuration = 400 * time.Millisecond
)

// Clock reads the current time. Timed states advance only on Session.Tick,
// so tests drive time through a fake clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Options configures a Session. Zero values select the defaults, except
// MatchProbability and ExitDuration which are used as given. A zero
// ExitDuration records decisions at commit time.
type Options struct {
	ID                  string
	ContentType         ContentType
	WindowSize          int
	Threshold           float64
	MatchProbability    float64
	TierCycle           []Tier
	ExitDuration        time.Duration
	FlashDuration       time.Duration
	CelebrationDuration time.Duration
	Viewport            Viewport

	Rand   Rand
	Clock  Clock
	Logger *zap.Logger
}

// DefaultOptions returns the reference tuning.
func DefaultOptions() Options {
	return Options{
		ContentType:         ContentJobs,
		WindowSize:          DefaultWindowSize,
		Threshold:           DefaultSwipeThreshold,
		MatchProbability:    DefaultMatchProbability,
		TierCycle:           DefaultTierCycle,
		ExitDuration:        DefaultExitDuration,
		FlashDuration:       DefaultFlashDuration,
		CelebrationDuration: DefaultCelebrationDuration,
		Viewport:            DefaultViewport,
	}
}

// Callbacks connect a session to the host application. Any of them may be nil.
type Callbacks struct {
	OnMatch      func(item ScoredItem)
	OnSessionEnd func(end SessionEnd)
	OnCollapse   func()
	OnReset      func()
}

// Dismissing is the transient state of a card that was swiped away and is
// still animating off screen. Its decision is recorded when the exit ends.
type Dismissing struct {
	Item      ScoredItem
	Direction Direction
	StartedAt time.Time
	Until     time.Time
}

// Session is one open instance of the stack for jobs or candidates. It owns
// all swipe state and performs no I/O. It is not safe for concurrent use.
type Session struct {
	id          string
	contentType ContentType
	pool        []Item
	callbacks   Callbacks

	exitDuration  time.Duration
	flashDuration time.Duration

	clock  Clock
	logger *zap.Logger

	stack       *Stack
	recorder    *Recorder
	gesture     *Gesture
	expansion   Expansion
	celebration *Celebration

	dismissing *Dismissing
	flashUntil time.Time
	closed     bool
}

// NewSession opens a session over pool. Items with an empty or repeated id
// are skipped; the first occurrence of an id wins.
func NewSession(pool []Item, opts Options, callbacks Callbacks) *Session {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.ContentType == "" {
		opts.ContentType = ContentJobs
	}
	if opts.ExitDuration < 0 {
		opts.ExitDuration = 0
	}
	if opts.FlashDuration <= 0 {
		opts.FlashDuration = DefaultFlashDuration
	}
	if opts.Rand == nil {
		opts.Rand = NewRand()
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	items := uniqueItems(pool)
	scorer := NewScorer(opts.Rand, opts.TierCycle)
	stack := NewStack(items, opts.WindowSize, scorer)

	s := &Session{
		id:            opts.ID,
		contentType:   opts.ContentType,
		pool:          items,
		callbacks:     callbacks,
		exitDuration:  opts.ExitDuration,
		flashDuration: opts.FlashDuration,
		clock:         opts.Clock,
		logger:        logger.WithFields(opts.Logger, logger.SessionFields(opts.ID, string(opts.ContentType))...),
		stack:         stack,
		recorder:      NewRecorder(stack, len(items), opts.MatchProbability, opts.Rand),
		gesture:       NewGesture(opts.Threshold),
		celebration:   NewCelebration(opts.CelebrationDuration, opts.Viewport, opts.Rand),
	}

	if dropped := len(pool) - len(items); dropped > 0 {
		s.logger.Warn("skipping pool items with empty or repeated ids", zap.Int("dropped", dropped))
	}
	s.logger.Debug("swipe session opened",
		zap.Int("pool_size", len(items)),
		zap.Int("window_size", stack.Window()),
	)

	return s
}

func uniqueItems(pool []Item) []Item {
	seen := make(map[string]struct{}, len(pool))
	items := make([]Item, 0, len(pool))
	for _, item := range pool {
		if item.ID == "" {
			continue
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// ContentType is the pool kind the session swipes through.
func (s *Session) ContentType() ContentType { return s.contentType }

// PoolSize is the number of distinct items in the pool.
func (s *Session) PoolSize() int { return len(s.pool) }

// Closed reports whether the host left the session.
func (s *Session) Closed() bool { return s.closed }

// Stack returns the logical stack, bottom first. While a card is dismissing
// it is still the last element.
func (s *Session) Stack() []ScoredItem { return s.stack.Cards() }

// Front is the card the user interacts with. While a card is animating off
// screen this is the card beneath it.
func (s *Session) Front() (ScoredItem, bool) {
	if s.dismissing != nil {
		return s.stack.At(s.stack.Len() - 2)
	}
	return s.stack.Front()
}

// Dismissing returns the card currently animating off screen.
func (s *Session) Dismissing() (Dismissing, bool) {
	if s.dismissing == nil {
		return Dismissing{}, false
	}
	return *s.dismissing, true
}

// Interested returns the interested list in decision order.
func (s *Session) Interested() []ScoredItem { return s.recorder.Decisions().Interested() }

// Passed returns the passed list in decision order.
func (s *Session) Passed() []ScoredItem { return s.recorder.Decisions().Passed() }

// Stats returns the counters shown under the stack.
func (s *Session) Stats() Stats { return s.recorder.Stats() }

// Terminal reports whether every pool item has been decided.
func (s *Session) Terminal() bool {
	return s.dismissing == nil && s.recorder.Terminal()
}

// ExpandedID returns the id of the expanded card or "".
func (s *Session) ExpandedID() string { return s.expansion.ExpandedID() }

// Transform is the visual transform of the front card.
func (s *Session) Transform() Transform { return s.gesture.Transform() }

// Dragging reports whether a drag on the front card is in progress.
func (s *Session) Dragging() bool { return s.gesture.Dragging() }

// Flashing reports whether the rejection flash is visible.
func (s *Session) Flashing() bool { return !s.flashUntil.IsZero() }

// Celebration exposes the match effect for rendering.
func (s *Session) Celebration() *Celebration { return s.celebration }

// BeginDrag starts a drag on the front card.
func (s *Session) BeginDrag(itemID string) bool {
	if !s.interactive() {
		return false
	}
	front, ok := s.Front()
	if !ok || front.ID != itemID {
		return false
	}
	s.gesture.Begin(itemID)
	return true
}

// Drag moves the active drag to offset pixels.
func (s *Session) Drag(offset float64) bool {
	if !s.interactive() {
		return false
	}
	return s.gesture.Move(offset)
}

// ReleaseDrag ends the drag and commits a swipe when the threshold was crossed.
func (s *Session) ReleaseDrag() (Direction, bool) {
	if s.closed {
		return 0, false
	}
	cardID := s.gesture.CardID()
	dir, ok := s.gesture.Release()
	if !ok {
		return 0, false
	}
	if !s.commit(cardID, dir) {
		return 0, false
	}
	return dir, true
}

// KeyPress handles ArrowLeft and ArrowRight. Keys commit immediately.
func (s *Session) KeyPress(key string) bool {
	dir, ok := DirectionForKey(key)
	if !ok {
		return false
	}
	return s.Swipe(dir)
}

// Swipe commits a decision on the front card without a drag, as the
// pass/interested buttons do.
func (s *Session) Swipe(dir Direction) bool {
	if !s.interactive() || s.gesture.Dragging() {
		return false
	}
	front, ok := s.Front()
	if !ok {
		return false
	}
	return s.commit(front.ID, dir)
}

// Tap expands the front card.
func (s *Session) Tap(itemID string) bool {
	if s.closed {
		return false
	}
	front, ok := s.Front()
	if !ok || front.ID != itemID {
		return false
	}
	if !s.expansion.Expand(front, s.gesture.Dragging()) {
		return false
	}
	s.logger.Debug("card expanded", zap.String("item_id", itemID))
	return true
}

// ClickOutside collapses the expanded card.
func (s *Session) ClickOutside() bool {
	return s.Collapse()
}

// Collapse closes the detail view of the expanded card.
func (s *Session) Collapse() bool {
	if s.closed {
		return false
	}
	return s.expansion.Collapse()
}

// Tick advances timed states to the clock's current time.
func (s *Session) Tick() bool {
	if s.closed {
		return false
	}
	now := s.clock.Now()
	changed := false

	if s.dismissing != nil && !now.Before(s.dismissing.Until) {
		s.finish(now)
		changed = true
	}
	if !s.flashUntil.IsZero() && !now.Before(s.flashUntil) {
		s.flashUntil = time.Time{}
		changed = true
	}
	if s.celebration.Tick(now) {
		changed = true
	}

	return changed
}

// Settle completes an in-flight exit animation immediately.
func (s *Session) Settle() bool {
	if s.closed || s.dismissing == nil {
		return false
	}
	s.finish(s.clock.Now())
	return true
}

// CompleteCelebration ends the match effect early.
func (s *Session) CompleteCelebration() {
	s.celebration.Complete()
}

// Reset discards all decisions and redraws the stack from the start of the pool.
func (s *Session) Reset() {
	if s.closed {
		return
	}
	s.dismissing = nil
	s.flashUntil = time.Time{}
	s.gesture.Cancel()
	s.expansion.Collapse()
	s.recorder.Reset()

	s.logger.Debug("swipe session reset", zap.Int("stack_size", s.stack.Len()))

	if s.callbacks.OnReset != nil {
		s.callbacks.OnReset()
	}
}

// Close leaves the session. In-flight timers are dropped without running
// their completions and every later call is ignored.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.dismissing = nil
	s.flashUntil = time.Time{}
	s.gesture.Cancel()
	s.expansion.Collapse()
	s.celebration.Complete()

	s.logger.Debug("swipe session closed", zap.Int("decisions", s.recorder.Decisions().Len()))

	if s.callbacks.OnCollapse != nil {
		s.callbacks.OnCollapse()
	}
}

func (s *Session) interactive() bool {
	return !s.closed && !s.expansion.Expanded()
}

func (s *Session) commit(itemID string, dir Direction) bool {
	if !s.interactive() {
		return false
	}
	front, ok := s.Front()
	if !ok || front.ID != itemID {
		return false
	}

	now := s.clock.Now()
	// decisions are recorded in commit order
	if s.dismissing != nil {
		s.finish(now)
	}

	s.gesture.Cancel()
	s.dismissing = &Dismissing{
		Item:      front,
		Direction: dir,
		StartedAt: now,
		Until:     now.Add(s.exitDuration),
	}

	s.logger.Debug("swipe committed",
		zap.String("item_id", front.ID),
		zap.Stringer("direction", dir),
	)

	if s.exitDuration == 0 {
		s.finish(now)
	}
	return true
}

func (s *Session) finish(now time.Time) {
	d := s.dismissing
	s.dismissing = nil
	if d == nil {
		return
	}

	out := s.recorder.Record(d.Direction, d.Item.ID)
	if !out.Recorded {
		return
	}
	if front, ok := s.stack.Front(); ok {
		s.expansion.Follow(front.ID)
	} else {
		s.expansion.Collapse()
	}

	s.logger.Debug("decision recorded",
		zap.String("item_id", out.Item.ID),
		zap.Stringer("direction", out.Direction),
		zap.Int("match_percentage", out.Item.MatchPercentage),
		zap.Bool("matched", out.Matched),
	)

	if out.Flash {
		s.flashUntil = now.Add(s.flashDuration)
	}
	if out.Matched {
		s.celebration.Trigger(now, out.Item)
		if s.callbacks.OnMatch != nil {
			s.callbacks.OnMatch(out.Item)
		}
	}
	if out.End != nil {
		s.logger.Debug("swipe session ended",
			zap.Int("interested", len(out.End.Interested)),
			zap.Int("passed", len(out.End.Passed)),
		)
		if s.callbacks.OnSessionEnd != nil {
			s.callbacks.OnSessionEnd(*out.End)
		}
	}
}
