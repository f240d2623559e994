// Package swipetest provides deterministic time and randomness for swipe tests.
package swipetest

import (
	"fmt"
	"sync"
	"time"

	"github.com/spigell/hh-swiper/internal/swipe"
)

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Rand replays fixed sequences. When a sequence runs out it repeats its last
// value; an empty Ints sequence yields 0 and an empty Floats sequence yields 0.99.
type Rand struct {
	Ints   []int
	Floats []float64

	ints, floats int
}

// Intn returns the next int modulo n.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("swipetest: invalid argument to Intn: %d", n))
	}
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[min(r.ints, len(r.Ints)-1)]
	r.ints++
	return v % n
}

// Float64 returns the next float.
func (r *Rand) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0.99
	}
	v := r.Floats[min(r.floats, len(r.Floats)-1)]
	r.floats++
	return v
}

// Pool builds n job items with ids i0..i(n-1).
func Pool(n int) []swipe.Item {
	items := make([]swipe.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, swipe.Item{
			ID:      fmt.Sprintf("i%d", i),
			Kind:    swipe.KindJob,
			Title:   fmt.Sprintf("Job %d", i),
			Company: "Acme",
		})
	}
	return items
}

// IDs returns the ids of scored items in order.
func IDs(items []swipe.ScoredItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
