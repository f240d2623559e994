package swipe

import "math"

// DefaultSwipeThreshold is the drag distance in pixels that commits a swipe.
const DefaultSwipeThreshold = 100.0

// Key names the keyboard input the interpreter understands.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// Transform is the visual state of the front card for a given drag offset.
type Transform struct {
	Offset   float64
	Rotation float64
	Opacity  float64
	Scale    float64
}

type keyframes struct {
	in, out [3]float64
}

var (
	rotationFrames = keyframes{in: [3]float64{-200, 0, 200}, out: [3]float64{-12, 0, 12}}
	opacityFrames  = keyframes{in: [3]float64{-150, 0, 150}, out: [3]float64{0.6, 1, 0.6}}
	scaleFrames    = keyframes{in: [3]float64{-200, 0, 200}, out: [3]float64{0.8, 1, 0.8}}
)

// interpolate maps x through three keyframes linearly and clamps outside them.
func (k keyframes) interpolate(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return k.out[1]
	case x <= k.in[0]:
		return k.out[0]
	case x >= k.in[2]:
		return k.out[2]
	}

	lo := 0
	if x > k.in[1] {
		lo = 1
	}
	span := k.in[lo+1] - k.in[lo]
	t := (x - k.in[lo]) / span
	return k.out[lo] + t*(k.out[lo+1]-k.out[lo])
}

// TransformFor returns the card transform for a horizontal offset.
func TransformFor(offset float64) Transform {
	return Transform{
		Offset:   offset,
		Rotation: rotationFrames.interpolate(offset),
		Opacity:  opacityFrames.interpolate(offset),
		Scale:    scaleFrames.interpolate(offset),
	}
}

// Gesture turns a drag on one card into at most one swipe decision.
type Gesture struct {
	threshold float64
	cardID    string
	offset    float64
	dragging  bool
}

// NewGesture returns an idle interpreter.
func NewGesture(threshold float64) *Gesture {
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	return &Gesture{threshold: threshold}
}

// Threshold is the commit distance.
func (g *Gesture) Threshold() float64 { return g.threshold }

// Begin starts tracking a drag on cardID.
func (g *Gesture) Begin(cardID string) {
	g.cardID = cardID
	g.offset = 0
	g.dragging = true
}

// Dragging reports whether a drag is in progress.
func (g *Gesture) Dragging() bool { return g.dragging }

// CardID is the card the current or last drag targeted.
func (g *Gesture) CardID() string { return g.cardID }

// Move updates the offset of the active drag.
func (g *Gesture) Move(offset float64) bool {
	if !g.dragging || math.IsNaN(offset) {
		return false
	}
	g.offset = offset
	return true
}

// Offset is the current horizontal offset.
func (g *Gesture) Offset() float64 { return g.offset }

// Transform is the visual transform for the current offset.
func (g *Gesture) Transform() Transform { return TransformFor(g.offset) }

// Release ends the drag. When the offset is past the threshold it returns the
// swipe direction; otherwise the offset snaps back to zero and ok is false.
func (g *Gesture) Release() (Direction, bool) {
	if !g.dragging {
		return 0, false
	}
	g.dragging = false

	if math.Abs(g.offset) <= g.threshold {
		g.offset = 0
		return 0, false
	}
	if g.offset > 0 {
		return Right, true
	}
	return Left, true
}

// Cancel drops the drag without a decision.
func (g *Gesture) Cancel() {
	g.dragging = false
	g.offset = 0
	g.cardID = ""
}

// DirectionForKey maps arrow keys to decisions. Keys bypass the threshold.
func DirectionForKey(key string) (Direction, bool) {
	switch key {
	case KeyArrowLeft:
		return Left, true
	case KeyArrowRight:
		return Right, true
	default:
		return 0, false
	}
}
