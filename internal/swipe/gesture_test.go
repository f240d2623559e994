package swipe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/hh-swiper/internal/swipe"
)

func TestTransformFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		offset   float64
		rotation float64
		opacity  float64
		scale    float64
	}{
		{name: "rest", offset: 0, rotation: 0, opacity: 1, scale: 1},
		{name: "half right", offset: 100, rotation: 6, opacity: 1 - 0.4*100.0/150.0, scale: 0.9},
		{name: "half left", offset: -100, rotation: -6, opacity: 1 - 0.4*100.0/150.0, scale: 0.9},
		{name: "opacity clamps first", offset: 150, rotation: 9, opacity: 0.6, scale: 0.85},
		{name: "edge", offset: 200, rotation: 12, opacity: 0.6, scale: 0.8},
		{name: "clamped past edge", offset: 1000, rotation: 12, opacity: 0.6, scale: 0.8},
		{name: "clamped past left edge", offset: -1000, rotation: -12, opacity: 0.6, scale: 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := swipe.TransformFor(tt.offset)
			assert.InDelta(t, tt.rotation, got.Rotation, 1e-9)
			assert.InDelta(t, tt.opacity, got.Opacity, 1e-9)
			assert.InDelta(t, tt.scale, got.Scale, 1e-9)
		})
	}
}

func TestGesture_ThresholdGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		offset float64
		want   swipe.Direction
		commit bool
	}{
		{name: "short right", offset: 60},
		{name: "exactly threshold right", offset: 100},
		{name: "exactly threshold left", offset: -100},
		{name: "past threshold right", offset: 101, want: swipe.Right, commit: true},
		{name: "past threshold left", offset: -150, want: swipe.Left, commit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := swipe.NewGesture(swipe.DefaultSwipeThreshold)
			g.Begin("card")
			g.Move(tt.offset)

			dir, ok := g.Release()
			assert.Equal(t, tt.commit, ok)
			assert.Equal(t, tt.want, dir)
			assert.False(t, g.Dragging())
			if !tt.commit {
				assert.Zero(t, g.Offset(), "offset snaps back")
			}
		})
	}
}

func TestGesture_ReleaseWithoutDrag(t *testing.T) {
	t.Parallel()

	g := swipe.NewGesture(0)
	assert.Equal(t, swipe.DefaultSwipeThreshold, g.Threshold())
	assert.False(t, g.Move(150))

	_, ok := g.Release()
	assert.False(t, ok)
}

func TestDirectionForKey(t *testing.T) {
	t.Parallel()

	dir, ok := swipe.DirectionForKey(swipe.KeyArrowLeft)
	assert.True(t, ok)
	assert.Equal(t, swipe.Left, dir)

	dir, ok = swipe.DirectionForKey(swipe.KeyArrowRight)
	assert.True(t, ok)
	assert.Equal(t, swipe.Right, dir)

	_, ok = swipe.DirectionForKey("ArrowUp")
	assert.False(t, ok)
}
