package swipe

import (
	"fmt"
	"math"
	"time"
)

const (
	DefaultCelebrationDuration = 4000 * time.Millisecond

	fallingParticles = 80
	burstParticles   = 30
)

var confettiColors = []string{
	"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4",
	"#ffeaa7", "#dda0dd", "#ff9ff3", "#54a0ff",
	"#5f27cd", "#00d2d3", "#ff9f43", "#10ac84",
}

// Viewport is the drawing area particles are laid out in.
type Viewport struct {
	Width  float64
	Height float64
}

// DefaultViewport is used when the host does not report its size.
var DefaultViewport = Viewport{Width: 1280, Height: 800}

// ParticleKind separates the falling rain from the radial burst.
type ParticleKind string

const (
	ParticleFalling ParticleKind = "falling"
	ParticleBurst   ParticleKind = "burst"
)

// Particle is one purely cosmetic confetti piece.
type Particle struct {
	ID            int
	Kind          ParticleKind
	X, Y          float64
	VX, VY        float64
	Gravity       float64
	Rotation      float64
	RotationSpeed float64
	Color         string
	Size          float64
	Round         bool
}

// Celebration is the timed effect shown on a match: Idle -> Active -> Idle.
type Celebration struct {
	duration time.Duration
	viewport Viewport
	rand     Rand

	active    bool
	deadline  time.Time
	headline  string
	particles []Particle
}

// NewCelebration returns an idle effect.
func NewCelebration(duration time.Duration, viewport Viewport, r Rand) *Celebration {
	if duration <= 0 {
		duration = DefaultCelebrationDuration
	}
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = DefaultViewport
	}
	if r == nil {
		r = NewRand()
	}
	return &Celebration{duration: duration, viewport: viewport, rand: r}
}

// Active reports whether the effect is running.
func (c *Celebration) Active() bool { return c.active }

// Headline is the centred text of the running effect.
func (c *Celebration) Headline() string { return c.headline }

// Deadline is when the running effect expires.
func (c *Celebration) Deadline() time.Time { return c.deadline }

// Particles returns the current particle batch.
func (c *Celebration) Particles() []Particle {
	return append([]Particle(nil), c.particles...)
}

// Trigger starts the effect for a match. A new trigger replaces any running batch.
func (c *Celebration) Trigger(now time.Time, item ScoredItem) {
	c.active = true
	c.deadline = now.Add(c.duration)
	c.headline = fmt.Sprintf("It's a Match! You matched with %s", item.DisplayName())
	c.particles = c.generate()
}

// Tick expires the effect once its deadline has passed.
func (c *Celebration) Tick(now time.Time) bool {
	if !c.active || now.Before(c.deadline) {
		return false
	}
	c.Complete()
	return true
}

// Complete returns to Idle and drops all particle state.
func (c *Celebration) Complete() {
	c.active = false
	c.deadline = time.Time{}
	c.headline = ""
	c.particles = nil
}

func (c *Celebration) generate() []Particle {
	w, h := c.viewport.Width, c.viewport.Height
	particles := make([]Particle, 0, fallingParticles+burstParticles)

	for i := 0; i < fallingParticles; i++ {
		particles = append(particles, Particle{
			ID:            i,
			Kind:          ParticleFalling,
			X:             float64(i)/fallingParticles*w + c.rand.Float64()*(w/fallingParticles),
			Y:             -c.rand.Float64()*100 - 20,
			VX:            (c.rand.Float64() - 0.5) * 12,
			VY:            c.rand.Float64()*8 + 4,
			Gravity:       0.3 + c.rand.Float64()*0.2,
			Rotation:      c.rand.Float64() * 360,
			RotationSpeed: (c.rand.Float64() - 0.5) * 10,
			Color:         confettiColors[c.rand.Intn(len(confettiColors))],
			Size:          c.rand.Float64()*10 + 6,
			Round:         c.rand.Float64() > 0.5,
		})
	}

	for i := 0; i < burstParticles; i++ {
		angle := float64(i) / burstParticles * 2 * math.Pi
		velocity := 200 + c.rand.Float64()*100
		particles = append(particles, Particle{
			ID:    fallingParticles + i,
			Kind:  ParticleBurst,
			X:     w / 2,
			Y:     h / 2,
			VX:    math.Cos(angle) * velocity,
			VY:    math.Sin(angle) * velocity,
			Color: confettiColors[c.rand.Intn(8)],
			Size:  12,
			Round: true,
		})
	}

	return particles
}
