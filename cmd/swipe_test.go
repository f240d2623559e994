package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hh-swiper/internal/matches"
	"github.com/spigell/hh-swiper/internal/swipe"
	"github.com/spigell/hh-swiper/internal/swipe/swipetest"
)

type scriptedChooser struct {
	t       *testing.T
	choices []string
	offsets []float64
	menus   [][]string
}

func (s *scriptedChooser) Choose(_ string, items []string) (string, error) {
	s.menus = append(s.menus, items)
	if len(s.choices) == 0 {
		return "", promptui.ErrInterrupt
	}
	choice := s.choices[0]
	s.choices = s.choices[1:]
	require.Contains(s.t, items, choice)
	return choice, nil
}

func (s *scriptedChooser) Offset(string) (float64, error) {
	if len(s.offsets) == 0 {
		return 0, promptui.ErrInterrupt
	}
	offset := s.offsets[0]
	s.offsets = s.offsets[1:]
	return offset, nil
}

type fakeDrafter struct {
	err   error
	items []string
}

func (f *fakeDrafter) Draft(_ context.Context, item swipe.ScoredItem) (string, error) {
	f.items = append(f.items, item.ID)
	if f.err != nil {
		return "", f.err
	}
	return "Hi " + item.Company, nil
}

type hostFixture struct {
	host    *swipeHost
	out     *bytes.Buffer
	ui      *scriptedChooser
	store   *matches.Store
	drafter *fakeDrafter
	clock   *swipetest.Clock
	logs    *observer.ObservedLogs
}

func newHostFixture(t *testing.T, pool []swipe.Item, floats []float64, exit time.Duration) *hostFixture {
	t.Helper()

	store, err := matches.Load(filepath.Join(t.TempDir(), "matches.json"))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	f := &hostFixture{
		out:     &bytes.Buffer{},
		ui:      &scriptedChooser{t: t},
		store:   store,
		drafter: &fakeDrafter{},
		clock:   swipetest.NewClock(),
		logs:    logs,
	}

	f.host = newSwipeHost(context.Background(), zap.New(core), f.out, f.ui, store, f.drafter)
	f.host.now = f.clock.Now
	f.host.wait = func(_ context.Context, d time.Duration) error {
		f.clock.Advance(d)
		return nil
	}

	opts := swipe.DefaultOptions()
	opts.ID = "host-test"
	opts.ExitDuration = exit
	opts.Rand = &swipetest.Rand{Floats: floats}
	opts.Clock = f.clock
	f.host.open(pool, opts)

	return f
}

func TestSwipeHostFullSession(t *testing.T) {
	f := newHostFixture(t, swipetest.Pool(3), []float64{0.1, 0.99}, swipe.DefaultExitDuration)
	f.ui.choices = []string{PromptInterested, PromptPass, PromptDrag, PromptDrag, PromptBack}
	f.ui.offsets = []float64{50, 150}

	require.NoError(t, f.host.run())

	stats := f.host.session.Stats()
	assert.Equal(t, swipe.Stats{Interested: 2, Passed: 1, Remaining: 0}, stats)
	assert.True(t, f.host.session.Closed())

	out := f.out.String()
	assert.Contains(t, out, "It's a Match! You matched with Job 0")
	assert.Contains(t, out, "Suggested intro: Hi Acme")
	assert.Contains(t, out, "✗ Passed")
	assert.Contains(t, out, "Not far enough, the card snaps back.")
	assert.Contains(t, out, "Interested: 1 | Passed: 1 | Remaining: 1")
	assert.Contains(t, out, "No more cards. Interested: 2 | Passed: 1")

	require.Equal(t, []string{"i0"}, f.store.IDs())
	match := f.store.Find("i0")
	assert.Equal(t, "Hi Acme", match.Message)
	assert.Equal(t, swipe.ContentJobs, match.ContentType)
	assert.Equal(t, []string{"i0"}, f.drafter.items)

	reloaded, err := matches.Load(f.store.Path())
	require.NoError(t, err)
	assert.Equal(t, []string{"i0"}, reloaded.IDs())

	assert.Equal(t, 1, f.logs.FilterMessage("session finished").Len())
}

func TestSwipeHostExpandBlocksSwipes(t *testing.T) {
	f := newHostFixture(t, swipetest.Pool(2), nil, 0)
	f.ui.choices = []string{PromptExpand, PromptCollapse, PromptPass}

	err := f.host.run()
	require.ErrorIs(t, err, errExit)

	require.GreaterOrEqual(t, len(f.ui.menus), 3)
	assert.Equal(t, []string{PromptCollapse, PromptBack}, f.ui.menus[1])
	assert.Contains(t, f.ui.menus[2], PromptPass)
	assert.Equal(t, 1, f.host.session.Stats().Passed)
}

func TestSwipeHostResetAtTheEnd(t *testing.T) {
	f := newHostFixture(t, swipetest.Pool(1), nil, 0)
	f.ui.choices = []string{PromptPass, PromptReset, PromptInterested, PromptBack}

	require.NoError(t, f.host.run())

	assert.Contains(t, f.out.String(), "Starting over.")
	assert.Equal(t, swipe.Stats{Interested: 1, Passed: 0, Remaining: 0}, f.host.session.Stats())
	assert.Equal(t, 2, f.logs.FilterMessage("session finished").Len())
}

func TestSwipeHostEmptyPool(t *testing.T) {
	f := newHostFixture(t, nil, nil, 0)
	f.ui.choices = []string{PromptBack}

	require.NoError(t, f.host.run())
	assert.Contains(t, f.out.String(), "No more cards. Interested: 0 | Passed: 0")
	assert.Equal(t, 0, f.logs.FilterMessage("session finished").Len())
}

func TestSwipeHostDraftFailureStillStoresMatch(t *testing.T) {
	f := newHostFixture(t, swipetest.Pool(1), []float64{0}, 0)
	f.drafter.err = errors.New("quota")
	f.ui.choices = []string{PromptInterested, PromptBack}

	require.NoError(t, f.host.run())

	match := f.store.Find("i0")
	require.NotNil(t, match)
	assert.Empty(t, match.Message)
	assert.Equal(t, 1, f.logs.FilterMessage("drafting an intro message").Len())
}

func TestSwipeHostInterruptExits(t *testing.T) {
	f := newHostFixture(t, swipetest.Pool(2), nil, 0)

	err := f.host.run()
	require.ErrorIs(t, err, errExit)
}
