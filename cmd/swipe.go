package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-swiper/internal/ai"
	"github.com/spigell/hh-swiper/internal/ai/gemini"
	"github.com/spigell/hh-swiper/internal/logger"
	"github.com/spigell/hh-swiper/internal/matches"
	"github.com/spigell/hh-swiper/internal/secrets"
	"github.com/spigell/hh-swiper/internal/swipe"
	"github.com/spigell/hh-swiper/internal/utils"
)

const (
	PromptPass       = "← Pass"
	PromptInterested = "Interested →"
	PromptDrag       = "Drag the card"
	PromptExpand     = "Show details"
	PromptCollapse   = "Hide details"
	PromptReset      = "Start over"
	PromptBack       = "back"
)

var errExit = errors.New("exit requested")

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Swipe through the pool: right for interested, left to pass",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(swipeCmd)
}

// chooser is the terminal input. promptui backs it in production.
type chooser interface {
	Choose(label string, items []string) (string, error)
	Offset(label string) (float64, error)
}

type promptChooser struct{}

func (promptChooser) Choose(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}
	_, selected, err := prompt.Run()
	return selected, err
}

func (promptChooser) Offset(label string) (float64, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
			return err
		},
	}
	input, err := prompt.Run()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(input), 64)
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-swiper", zap.String("version", resolveVersion()))

	opts, err := config.options()
	if err != nil {
		logger.Fatal("reading swipe options", zap.Error(err))
	}
	opts.Logger = logger

	items, _, err := loadPool(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading the pool", zap.Error(err))
	}

	var store *matches.Store
	if config.MatchesFile != "" {
		store, err = matches.Load(config.MatchesFile)
		if err != nil {
			logger.Fatal("loading matches", zap.Error(err))
		}
	}

	drafter, err := newDrafter(ctx, &config.AI, logger)
	if err != nil {
		logger.Warn("intro drafts are disabled", zap.Error(err))
		drafter = ai.Nop{}
	}

	host := newSwipeHost(ctx, logger, cmd.OutOrStdout(), promptChooser{}, store, drafter)
	host.open(items, opts)

	if err := host.run(); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}

	stats := host.session.Stats()
	logger.Info("bye",
		zap.Int("interested", stats.Interested),
		zap.Int("passed", stats.Passed),
		zap.Int("remaining", stats.Remaining),
	)
}

func newDrafter(ctx context.Context, cfg *AIConfig, base *zap.Logger) (ai.Drafter, error) {
	if cfg == nil || !cfg.Enabled {
		return ai.Nop{}, nil
	}
	if cfg.Gemini == nil {
		return nil, errors.New("ai.gemini section is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	genLogger := logger.WithFields(base, logger.AIFields("gemini", generator.Model())...)

	return gemini.NewDrafter(generator, genLogger, gemini.Options{
		Tone:         cfg.Gemini.Tone,
		MaxRetries:   cfg.Gemini.MaxRetries,
		MaxLogLength: cfg.Gemini.MaxLogLength,
	}), nil
}

type swipeHost struct {
	ctx     context.Context
	logger  *zap.Logger
	out     io.Writer
	ui      chooser
	store   *matches.Store
	drafter ai.Drafter
	wait    func(context.Context, time.Duration) error
	now     func() time.Time

	session *swipe.Session
}

func newSwipeHost(ctx context.Context, logger *zap.Logger, out io.Writer, ui chooser, store *matches.Store, drafter ai.Drafter) *swipeHost {
	if drafter == nil {
		drafter = ai.Nop{}
	}
	return &swipeHost{
		ctx:     ctx,
		logger:  logger,
		out:     out,
		ui:      ui,
		store:   store,
		drafter: drafter,
		wait:    utils.WaitFor,
		now:     time.Now,
	}
}

func (h *swipeHost) open(items []swipe.Item, opts swipe.Options) {
	h.session = swipe.NewSession(items, opts, swipe.Callbacks{
		OnMatch:      h.onMatch,
		OnSessionEnd: h.onSessionEnd,
		OnReset: func() {
			fmt.Fprintln(h.out, "Starting over.")
		},
	})
}

func (h *swipeHost) run() error {
	defer h.session.Close()

	for {
		if err := h.settle(); err != nil {
			return err
		}

		if h.session.Terminal() {
			h.renderEnd()

			action, err := h.ui.Choose("That's everyone. What next?", []string{PromptReset, PromptBack})
			if err != nil {
				return promptErr(err)
			}
			if action == PromptReset {
				h.session.Reset()
				continue
			}
			return nil
		}

		front, ok := h.session.Front()
		if !ok {
			return nil
		}
		h.render(front)

		action, err := h.ui.Choose("Your move", h.actions())
		if err != nil {
			return promptErr(err)
		}

		if err := h.handle(action, front); err != nil {
			return err
		}
	}
}

func (h *swipeHost) actions() []string {
	if h.session.ExpandedID() != "" {
		return []string{PromptCollapse, PromptBack}
	}
	return []string{PromptInterested, PromptPass, PromptDrag, PromptExpand, PromptReset, PromptBack}
}

func (h *swipeHost) handle(action string, front swipe.ScoredItem) error {
	switch action {
	case PromptInterested:
		h.session.KeyPress(swipe.KeyArrowRight)
	case PromptPass:
		if h.session.KeyPress(swipe.KeyArrowLeft) {
			fmt.Fprintln(h.out, "✗ Passed")
		}
	case PromptDrag:
		return h.drag(front)
	case PromptExpand:
		if !h.session.Tap(front.ID) {
			fmt.Fprintln(h.out, "This card has no details.")
		}
	case PromptCollapse:
		h.session.Collapse()
	case PromptReset:
		h.session.Reset()
	case PromptBack:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
	return nil
}

func (h *swipeHost) drag(front swipe.ScoredItem) error {
	offset, err := h.ui.Offset("Drag by px (negative is left)")
	if err != nil {
		return promptErr(err)
	}

	if !h.session.BeginDrag(front.ID) {
		return nil
	}
	h.session.Drag(offset)

	t := h.session.Transform()
	fmt.Fprintf(h.out, "  offset %.0fpx, rotation %.1f°, opacity %.2f, scale %.2f\n", t.Offset, t.Rotation, t.Opacity, t.Scale)

	dir, committed := h.session.ReleaseDrag()
	switch {
	case !committed:
		fmt.Fprintln(h.out, "  Not far enough, the card snaps back.")
	case dir == swipe.Left:
		fmt.Fprintln(h.out, "✗ Passed")
	}
	return nil
}

// settle lets the exit animation run out so the decision is recorded, then
// clears expired effects.
func (h *swipeHost) settle() error {
	if d, ok := h.session.Dismissing(); ok {
		if err := h.wait(h.ctx, d.Until.Sub(h.now())); err != nil {
			return err
		}
		h.session.Tick()
		h.session.Settle()
	}
	h.session.Tick()
	return nil
}

func (h *swipeHost) onMatch(item swipe.ScoredItem) {
	celebration := h.session.Celebration()
	fmt.Fprintf(h.out, "\n🎉 %s (%d%% match)\n", celebration.Headline(), item.MatchPercentage)
	fmt.Fprintln(h.out, confetti(celebration.Particles()))

	match := matches.FromScored(h.session.ContentType(), item, h.now())

	message, err := h.drafter.Draft(h.ctx, item)
	switch {
	case err != nil:
		h.logger.Warn("drafting an intro message", zap.String("item_id", item.ID), zap.Error(err))
	case message != "":
		match.Message = message
		fmt.Fprintf(h.out, "Suggested intro: %s\n", message)
	}

	if h.store == nil {
		return
	}
	h.store.Append(match)
	if err := h.store.Save(); err != nil {
		h.logger.Error("saving matches", zap.String("path", h.store.Path()), zap.Error(err))
	}
}

func (h *swipeHost) onSessionEnd(end swipe.SessionEnd) {
	h.logger.Info("session finished",
		zap.Int("interested", len(end.Interested)),
		zap.Int("passed", len(end.Passed)),
	)
}

func (h *swipeHost) render(front swipe.ScoredItem) {
	stats := h.session.Stats()
	decided := stats.Interested + stats.Passed

	fmt.Fprintln(h.out)
	fmt.Fprintf(h.out, "[%d/%d] %s\n", decided+1, h.session.PoolSize(), front.DisplayName())

	if front.Instructional() {
		fmt.Fprintf(h.out, "  %s\n", front.Summary)
		for _, line := range front.Details {
			fmt.Fprintf(h.out, "  • %s\n", line)
		}
	} else {
		if subtitle := subtitle(front); subtitle != "" {
			fmt.Fprintf(h.out, "  %s\n", subtitle)
		}
		fmt.Fprintf(h.out, "  %s\n", badge(front))
		if len(front.Tags) > 0 {
			fmt.Fprintf(h.out, "  %s\n", strings.Join(front.Tags, ", "))
		}
		if h.session.ExpandedID() == front.ID {
			h.renderDetails(front)
		}
	}

	fmt.Fprintf(h.out, "Interested: %d | Passed: %d | Remaining: %d\n", stats.Interested, stats.Passed, stats.Remaining)
}

func (h *swipeHost) renderDetails(item swipe.ScoredItem) {
	if item.Summary != "" {
		fmt.Fprintf(h.out, "\n  %s\n", item.Summary)
	}
	for _, line := range item.Details {
		fmt.Fprintf(h.out, "  • %s\n", line)
	}
	if item.URL != "" {
		fmt.Fprintf(h.out, "  %s\n", item.URL)
	}
}

func (h *swipeHost) renderEnd() {
	stats := h.session.Stats()
	fmt.Fprintln(h.out)
	fmt.Fprintf(h.out, "No more cards. Interested: %d | Passed: %d\n", stats.Interested, stats.Passed)
	for _, item := range h.session.Interested() {
		fmt.Fprintf(h.out, "  ♥ %s (%d%%)\n", item.DisplayName(), item.MatchPercentage)
	}
}

func subtitle(item swipe.ScoredItem) string {
	parts := make([]string, 0, 3)
	if item.Kind == swipe.KindCandidate && item.Title != "" && item.Title != item.DisplayName() {
		parts = append(parts, item.Title)
	}
	for _, part := range []string{item.Company, item.Location, item.Salary} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " · ")
}

var tierMarks = map[swipe.Tier]string{
	swipe.TierGreen:  "●",
	swipe.TierYellow: "◐",
	swipe.TierRed:    "○",
}

func badge(item swipe.ScoredItem) string {
	return fmt.Sprintf("%s %d%% match (%s)", tierMarks[item.Tier], item.MatchPercentage, item.Tier)
}

// confetti squeezes the particle field into one line of colored dots.
func confetti(particles []swipe.Particle) string {
	var b strings.Builder
	for idx, p := range particles {
		if idx%4 != 0 {
			continue
		}
		if p.Round {
			b.WriteString("•")
		} else {
			b.WriteString("*")
		}
	}
	return b.String()
}

func promptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	return err
}
