package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/hh-swiper/internal/swipe"
	"github.com/spigell/hh-swiper/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultTone         = "Friendly"
	retryDelay          = time.Second
)

var wait = utils.WaitFor

// Options tune the drafter. Zero values pick the defaults.
type Options struct {
	Tone         string
	MaxRetries   int
	MaxLogLength int
}

// Drafter asks Gemini for an intro message for a matched card.
type Drafter struct {
	generator  contentGenerator
	logger     *zap.Logger
	tone       string
	maxRetries int
	maxLogLen  int
}

func NewDrafter(generator contentGenerator, logger *zap.Logger, opts Options) *Drafter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if strings.TrimSpace(opts.Tone) == "" {
		opts.Tone = defaultTone
	}

	return &Drafter{
		generator:  generator,
		logger:     logger,
		tone:       strings.TrimSpace(opts.Tone),
		maxRetries: opts.MaxRetries,
		maxLogLen:  opts.MaxLogLength,
	}
}

func (d *Drafter) Draft(ctx context.Context, item swipe.ScoredItem) (string, error) {
	if item.ID == "" {
		return "", errors.New("item id is required")
	}
	if item.Instructional() {
		return "", nil
	}

	itemJSON, err := json.MarshalIndent(item.Item, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal item payload: %w", err)
	}

	prompt := buildPrompt(item, string(itemJSON), d.tone)

	d.logger.Debug("gemini generate content request",
		zap.String("item_id", item.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, d.maxLogLen)),
	)

	var raw string
	for attempt := 0; ; attempt++ {
		raw, err = d.generator.GenerateContent(ctx, prompt)
		if err == nil {
			break
		}
		if attempt >= d.maxRetries {
			return "", err
		}

		d.logger.Warn("gemini request failed, retrying",
			zap.String("item_id", item.ID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if err := wait(ctx, retryDelay*time.Duration(attempt+1)); err != nil {
			return "", err
		}
	}

	d.logger.Debug("gemini generate content response",
		zap.String("item_id", item.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, d.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(item swipe.ScoredItem, itemJSON, tone string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Card:\n{{ITEM_JSON}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{KIND}}", string(item.Kind),
		"{{MATCH_PERCENTAGE}}", strconv.Itoa(item.MatchPercentage),
		"{{ITEM_JSON}}", itemJSON,
		"{{TONE}}", tone,
	)
	return replacer.Replace(template)
}

func parseResponse(raw string) (string, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		// plain text answers are accepted as is
		if text := strings.TrimSpace(raw); text != "" && !strings.HasPrefix(text, "{") {
			return text, nil
		}
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	message := coerceString(data["message"])
	if message == "" {
		return "", errors.New("gemini response has no message")
	}

	return message, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
