package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/hh-swiper/internal/catalog"
	"github.com/spigell/hh-swiper/internal/filtering"
	"github.com/spigell/hh-swiper/internal/headhunter"
	"github.com/spigell/hh-swiper/internal/logger"
	"github.com/spigell/hh-swiper/internal/secrets"
	"github.com/spigell/hh-swiper/internal/swipe"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Load and filter the pool without swiping, then print it",
	Run: func(cmd *cobra.Command, _ []string) {
		dump, err := cmd.Flags().GetBool("dump")
		if err != nil {
			log.Fatal(err)
		}
		if err := runPool(cmd.Context(), cmd.OutOrStdout(), dump); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(poolCmd)

	poolCmd.Flags().Bool("dump", false, "write the filtered pool as YAML to stdout. The output is a valid pool file")
}

func runPool(ctx context.Context, out io.Writer, dump bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return err
	}

	items, statuses, err := loadPool(ctx, config, logger)
	if err != nil {
		return err
	}

	for _, status := range statuses {
		logger.Info("filter",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	if dump {
		return dumpPool(out, items)
	}

	printPool(out, items)
	return nil
}

// dumpPool writes items in the pool file format.
func dumpPool(out io.Writer, items []swipe.Item) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]swipe.Item{"items": items}); err != nil {
		return fmt.Errorf("encoding pool: %w", err)
	}
	return enc.Close()
}

func printPool(out io.Writer, items []swipe.Item) {
	for idx, item := range items {
		line := fmt.Sprintf("%3d. [%s] %s", idx+1, item.ID, item.DisplayName())
		if item.Company != "" {
			line += " / " + item.Company
		}
		if item.Location != "" {
			line += " / " + item.Location
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "%d items\n", len(items))
}

// loadPool reads the configured source and runs the filters over it.
func loadPool(ctx context.Context, config *Config, logger *zap.Logger) ([]swipe.Item, []filtering.Status, error) {
	content, err := swipe.ParseContentType(config.Content)
	if err != nil {
		return nil, nil, err
	}

	var hh *headhunter.Client
	var items []swipe.Item

	switch config.Pool.Source {
	case SourceFile:
		items, err = catalog.LoadFile(config.Pool.File, content.ItemKind())
	case SourceHeadhunter:
		hh, err = newHeadhunter(ctx, config, logger)
		if err != nil {
			return nil, nil, err
		}
		items, err = searchPool(hh, config, content)
	default:
		items, err = catalog.Demo(content)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s pool: %w", config.Pool.Source, err)
	}

	logger.Info("pool loaded",
		zap.String("source", config.Pool.Source),
		zap.String("content_type", string(content)),
		zap.Int("count", len(items)),
	)

	steps := filtering.Default()
	if !config.Exclude.Applied {
		filtering.DisableByName(steps, "applied_history", "disabled in config")
	}

	items, err = filtering.Run(ctx, &filtering.Config{
		Companies:   config.Exclude.Companies,
		MatchesFile: config.MatchesFile,
	}, filtering.Deps{HH: hh, Logger: logger}, steps, items)
	if err != nil {
		return nil, nil, fmt.Errorf("filtering failed: %w", err)
	}

	if config.Pool.InstructionCard && len(items) > 0 {
		items = append([]swipe.Item{catalog.InstructionCard(content)}, items...)
	}

	return items, filtering.Describe(steps), nil
}

func searchPool(hh *headhunter.Client, config *Config, content swipe.ContentType) ([]swipe.Item, error) {
	if content != swipe.ContentJobs {
		return nil, errors.New("hh.ru source only provides jobs")
	}
	if config.Search == nil || strings.TrimSpace(config.Search.Text) == "" {
		return nil, errors.New("search.text is required for the headhunter source")
	}

	vacancies, err := hh.Search(config.Search)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return vacancies.ToItems(), nil
}

// newHeadhunter builds the hh.ru client. The token is optional: search works
// anonymously, only the applied filter needs it.
func newHeadhunter(ctx context.Context, config *Config, logger *zap.Logger) (*headhunter.Client, error) {
	token := ""
	if file := strings.TrimSpace(config.TokenFile); file != "" {
		var err error
		token, err = secrets.Load(secrets.Source{
			Name: "headhunter token",
			File: file,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set HH_TOKEN_FILE or the 'token-file' key in the configuration file)", err)
		}
	} else {
		logger.Info("no hh token configured, searching anonymously")
	}

	hh := headhunter.New(ctx, logger, token)
	if config.UserAgent != "" {
		hh.UserAgent = config.UserAgent
	}

	return hh, nil
}
