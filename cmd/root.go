package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hh-swiper/internal/headhunter"
	"github.com/spigell/hh-swiper/internal/swipe"
)

const (
	app = "hh-swiper"

	SourceDemo       = "demo"
	SourceFile       = "file"
	SourceHeadhunter = "headhunter"
)

type Config struct {
	Content     string                   `mapstructure:"content" validate:"oneof=jobs candidates"`
	Pool        PoolConfig               `mapstructure:"pool"`
	Search      *headhunter.SearchParams `mapstructure:"search"`
	UserAgent   string                   `mapstructure:"user-agent"`
	TokenFile   string                   `mapstructure:"token-file"`
	MatchesFile string                   `mapstructure:"matches-file"`
	Exclude     ExcludeConfig            `mapstructure:"exclude"`
	Swipe       SwipeConfig              `mapstructure:"swipe"`
	AI          AIConfig                 `mapstructure:"ai"`
}

type PoolConfig struct {
	Source          string `mapstructure:"source" validate:"oneof=demo file headhunter"`
	File            string `mapstructure:"file" validate:"required_if=Source file"`
	InstructionCard bool   `mapstructure:"instruction-card"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies" validate:"dive,required"`
	// Applied keeps vacancies already answered on hh.ru out of the pool.
	Applied bool `mapstructure:"applied"`
}

type SwipeConfig struct {
	WindowSize          int           `mapstructure:"window-size" validate:"min=1,max=20"`
	Threshold           float64       `mapstructure:"threshold" validate:"gt=0"`
	MatchProbability    float64       `mapstructure:"match-probability" validate:"min=0,max=1"`
	TierCycle           []string      `mapstructure:"tier-cycle" validate:"min=1,dive,oneof=green yellow red"`
	ExitDuration        time.Duration `mapstructure:"exit-duration" validate:"gte=0"`
	FlashDuration       time.Duration `mapstructure:"flash-duration" validate:"gte=0"`
	CelebrationDuration time.Duration `mapstructure:"celebration-duration" validate:"gte=0"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini" validate:"required_if=Enabled true"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	Tone         string `mapstructure:"tone"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-swiper is a terminal card stack for swiping through jobs or candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("token-file", "HH_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HH_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-swiper.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("content", "c", string(swipe.ContentJobs), "what to swipe: jobs or candidates")
	rootCmd.PersistentFlags().StringP("pool-file", "p", "", "a YAML or JSON pool file. Switches the pool source to file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("content", rootCmd.PersistentFlags().Lookup("content"))
	viper.BindPFlag("pool.file", rootCmd.PersistentFlags().Lookup("pool-file"))
}

func setDefaults(v *viper.Viper) {
	defaults := swipe.DefaultOptions()

	v.SetDefault("content", string(swipe.ContentJobs))
	v.SetDefault("pool.source", SourceDemo)
	v.SetDefault("pool.instruction-card", false)
	v.SetDefault("matches-file", "hh-swiper-matches.json")
	v.SetDefault("exclude.applied", true)
	v.SetDefault("swipe.window-size", defaults.WindowSize)
	v.SetDefault("swipe.threshold", defaults.Threshold)
	v.SetDefault("swipe.match-probability", defaults.MatchProbability)
	v.SetDefault("swipe.tier-cycle", []string{"green", "yellow", "red"})
	v.SetDefault("swipe.exit-duration", defaults.ExitDuration)
	v.SetDefault("swipe.flash-duration", defaults.FlashDuration)
	v.SetDefault("swipe.celebration-duration", defaults.CelebrationDuration)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The demo pool works without any config, so only an explicit --config
	// must exist. A config that exists but does not parse is always fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// a pool file on the command line implies the file source
	if config.Pool.File != "" && config.Pool.Source == SourceDemo {
		config.Pool.Source = SourceFile
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &config, nil
}

// options maps the swipe section onto session options.
func (c *Config) options() (swipe.Options, error) {
	content, err := swipe.ParseContentType(c.Content)
	if err != nil {
		return swipe.Options{}, err
	}

	cycle := make([]swipe.Tier, 0, len(c.Swipe.TierCycle))
	for _, name := range c.Swipe.TierCycle {
		tier, err := swipe.ParseTier(name)
		if err != nil {
			return swipe.Options{}, err
		}
		cycle = append(cycle, tier)
	}

	opts := swipe.DefaultOptions()
	opts.ContentType = content
	opts.WindowSize = c.Swipe.WindowSize
	opts.Threshold = c.Swipe.Threshold
	opts.MatchProbability = c.Swipe.MatchProbability
	opts.TierCycle = cycle
	opts.ExitDuration = c.Swipe.ExitDuration
	opts.FlashDuration = c.Swipe.FlashDuration
	opts.CelebrationDuration = c.Swipe.CelebrationDuration

	return opts, nil
}
