// Package config loads assistant configuration: defaults, then the global
// and project config files, then environment variables for credentials.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/samwarb/amazing-marvin/internal/llm"
	"github.com/samwarb/amazing-marvin/internal/marvin"
	"github.com/samwarb/amazing-marvin/internal/search"
	"github.com/samwarb/amazing-marvin/internal/tidy"
)

// Config is the full assistant configuration.
type Config struct {
	Marvin MarvinConfig `yaml:"marvin" mapstructure:"marvin"`
	OpenAI OpenAIConfig `yaml:"openai" mapstructure:"openai"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Tidy   TidyConfig   `yaml:"tidy" mapstructure:"tidy"`
}

// MarvinConfig configures the task-store client. Tokens come from the
// environment only, never from config files.
type MarvinConfig struct {
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	APIToken        string `yaml:"-" mapstructure:"-"`
	FullAccessToken string `yaml:"-" mapstructure:"-"`
}

// OpenAIConfig configures the completion client.
type OpenAIConfig struct {
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	Model           string  `yaml:"model" mapstructure:"model"`
	InputCostPer1M  float64 `yaml:"input_cost_per_1m" mapstructure:"input_cost_per_1m"`
	OutputCostPer1M float64 `yaml:"output_cost_per_1m" mapstructure:"output_cost_per_1m"`
	APIKey          string  `yaml:"-" mapstructure:"-"`
}

// SearchConfig tunes the question-answering pipeline.
type SearchConfig struct {
	MaxRelevant int `yaml:"max_relevant" mapstructure:"max_relevant"`
	Workers     int `yaml:"workers" mapstructure:"workers"`
}

// TidyConfig tunes the maintenance pass.
type TidyConfig struct {
	WriteDelayMS  int      `yaml:"write_delay_ms" mapstructure:"write_delay_ms"`
	ImageSuffixes []string `yaml:"image_suffixes" mapstructure:"image_suffixes"`
	StubKeyword   string   `yaml:"stub_keyword" mapstructure:"stub_keyword"`
	StubMaxWords  int      `yaml:"stub_max_words" mapstructure:"stub_max_words"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	media := tidy.DefaultMediaPolicy()
	pricing := llm.DefaultPricing()
	return &Config{
		Marvin: MarvinConfig{BaseURL: marvin.DefaultBaseURL},
		OpenAI: OpenAIConfig{
			BaseURL:         llm.DefaultBaseURL,
			Model:           llm.DefaultModel,
			InputCostPer1M:  pricing.InputPer1M,
			OutputCostPer1M: pricing.OutputPer1M,
		},
		Search: SearchConfig{
			MaxRelevant: search.DefaultMaxRelevant,
			Workers:     search.DefaultGatherWorkers,
		},
		Tidy: TidyConfig{
			WriteDelayMS:  int(tidy.DefaultWriteDelay / time.Millisecond),
			ImageSuffixes: media.ImageSuffixes,
			StubKeyword:   media.StubKeyword,
			StubMaxWords:  media.StubMaxWords,
		},
	}
}

// Load merges defaults, the global config (~/.marvin/config.yaml), the
// project config (./.marvin/config.yaml) and the environment. A .env file
// in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if home, err := os.UserHomeDir(); err == nil {
		_ = loadFile(filepath.Join(home, ".marvin", "config.yaml"), cfg)
	}
	if cwd, err := os.Getwd(); err == nil {
		_ = loadFile(filepath.Join(cwd, ".marvin", "config.yaml"), cfg)
	}

	cfg.Marvin.APIToken = os.Getenv("MARVIN_API_TOKEN")
	cfg.Marvin.FullAccessToken = os.Getenv("MARVIN_FULL_ACCESS_TOKEN")
	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

// MediaPolicy builds the note-skip policy from config.
func (c *Config) MediaPolicy() tidy.MediaPolicy {
	return tidy.MediaPolicy{
		ImageSuffixes: c.Tidy.ImageSuffixes,
		StubKeyword:   c.Tidy.StubKeyword,
		StubMaxWords:  c.Tidy.StubMaxWords,
	}
}

// Pricing builds the cost rates from config.
func (c *Config) Pricing() llm.Pricing {
	return llm.Pricing{
		InputPer1M:  c.OpenAI.InputCostPer1M,
		OutputPer1M: c.OpenAI.OutputCostPer1M,
	}
}

// WriteDelay returns the inter-write pause for the maintenance pass.
func (c *Config) WriteDelay() time.Duration {
	return time.Duration(c.Tidy.WriteDelayMS) * time.Millisecond
}
