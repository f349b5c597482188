package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultModel   = "gpt-3.5-turbo"
	defaultBaseURL = "https://api.openai.com/v1"

	// DefaultQuotaBytes is the capacity of the destinations slot.
	DefaultQuotaBytes = 5 * 1024 * 1024
)

// Config holds CLI configuration.
type Config struct {
	ConfigDir   string
	DBPath      string
	LogPath     string
	LogLevel    string
	OpenAIKey   string
	Model       string
	BaseURL     string
	QuotaBytes  int
	TipsEnabled bool
	// Reset clears the stored destinations before start-up.
	Reset bool
}

// flag name -> viper key
var flagKeys = map[string]string{
	"db":              "db",
	"openai-key":      "openai_key",
	"openai-model":    "openai_model",
	"openai-base-url": "openai_base_url",
	"log-level":       "log_level",
	"quota":           "quota",
}

// ErrVersionRequested is returned when -version was passed.
var ErrVersionRequested = errors.New("version requested")

// ParseFlags parses command-line flags and returns configuration.
// Settings are layered: defaults, ~/.wanderlist/config.yaml, .env files,
// environment, flags.
func ParseFlags(version string) (*Config, error) {
	// .env values never override variables already in the environment.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	configDir := filepath.Join(home, ".wanderlist")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := Load(os.Args[1:], configDir)
	if errors.Is(err, ErrVersionRequested) {
		fmt.Println("wanderlist", version)
		os.Exit(0)
	}
	if err != nil {
		return nil, err
	}

	setup, err := readTipsSetup(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load setup: %w", err)
	}
	if needsSetup(setup, os.Stdin) {
		if setup, err = runSetup(configDir, config.OpenAIKey); err != nil {
			return nil, err
		}
	}

	if err := config.applyTipsSetup(setup); err != nil {
		return nil, err
	}
	return config, nil
}

// Load resolves configuration from args, the environment and the optional
// config.yaml in configDir. It does not run the first-run setup.
func Load(args []string, configDir string) (*Config, error) {
	v := viper.New()
	v.SetDefault("db", filepath.Join(configDir, "wanderlist.db"))
	v.SetDefault("openai_model", defaultModel)
	v.SetDefault("openai_base_url", defaultBaseURL)
	v.SetDefault("log_level", "info")
	v.SetDefault("quota", DefaultQuotaBytes)

	configFile := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	v.SetEnvPrefix("wanderlist")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("openai_key", "WANDERLIST_OPENAI_KEY", "OPENAI_API_KEY", "VITE_OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("v.BindEnv: %w", err)
	}

	fs := flag.NewFlagSet("wanderlist", flag.ContinueOnError)
	fs.String("db", "", "Path to SQLite database file (default: ~/.wanderlist/wanderlist.db)")
	fs.String("openai-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	fs.String("openai-model", "", "Chat model used for travel tips (default: "+defaultModel+")")
	fs.String("openai-base-url", "", "Chat-completion API base URL (default: "+defaultBaseURL+")")
	fs.String("log-level", "", "Log level: debug, info, warn, error (default: info)")
	fs.Int("quota", 0, "Maximum bytes stored for the destination list (default: 5 MiB)")
	reset := fs.Bool("reset", false, "Delete saved destinations and start over with the samples")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *showVersion {
		return nil, ErrVersionRequested
	}
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	config := &Config{
		ConfigDir: configDir,
		DBPath:    v.GetString("db"),
		LogPath:   filepath.Join(configDir, "wanderlist.log"),
		LogLevel:  v.GetString("log_level"),
		OpenAIKey: strings.TrimSpace(v.GetString("openai_key")),
		Model:     v.GetString("openai_model"),
		BaseURL:   v.GetString("openai_base_url"),
		Reset:     *reset,
	}
	config.QuotaBytes = v.GetInt("quota")
	if config.QuotaBytes <= 0 {
		return nil, fmt.Errorf("quota must be positive, got %q", v.GetString("quota"))
	}
	config.TipsEnabled = config.OpenAIKey != ""
	return config, nil
}

// applyTipsSetup folds the first-run answer into the config.
// A key from flags or the environment always enables tips.
func (c *Config) applyTipsSetup(setup TipsSetup) error {
	c.TipsEnabled = setup.AITips
	if c.OpenAIKey == "" && setup.AITips {
		key, err := readAPIKey(c.ConfigDir)
		if err != nil {
			return fmt.Errorf("failed to read stored API key: %w", err)
		}
		c.OpenAIKey = key
	}
	if c.OpenAIKey != "" {
		c.TipsEnabled = true
	}
	return nil
}
