// Package config handles configuration loading and management for lexscout.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for lexscout.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Tavily    TavilyConfig    `mapstructure:"tavily"`
	Research  ResearchConfig  `mapstructure:"research"`
	Bedrock   BedrockConfig   `mapstructure:"bedrock"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// TavilyConfig holds search API settings.
type TavilyConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// ResearchConfig holds the research budget settings.
type ResearchConfig struct {
	// Profile is the default depth profile (quick, standard, deep).
	Profile string `mapstructure:"profile"`
	// MaxWorkers is the maximum parallel delegations per round.
	MaxWorkers int `mapstructure:"max_workers"`
	// MaxIterations is the supervisor decision-turn budget.
	MaxIterations int `mapstructure:"max_iterations"`
	// ToolBudget is the per-worker tool-call ceiling.
	ToolBudget int `mapstructure:"tool_budget"`
	// Timeout bounds the whole run. Zero disables the bound.
	Timeout time.Duration `mapstructure:"timeout"`
}

// BedrockConfig holds AWS Bedrock settings.
type BedrockConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, TAVILY_API_KEY)
// 2. Project config (.lexscout.yaml in current directory or parent)
// 3. User config (~/.config/lexscout/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Project config takes precedence over user config.
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("tavily.api_key", "TAVILY_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Tavily.APIKey = expandEnv(cfg.Tavily.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Tavily.APIKey = expandEnv(cfg.Tavily.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("tavily.api_key", cfg.Tavily.APIKey)
	v.Set("research.profile", cfg.Research.Profile)
	v.Set("research.max_workers", cfg.Research.MaxWorkers)
	v.Set("research.max_iterations", cfg.Research.MaxIterations)
	v.Set("research.tool_budget", cfg.Research.ToolBudget)
	v.Set("research.timeout", cfg.Research.Timeout.String())
	v.Set("bedrock.enabled", cfg.Bedrock.Enabled)
	v.Set("bedrock.region", cfg.Bedrock.Region)
	v.Set("bedrock.profile", cfg.Bedrock.Profile)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values. The research budgets mirror the
// service defaults: three parallel workers, six supervisor turns, five
// tool calls per worker.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("tavily.api_key", "")

	v.SetDefault("research.profile", "standard")
	v.SetDefault("research.max_workers", 3)
	v.SetDefault("research.max_iterations", 6)
	v.SetDefault("research.tool_budget", 5)
	v.SetDefault("research.timeout", "15m")

	v.SetDefault("bedrock.enabled", false)
	v.SetDefault("bedrock.region", "")
	v.SetDefault("bedrock.profile", "")
}

// getUserConfigDir returns the XDG config directory for lexscout.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "lexscout")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "lexscout")
	}
	return filepath.Join(home, ".config", "lexscout")
}

// findProjectConfig searches for .lexscout.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".lexscout.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Research: ResearchConfig{
			Profile:       "standard",
			MaxWorkers:    3,
			MaxIterations: 6,
			ToolBudget:    5,
			Timeout:       15 * time.Minute,
		},
	}
}
