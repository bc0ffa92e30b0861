package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpark-labs/lexscout/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify lexscout configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/lexscout/config.yaml
Project-specific overrides can be placed in .lexscout.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", maskKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", orNotSet(cfg.Anthropic.Model))
	fmt.Printf("tavily.api_key: %s\n", maskKey(cfg.Tavily.APIKey))
	fmt.Printf("research.profile: %s\n", cfg.Research.Profile)
	fmt.Printf("research.max_workers: %d\n", cfg.Research.MaxWorkers)
	fmt.Printf("research.max_iterations: %d\n", cfg.Research.MaxIterations)
	fmt.Printf("research.tool_budget: %d\n", cfg.Research.ToolBudget)
	fmt.Printf("research.timeout: %s\n", cfg.Research.Timeout)
	fmt.Printf("bedrock.enabled: %t\n", cfg.Bedrock.Enabled)
	fmt.Printf("bedrock.region: %s\n", orNotSet(cfg.Bedrock.Region))
	fmt.Printf("bedrock.profile: %s\n", orNotSet(cfg.Bedrock.Profile))
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return "****"
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return maskKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return orNotSet(cfg.Anthropic.Model), nil
	case "tavily.api_key":
		return maskKey(cfg.Tavily.APIKey), nil
	case "research.profile":
		return cfg.Research.Profile, nil
	case "research.max_workers":
		return strconv.Itoa(cfg.Research.MaxWorkers), nil
	case "research.max_iterations":
		return strconv.Itoa(cfg.Research.MaxIterations), nil
	case "research.tool_budget":
		return strconv.Itoa(cfg.Research.ToolBudget), nil
	case "research.timeout":
		return cfg.Research.Timeout.String(), nil
	case "bedrock.enabled":
		return strconv.FormatBool(cfg.Bedrock.Enabled), nil
	case "bedrock.region":
		return orNotSet(cfg.Bedrock.Region), nil
	case "bedrock.profile":
		return orNotSet(cfg.Bedrock.Profile), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "tavily.api_key":
		cfg.Tavily.APIKey = value
	case "research.profile":
		switch value {
		case "quick", "standard", "deep":
			cfg.Research.Profile = value
		default:
			return fmt.Errorf("invalid profile %q (quick, standard, deep)", value)
		}
	case "research.max_workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid value for max_workers: %s", value)
		}
		cfg.Research.MaxWorkers = n
	case "research.max_iterations":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid value for max_iterations: %s", value)
		}
		cfg.Research.MaxIterations = n
	case "research.tool_budget":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid value for tool_budget: %s", value)
		}
		cfg.Research.ToolBudget = n
	case "research.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeout: %w", err)
		}
		cfg.Research.Timeout = d
	case "bedrock.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for bedrock.enabled: %s", value)
		}
		cfg.Bedrock.Enabled = b
	case "bedrock.region":
		cfg.Bedrock.Region = value
	case "bedrock.profile":
		cfg.Bedrock.Profile = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
