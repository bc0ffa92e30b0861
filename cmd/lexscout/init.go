package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	initForce      bool
	initWithConfig bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a lexscout project",
	Long: `Initialize a directory for use with lexscout.

This command sets up everything a run needs:
  - Creates the .lexscout directory (signals, run database location)
  - Optionally writes a starter .lexscout.yaml

The directory argument is optional and defaults to the current directory.

Examples:
  lexscout init                 # Initialize current directory
  lexscout init ./myreview      # Initialize specific directory
  lexscout init --with-config   # Also write a starter .lexscout.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if already set up")
	initCmd.Flags().BoolVar(&initWithConfig, "with-config", false, "Write a starter .lexscout.yaml")
}

const starterConfig = `# lexscout project configuration.
# Values here override ~/.config/lexscout/config.yaml.
# API keys are better kept in the environment:
#   export ANTHROPIC_API_KEY=...
#   export TAVILY_API_KEY=...

research:
  profile: standard
  # max_workers: 3
  # max_iterations: 6
  # tool_budget: 5
  # timeout: 15m

# bedrock:
#   enabled: true
#   region: us-west-2
`

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}
	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving directory: %w", err)
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	lexscoutDir := filepath.Join(absPath, ".lexscout")
	if _, err := os.Stat(lexscoutDir); err == nil && !initForce {
		yellow.Printf("✓ %s already initialized (use --force to redo)\n", absPath)
		return nil
	}

	for _, dir := range []string{lexscoutDir, filepath.Join(lexscoutDir, "signals")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	green.Printf("✓ Created %s\n", lexscoutDir)

	if initWithConfig {
		configPath := filepath.Join(absPath, ".lexscout.yaml")
		if _, err := os.Stat(configPath); err == nil && !initForce {
			yellow.Printf("✓ %s already exists, leaving it alone\n", configPath)
		} else {
			if err := os.WriteFile(configPath, []byte(starterConfig), 0644); err != nil {
				return fmt.Errorf("writing starter config: %w", err)
			}
			green.Printf("✓ Wrote %s\n", configPath)
		}
	}

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		yellow.Println("! ANTHROPIC_API_KEY is not set")
	}
	if os.Getenv("TAVILY_API_KEY") == "" {
		yellow.Println("! TAVILY_API_KEY is not set (needed for search tools)")
	}

	fmt.Println("\nStart a review with:")
	fmt.Println(`  lexscout research "임차인 입장에서 계약서 검토해줘" --document facts.txt`)
	return nil
}
