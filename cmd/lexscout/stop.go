package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jpark-labs/lexscout/internal/control"
)

var stopCmd = &cobra.Command{
	Use:   "stop [directory]",
	Short: "Ask a running research session to wind down",
	Long: `Signal a running research session to stop after its current round.

The signal is a file under .lexscout/signals that the running session
polls. Completed rounds survive and the report is still generated over
whatever findings were gathered.

The directory argument is optional and defaults to the current directory.

Examples:
  lexscout stop               # Stop the session running here
  lexscout stop ./myreview    # Stop the session in another directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	if _, err := os.Stat(filepath.Join(targetDir, ".lexscout")); err != nil {
		return fmt.Errorf("%s is not a lexscout project (run lexscout init first)", targetDir)
	}

	sm, err := control.NewSignalManager(targetDir)
	if err != nil {
		return fmt.Errorf("opening signals directory: %w", err)
	}
	defer sm.Close()

	if err := sm.SendStop(); err != nil {
		return fmt.Errorf("writing stop signal: %w", err)
	}

	color.New(color.FgGreen).Printf("✓ Stop signal written to %s\n", sm.SignalsDir())
	fmt.Println("The running session will wind down after its current round.")
	return nil
}
