package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpark-labs/lexscout/internal/state"
)

var (
	historyLimit  int
	historyExport bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Inspect past research runs",
	Long: `List or inspect past research runs from .lexscout/runs.db.

Without arguments, lists recent runs. With a run ID, shows the run's
brief and final notes. With --export, dumps the full run as JSON.

Examples:
  lexscout history
  lexscout history 1a2b3c4d
  lexscout history 1a2b3c4d --export > run.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	historyCmd.Flags().BoolVar(&historyExport, "export", false, "Dump the run as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := state.Open(state.DefaultPath("."))
	if err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}
	defer store.Close()

	if len(args) == 0 {
		return listRuns(store)
	}
	if historyExport {
		return exportRun(store, args[0])
	}
	return showRun(store, args[0])
}

func listRuns(store *state.Store) error {
	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		brief := run.Brief
		if len(brief) > 60 {
			brief = brief[:60] + "..."
		}
		flags := ""
		if run.Truncated {
			flags = "  [truncated]"
		}
		fmt.Printf("%s  %s  %d workers / %d turns  %s%s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.WorkersRun, run.Iterations,
			brief, flags)
	}
	return nil
}

func showRun(store *state.Store, runID string) error {
	results, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s)\n", results.RunID, results.StartedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Workers: %d, supervisor turns: %d, truncated: %v\n",
		results.WorkersRun, results.Iterations, results.Truncated)
	fmt.Printf("Tokens: %d in / %d out\n\n", results.InputTokens, results.OutputTokens)
	fmt.Printf("Brief:\n%s\n\n", results.Brief)

	fmt.Printf("Notes (%d):\n", len(results.Notes))
	for i, note := range results.Notes {
		fmt.Printf("\n--- note %d ---\n%s\n", i+1, strings.TrimSpace(note))
	}
	return nil
}

func exportRun(store *state.Store, runID string) error {
	data, err := store.ExportRun(runID)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
