package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/jpark-labs/lexscout/internal/config"
	"github.com/jpark-labs/lexscout/internal/control"
	"github.com/jpark-labs/lexscout/internal/engine"
	"github.com/jpark-labs/lexscout/internal/llm"
	"github.com/jpark-labs/lexscout/internal/report"
	"github.com/jpark-labs/lexscout/internal/scope"
	"github.com/jpark-labs/lexscout/internal/state"
	"github.com/jpark-labs/lexscout/internal/tools"
	"github.com/jpark-labs/lexscout/pkg/models"
)

var (
	researchTUI        bool
	researchProfile    string
	researchWorkers    int
	researchIterations int
	researchToolBudget int
	researchTimeout    time.Duration
	researchDocuments  []string
	researchOutput     string
	researchNoStore    bool
)

var researchCmd = &cobra.Command{
	Use:   "research [brief...]",
	Short: "Run a deep research review",
	Long: `Run a deep research review for the given brief.

Without --document, the arguments are used directly as the research brief.

With --document, each file should contain the parsed facts of one legal
document (lease agreement, property registration). The intake gate first
checks that the brief states your role (임차인 or 임대인) and that at least
one document was supplied; if anything is missing it prints the question
to answer and exits. Otherwise the brief planner synthesizes the full
research query from the conversation and the document facts before the
research starts.

Examples:
  lexscout research "임차인 입장에서 보증금 5억 계약 검토해줘" \
      --document lease_facts.txt --document registration_facts.txt
  lexscout research "deposit priority under the Housing Lease Protection Act" --tui
  lexscout research "..." --profile deep --output report.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().BoolVar(&researchTUI, "tui", false, "Watch the run in a live terminal UI")
	researchCmd.Flags().StringVar(&researchProfile, "profile", "", "Depth profile: quick, standard, deep")
	researchCmd.Flags().IntVar(&researchWorkers, "workers", 0, "Max parallel research workers per round")
	researchCmd.Flags().IntVar(&researchIterations, "iterations", 0, "Max supervisor decision turns")
	researchCmd.Flags().IntVar(&researchToolBudget, "tool-budget", 0, "Max tool calls per worker")
	researchCmd.Flags().DurationVar(&researchTimeout, "timeout", 0, "Run timeout (0 uses the profile's)")
	researchCmd.Flags().StringArrayVar(&researchDocuments, "document", nil, "Parsed document facts file (repeatable)")
	researchCmd.Flags().StringVarP(&researchOutput, "output", "o", "", "Write the final report to a file instead of stdout")
	researchCmd.Flags().BoolVar(&researchNoStore, "no-store", false, "Skip persisting the run to .lexscout/runs.db")
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Bedrock.Enabled,
		AWSRegion:     cfg.Bedrock.Region,
		AWSProfile:    cfg.Bedrock.Profile,
	})
	if err != nil {
		return err
	}
	if client.IsBedrock() {
		fmt.Fprintf(os.Stderr, "Routing through AWS Bedrock (%s)\n", client.Model())
	}

	if cfg.Tavily.APIKey == "" {
		return fmt.Errorf("Tavily API key is not set (set TAVILY_API_KEY or tavily.api_key in config)")
	}
	registry, err := tools.NewResearchRegistry(tools.NewTavilyClient(cfg.Tavily.APIKey))
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Ctrl-C and SIGTERM wind the run down; partial notes survive.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted, finishing the current round...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// A stop file in .lexscout/signals (written by lexscout stop) also
	// cancels the run.
	if sm, smErr := control.NewSignalManager("."); smErr == nil {
		defer sm.Close()
		sm.ClearSignals()
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if sm.ShouldStop() {
						fmt.Fprintln(os.Stderr, "Stop signal received, finishing the current round...")
						cancel()
						return
					}
				}
			}
		}()
	}

	brief, proceed, err := resolveBrief(ctx, client, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	opts, err := engineOptions(cmd, cfg)
	if err != nil {
		return err
	}

	if !researchNoStore {
		store, openErr := state.Open(state.DefaultPath("."))
		if openErr != nil {
			log.Printf("[cli] run persistence disabled: %v", openErr)
		} else {
			defer store.Close()
			opts = append(opts, engine.WithStore(store))
		}
	}
	opts = append(opts, engine.WithTokenTracker(client.Tracker()))

	eng, err := engine.New(engine.Config{Reasoner: client, Registry: registry}, opts...)
	if err != nil {
		return err
	}

	var results *models.ResearchResults
	if researchTUI {
		results, err = runWithTUI(ctx, cancel, eng, brief)
	} else {
		go printEvents(eng.Events())
		results, err = eng.Run(ctx, brief)
	}
	if err != nil {
		// Partial results still exist; report what was gathered.
		fmt.Fprintf(os.Stderr, "Research ended early: %v\n", err)
	}
	if results == nil {
		return err
	}

	printRunSummary(results, client.Tracker())

	if !results.HasFindings() {
		fmt.Fprintln(os.Stderr, "No findings were gathered; skipping report generation.")
		return err
	}

	// Report generation runs on a fresh context: a cancelled run still
	// deserves a report over its partial notes.
	repCtx, repCancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer repCancel()

	writer := report.NewWriter(client)
	doc, repErr := writer.Write(repCtx, brief, results.Notes)
	if repErr != nil {
		return fmt.Errorf("writing report: %w", repErr)
	}

	if researchOutput != "" {
		if writeErr := os.WriteFile(researchOutput, []byte(doc+"\n"), 0644); writeErr != nil {
			return fmt.Errorf("saving report: %w", writeErr)
		}
		fmt.Printf("Report written to %s\n", researchOutput)
	} else {
		fmt.Println()
		fmt.Println(doc)
	}

	return err
}

// resolveBrief runs the intake gate and brief planner when documents were
// supplied; otherwise the arguments are the brief as-is. The second return
// is false when the run should stop (clarification needed).
func resolveBrief(ctx context.Context, client *llm.Client, input string) (string, bool, error) {
	if len(researchDocuments) == 0 {
		return input, true, nil
	}

	facts := make([]scope.DocumentFact, 0, len(researchDocuments))
	names := make([]string, 0, len(researchDocuments))
	for _, path := range researchDocuments {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", false, fmt.Errorf("reading document facts: %w", err)
		}
		facts = append(facts, scope.DocumentFact{
			FileName: filepath.Base(path),
			Summary:  strings.TrimSpace(string(content)),
		})
		names = append(names, filepath.Base(path))
	}

	scoper := scope.NewScoper(client)

	decision, err := scoper.Clarify(ctx, []string{input}, names)
	if err != nil {
		return "", false, fmt.Errorf("intake gate: %w", err)
	}
	if decision.NeedClarification {
		fmt.Println(decision.Question)
		return "", false, nil
	}
	fmt.Println(decision.Verification)

	brief, err := scoper.PlanBrief(ctx, []string{input}, facts)
	if err != nil {
		return "", false, fmt.Errorf("planning brief: %w", err)
	}
	return brief, true, nil
}

// engineOptions resolves the research budgets: profile first, explicit
// config values next, command-line flags last.
func engineOptions(cmd *cobra.Command, cfg *config.Config) ([]engine.Option, error) {
	profileName := cfg.Research.Profile
	if cmd.Flags().Changed("profile") {
		profileName = researchProfile
	}

	profiles := config.DefaultProfiles()
	if path := filepath.Join("configs", "profiles.yaml"); fileExists(path) {
		loaded, err := config.LoadProfiles(path)
		if err != nil {
			return nil, err
		}
		profiles = loaded
	}
	p := profiles.Get(profileName)

	workers := p.MaxWorkers
	iterations := p.MaxIterations
	budget := p.ToolBudget
	timeout := p.Timeout

	if cfg.Research.MaxWorkers > 0 {
		workers = cfg.Research.MaxWorkers
	}
	if cfg.Research.MaxIterations > 0 {
		iterations = cfg.Research.MaxIterations
	}
	if cfg.Research.ToolBudget > 0 {
		budget = cfg.Research.ToolBudget
	}
	if cfg.Research.Timeout > 0 {
		timeout = cfg.Research.Timeout
	}

	if cmd.Flags().Changed("workers") {
		workers = researchWorkers
	}
	if cmd.Flags().Changed("iterations") {
		iterations = researchIterations
	}
	if cmd.Flags().Changed("tool-budget") {
		budget = researchToolBudget
	}
	if cmd.Flags().Changed("timeout") {
		timeout = researchTimeout
	}

	return []engine.Option{
		engine.WithMaxWorkers(workers),
		engine.WithMaxIterations(iterations),
		engine.WithToolBudget(budget),
		engine.WithRunTimeout(timeout),
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// printEvents is the headless progress printer.
func printEvents(events <-chan engine.Event) {
	for ev := range events {
		switch ev.Type {
		case engine.EventRunStarted:
			fmt.Printf("→ run %s started\n", ev.RunID)
		case engine.EventRoundStarted:
			fmt.Printf("→ round %d\n", ev.Round)
		case engine.EventSupervisorThinking:
			fmt.Printf("  supervisor: %s\n", ev.Message)
		case engine.EventWorkerStarted:
			fmt.Printf("  worker %s researching %q\n", ev.TaskID, ev.Topic)
		case engine.EventWorkerToolCall:
			fmt.Printf("  worker %s → %s\n", ev.TaskID, ev.Tool)
		case engine.EventWorkerCompleted:
			fmt.Printf("  worker %s done\n", ev.TaskID)
		case engine.EventWorkerFailed:
			fmt.Printf("  worker %s failed: %v\n", ev.TaskID, ev.Error)
		case engine.EventRunCompleted:
			fmt.Printf("→ run complete (%s)\n", ev.Message)
		}
	}
}

func printRunSummary(results *models.ResearchResults, tracker *llm.TokenTracker) {
	fmt.Println()
	fmt.Printf("Run %s: %d workers, %d supervisor turns", results.RunID, results.WorkersRun, results.Iterations)
	if results.Truncated {
		fmt.Print(" (iteration budget reached)")
	}
	fmt.Println()
	if tracker != nil {
		in, out := tracker.Total()
		fmt.Printf("Tokens: %d in / %d out across %d calls (~$%.2f)\n", in, out, tracker.Calls(), tracker.Cost())
	}
}
