package main

import (
	"context"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jpark-labs/lexscout/internal/engine"
	"github.com/jpark-labs/lexscout/internal/tui"
	"github.com/jpark-labs/lexscout/pkg/models"
)

// runWithTUI runs the engine behind a live terminal UI. Returns once the
// user quits the TUI, with whatever the engine produced. Quitting mid-run
// cancels the run; completed rounds survive.
func runWithTUI(ctx context.Context, cancel context.CancelFunc, eng *engine.Engine, brief string) (results *models.ResearchResults, retErr error) {
	// Suppress log output while the TUI is active (it corrupts the display)
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic in TUI run: %v", r)
		}
	}()

	program, _ := tui.NewProgram()

	go forwardEventsToTUI(program, eng.Events())

	type runOutcome struct {
		results *models.ResearchResults
		err     error
	}
	engineDone := make(chan runOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				engineDone <- runOutcome{err: fmt.Errorf("panic in engine: %v", r)}
			}
		}()
		res, err := eng.Run(ctx, brief)
		engineDone <- runOutcome{results: res, err: err}
	}()

	tuiDone := make(chan error, 1)
	go func() {
		_, err := program.Run()
		tuiDone <- err
	}()

	select {
	case outcome := <-engineDone:
		msg := tui.SessionDoneMsg{Success: outcome.err == nil, Message: "research complete, press q for the report"}
		if outcome.err != nil {
			msg.Message = outcome.err.Error()
		}
		program.Send(msg)
		// Let the user read the final state before the report prints.
		<-tuiDone
		return outcome.results, outcome.err

	case err := <-tuiDone:
		// User quit mid-run: cancel the run and wait for the engine so
		// partial results come back.
		if err != nil {
			log.SetOutput(originalOutput)
			log.Printf("[cli] TUI exited: %v", err)
		}
		cancel()
		outcome := <-engineDone
		return outcome.results, outcome.err
	}
}

// forwardEventsToTUI converts engine events to TUI messages.
func forwardEventsToTUI(program *tea.Program, events <-chan engine.Event) {
	for event := range events {
		program.Send(tui.RunEventMsg{Event: event})
	}
}
