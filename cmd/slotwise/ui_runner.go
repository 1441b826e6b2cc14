package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"slotwise/internal/query"
	"slotwise/internal/ui"
)

type runOutcome struct {
	outcomes []query.Outcome
	err      error
}

func runQueriesWithUI(ctx context.Context, title string, qs []query.Query, opts query.Options) ([]query.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan query.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = events
		outcomes, err := query.Run(ctx, qs, optsCopy)
		outcomeCh <- runOutcome{outcomes: outcomes, err: err}
		close(events)
	}()

	labels := make([]string, len(qs))
	for i, q := range qs {
		labels[i] = query.Label(q)
	}
	model := ui.NewProgressModel(title, labels, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// quitting the UI early interrupts the batch
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.outcomes, uiErr
	}
	return outcome.outcomes, outcome.err
}
