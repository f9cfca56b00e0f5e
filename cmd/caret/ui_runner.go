package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"caret/internal/diag"
	"caret/internal/driver"
	"caret/internal/ui"
)

type renderOutcome struct {
	results []driver.Result
	tally   diag.Tally
	err     error
}

// runRenderWithUI drives the batch under a Bubble Tea progress view.
// Batch events flow through a channel; the model quits when it closes.
func runRenderWithUI(ctx context.Context, title string, paths []string, opts driver.Options) ([]driver.Result, diag.Tally, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan renderOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Observe = func(e driver.Event) { events <- e }
		results, tally, err := driver.RenderBatch(ctx, paths, optsCopy)
		outcomeCh <- renderOutcome{results: results, tally: tally, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, outcome.tally, uiErr
	}
	return outcome.results, outcome.tally, outcome.err
}
