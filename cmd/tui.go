package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"sp2yt/internal/shared"
	"sp2yt/internal/tasks"
	"sp2yt/internal/ui"
)

// TransferUI launches the interactive playlist picker and transfer view.
func (r *Runner) TransferUI(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: spotify credentials are not configured", shared.ErrMissingCredentials)
	}

	// The TUI owns the terminal, so logs go to a file instead of stderr.
	logger, err := shared.NewFileLogger("./tmp/sp2yt-tui.log")
	if err != nil {
		return err
	}
	r.SetLogger(logger)

	opts := tasks.TransferOpts{
		Variance:   r.config.Transfer.Variance,
		SearchRate: r.config.Transfer.SearchRate,
	}
	model := ui.NewModel(ctx, r.source, r.engine, opts)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}

	return nil
}
