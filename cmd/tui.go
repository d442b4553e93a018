package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lunchroulette/lunchd/internal/shared"
	"github.com/lunchroulette/lunchd/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for login and favorites.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/lunchd-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	manager, cleanup, err := r.newManager(r.reloadConfig(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	model := ui.NewModel(ctx, manager)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
