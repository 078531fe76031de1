package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/shared"
	"github.com/desertthunder/splitify/internal/tasks"
	"github.com/desertthunder/splitify/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/splitify-tui.log"

// TUI launches the interactive terminal UI for picking and splitting playlists.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.useFileLogger(); err != nil {
		return err
	}

	catalog, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	engine, err := tasks.NewSplitEngine(catalog, tasks.OptionsFromConfig(r.config.Split), r.logger)
	if err != nil {
		return err
	}

	_, err = r.runTUI(ctx, catalog, engine, nil)
	return err
}

// useFileLogger redirects logs to a file to avoid interfering with TUI rendering.
func (r *Runner) useFileLogger() error {
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)
	return nil
}

func (r *Runner) runTUI(ctx context.Context, catalog services.Catalog, engine tasks.Splitter, ids []string) (*models.ProcessReport, error) {
	model := ui.NewModel(ctx, catalog, engine, ids)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	return model.Report()
}
