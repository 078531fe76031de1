package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/splitify/internal/formatter"
	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/shared"
	"github.com/desertthunder/splitify/internal/tasks"
	"github.com/urfave/cli/v3"
)


// Split runs the genre split for the playlist IDs given as arguments.
func (r *Runner) Split(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	useTUI := cmd.Bool("tui")

	if len(ids) == 0 && !useTUI {
		return fmt.Errorf("%w: at least one playlist ID is required", shared.ErrMissingArgument)
	}

	format := cmd.String("format")
	if _, err := formatter.FormatReport(&models.ProcessReport{}, format); err != nil {
		return err
	}

	opts, err := r.splitOptions(cmd)
	if err != nil {
		return err
	}

	if useTUI {
		if err := r.useFileLogger(); err != nil {
			return err
		}
	}

	catalog, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	engine, err := tasks.NewSplitEngine(catalog, opts, r.logger)
	if err != nil {
		return err
	}

	var report *models.ProcessReport
	if useTUI {
		report, err = r.runTUI(ctx, catalog, engine, ids)
	} else {
		report, err = r.runSplit(ctx, engine, ids)
	}

	if report != nil && len(report.Playlists) > 0 {
		if werr := r.writeReport(report, format, cmd.String("output")); werr != nil {
			return werr
		}
		if cmd.Bool("open") {
			r.openPlaylists(report)
		}
		if failed := report.Failed(); failed > 0 && err == nil {
			r.logger.Warn("some playlists failed", "failed", failed, "total", len(report.Playlists))
		}
	}

	return err
}

// splitOptions starts from the [split] config section and applies flag overrides.
func (r *Runner) splitOptions(cmd *cli.Command) (tasks.Options, error) {
	opts := tasks.OptionsFromConfig(r.config.Split)

	if cmd.IsSet("workers") {
		workers := cmd.Int("workers")
		if workers < 1 {
			return opts, fmt.Errorf("%w: --workers must be at least 1", shared.ErrInvalidArgument)
		}
		opts.PlaylistWorkers = workers
	}
	if cmd.IsSet("pacing") {
		pacing := cmd.Duration("pacing")
		if pacing < 0 {
			return opts, fmt.Errorf("%w: --pacing must not be negative", shared.ErrInvalidArgument)
		}
		opts.ChunkPacing = pacing
	}
	if cmd.IsSet("strategy") {
		opts.Strategy = cmd.String("strategy")
	}

	return opts, nil
}

// runSplit prints progress lines while the engine runs.
func (r *Runner) runSplit(ctx context.Context, engine tasks.Splitter, ids []string) (*models.ProcessReport, error) {
	r.logger.Info("starting split", "playlists", len(ids))

	progressCh := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveOwner:
				r.writeStatus("👤 %s\n", update.Message)
			case tasks.FetchTracks:
				r.writeStatus("📥 %s\n", update.Message)
			case tasks.ResolveGenres:
				r.writeStatus("🔍 %s\n", update.Message)
			case tasks.PartitionTracks:
				r.writeStatus("🗂  %s\n", update.Message)
			case tasks.WriteGroups:
				r.writeStatus("   %s\n", update.Message)
			case tasks.PlaylistDone, tasks.PlaylistFailed:
				r.writeStatus("%s\n", update.Message)
			case tasks.RunDone:
				r.writeStatus("\n%s\n\n", update.Message)
			}
		}
	}()

	report, err := engine.Process(ctx, ids, progressCh)
	close(progressCh)
	<-done

	return report, err
}

func (r *Runner) writeReport(report *models.ProcessReport, format, path string) error {
	if path == "" {
		return formatter.WriteReport(r.output, report, format)
	}

	written, err := formatter.WriteReportFile(report, format, path)
	if err != nil {
		return err
	}
	r.logger.Info("report written", "path", written)
	return nil
}

func (r *Runner) openPlaylists(report *models.ProcessReport) {
	for _, p := range report.Playlists {
		for _, g := range p.Groups {
			if g.PlaylistID == "" {
				continue
			}
			if err := r.open(g.PlaylistID); err != nil {
				r.logger.Warn("failed to open playlist", "playlist", g.PlaylistName, "error", err)
			}
		}
	}
}

// Playlists lists the current user's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.catalog(cmd)
	if err != nil {
		return err
	}

	playlists, err := catalog.UserPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}
	r.logger.Debug("listed playlists", "count", len(playlists))

	switch format := strings.ToLower(cmd.String("format")); format {
	case formatter.FormatJSON:
		return r.writeJSON(playlists, true)
	case formatter.FormatCSV:
		data, err := formatter.PlaylistsToCSV(playlists)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "", formatter.FormatText:
		if len(playlists) == 0 {
			return r.writePlain("No playlists found\n")
		}
		return r.writePlain("%s", formatter.PlaylistsToText(playlists))
	default:
		return fmt.Errorf("%w: unsupported format %q (use text, csv, json)", shared.ErrInvalidArgument, format)
	}
}
