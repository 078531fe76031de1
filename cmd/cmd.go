// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/splitify/internal/formatter"
	"github.com/urfave/cli/v3"
)

func (r *Runner) globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Spotify access token (overrides the config file)",
			Sources: cli.EnvVars("SPOTIFY_TOKEN"),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// splitCommand runs the genre split for one or more playlists.
func splitCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Split playlists into one playlist per genre",
		ArgsUsage: "[playlist-id...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: text, markdown, csv, json",
				Value:   formatter.FormatText,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to this file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show an interactive progress view (pick playlists when no IDs are given)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Playlists processed concurrently (overrides split.playlist_workers)",
			},
			&cli.DurationFlag{
				Name:  "pacing",
				Usage: "Minimum interval between track appends (overrides split.chunk_pacing)",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Partition strategy (overrides split.strategy)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open created playlists in the browser",
			},
		},
		Action: r.Split,
	}
}

// playlistsCommand lists the current user's playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"ls"},
		Usage:   "List your Spotify playlists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, json",
				Value:   formatter.FormatText,
			},
		},
		Action: r.Playlists,
	}
}

// serveCommand runs the HTTP surface.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the split pipeline over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand writes a starter configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the built-in template",
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for interactive splitting.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Pick playlists and split them interactively",
		Action:  r.TUI,
	}
}
