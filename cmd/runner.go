package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splitify/internal/server"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	catalogs server.CatalogFactory
	logger   *log.Logger
	output   io.Writer
	status   io.Writer
	open     func(playlistID string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Catalogs server.CatalogFactory // defaults to the Spotify Web API client
	Logger   *log.Logger
	Output   io.Writer // reports and listings
	Status   io.Writer // progress lines
	Open     func(playlistID string) error // defaults to the web player
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}
	if opts.Open == nil {
		opts.Open = shared.OpenPlaylist
	}

	r := &Runner{
		config:   opts.Config,
		catalogs: opts.Catalogs,
		logger:   opts.Logger,
		output:   opts.Output,
		status:   opts.Status,
		open:     opts.Open,
	}
	if r.catalogs == nil {
		r.catalogs = r.spotifyCatalog
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, splitCommand, playlistsCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file when present and applies the log level.
//
// A missing file is not an error: defaults apply and `setup` can create it.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	level := cmd.String("log-level")
	if level == "" {
		level = r.config.Log.Level
	}
	ll, err := shared.ParseLogLevel(level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, ll)

	return ctx, nil
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// spotifyCatalog builds the Spotify client from the current config. It reads r.config at call time
// so values loaded in [Runner.Before] apply.
func (r *Runner) spotifyCatalog(accessToken string) (services.Catalog, error) {
	svc, err := services.NewSpotifyService(accessToken, r.config.Catalog, r.logger)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// catalog resolves the access token from --token/SPOTIFY_TOKEN, then the config file.
func (r *Runner) catalog(cmd *cli.Command) (services.Catalog, error) {
	token := cmd.String("token")
	if token == "" {
		token = r.config.Credentials.Spotify.AccessToken
	}
	if token == "" {
		return nil, fmt.Errorf("%w: pass --token, set SPOTIFY_TOKEN, or set credentials.spotify.access_token", shared.ErrMissingCredentials)
	}
	return r.catalogs(token)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeStatus(format string, args ...any) {
	fmt.Fprintf(r.status, format, args...)
}
