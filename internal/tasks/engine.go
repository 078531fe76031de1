// package tasks implements the playlist splitting pipeline.
//
// The core abstraction is [Splitter], which fans source playlists out to per-playlist
// pipelines and reports what was written. Operations emit progress updates via channels
// for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/shared"
)

// Splitter splits source playlists into per-genre playlists.
type Splitter interface {
	// Process runs one pipeline per playlist ID and returns after all of them finish.
	Process(ctx context.Context, playlistIDs []string, progress chan<- ProgressUpdate) (*models.ProcessReport, error)
}

// Options tunes the pipeline. Zero worker counts fall back to one.
type Options struct {
	Strategy        string
	PlaylistWorkers int
	PageWorkers     int
	GenreWorkers    int
	ChunkWorkers    int
	ChunkPacing     time.Duration
	Description     string
	Public          bool
}

// OptionsFromConfig maps the [split] config section onto [Options].
func OptionsFromConfig(c shared.SplitConfig) Options {
	return Options{
		Strategy:        c.Strategy,
		PlaylistWorkers: c.PlaylistWorkers,
		PageWorkers:     c.PageWorkers,
		GenreWorkers:    c.GenreWorkers,
		ChunkWorkers:    c.ChunkWorkers,
		ChunkPacing:     c.ChunkPacing.Duration,
		Description:     c.Description,
		Public:          c.Public,
	}
}

// SplitEngine implements [Splitter] on top of a [services.Catalog].
type SplitEngine struct {
	catalog     services.Catalog
	opts        Options
	fetcher     *TrackFetcher
	resolver    *GenreResolver
	partitioner Partitioner
	writer      *PlaylistWriter
	logger      *log.Logger
}

type playlistJob struct {
	index      int
	playlistID string
}

type playlistResult struct {
	index  int
	report models.PlaylistReport
}

// NewSplitEngine wires the pipeline stages. It fails when the configured strategy is unknown or unavailable.
func NewSplitEngine(catalog services.Catalog, opts Options, logger *log.Logger) (*SplitEngine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	partitioner, err := NewPartitioner(opts.Strategy)
	if err != nil {
		return nil, err
	}

	opts.PlaylistWorkers = max(opts.PlaylistWorkers, 1)
	writer := NewPlaylistWriter(catalog, WriterOptions{
		Description: opts.Description,
		Public:      opts.Public,
		Workers:     opts.ChunkWorkers,
		Pacing:      opts.ChunkPacing,
	}, logger)

	return &SplitEngine{
		catalog:     catalog,
		opts:        opts,
		fetcher:     NewTrackFetcher(catalog, opts.PageWorkers, logger),
		resolver:    NewGenreResolver(catalog, opts.GenreWorkers, logger),
		partitioner: partitioner,
		writer:      writer,
		logger:      logger,
	}, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SplitEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// guard wraps a pool worker so a panic is logged and handed to onPanic instead of
// crashing the process; pool goroutines are outside processPlaylist's recover.
func guard(logger *log.Logger, stage string, onPanic func(r any), fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("worker panicked", "stage", stage, "panic", r)
				onPanic(r)
				err = nil
			}
		}()
		return fn()
	}
}

// Process resolves the owner once, then runs a pool of playlist workers.
//
// One playlist's failure never affects another: errors and panics inside a pipeline are
// captured in that playlist's report. Reports keep the order of playlistIDs. When the owner
// cannot be resolved every report carries [shared.ErrUserUnresolved] and so does the returned error.
func (e *SplitEngine) Process(ctx context.Context, playlistIDs []string, progress chan<- ProgressUpdate) (*models.ProcessReport, error) {
	report := &models.ProcessReport{
		RunID:     shared.GenerateID(),
		StartedAt: time.Now(),
		Playlists: make([]models.PlaylistReport, len(playlistIDs)),
	}
	logger := shared.WithLogger(e.logger, "run", report.RunID)

	if len(playlistIDs) == 0 {
		report.FinishedAt = time.Now()
		return report, nil
	}

	e.sendProgress(progress, resolveOwnerUpdate(len(playlistIDs)))
	ownerID, err := e.catalog.CurrentUserID(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", shared.ErrUserUnresolved, err)
		logger.Error("failed to resolve current user", "error", err)
		for i, id := range playlistIDs {
			report.Playlists[i] = models.PlaylistReport{PlaylistID: id, Name: id, Err: err.Error()}
		}
		report.FinishedAt = time.Now()
		return report, err
	}
	report.OwnerID = ownerID
	logger.Info("starting split", "owner", ownerID, "playlists", len(playlistIDs), "workers", e.opts.PlaylistWorkers)

	jobs := make(chan playlistJob, len(playlistIDs))
	results := make(chan playlistResult, len(playlistIDs))

	for i, id := range playlistIDs {
		jobs <- playlistJob{index: i, playlistID: id}
	}
	close(jobs)

	var wg sync.WaitGroup
	for range min(e.opts.PlaylistWorkers, len(playlistIDs)) {
		wg.Add(1)
		go e.playlistWorker(ctx, &wg, ownerID, jobs, results, progress, logger)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		report.Playlists[res.index] = res.report

		if res.report.OK() {
			e.sendProgress(progress, playlistDoneUpdate(completed, len(playlistIDs), res.report))
		} else {
			e.sendProgress(progress, playlistFailedUpdate(completed, len(playlistIDs), res.report))
		}
	}

	report.FinishedAt = time.Now()
	logger.Info("split finished",
		"succeeded", report.Succeeded(), "failed", report.Failed(), "duration", report.Duration().Round(time.Millisecond))
	e.sendProgress(progress, runDoneUpdate(report))

	return report, ctx.Err()
}

// playlistWorker is a worker goroutine that runs pipelines for playlists from the jobs channel.
func (e *SplitEngine) playlistWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	ownerID string,
	jobs <-chan playlistJob,
	results chan<- playlistResult,
	progress chan<- ProgressUpdate,
	logger *log.Logger,
) {
	defer wg.Done()

	for job := range jobs {
		results <- playlistResult{
			index:  job.index,
			report: e.processPlaylist(ctx, ownerID, job.playlistID, progress, logger),
		}
	}
}

// processPlaylist runs fetch, resolve, partition and write for one source playlist.
func (e *SplitEngine) processPlaylist(
	ctx context.Context,
	ownerID, playlistID string,
	progress chan<- ProgressUpdate,
	logger *log.Logger,
) (report models.PlaylistReport) {
	report = models.PlaylistReport{PlaylistID: playlistID, Name: playlistID}
	logger = shared.WithLogger(logger, "playlist", playlistID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panicked", "panic", r)
			report.Err = fmt.Sprintf("pipeline panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		report.Err = err.Error()
		return report
	}

	if name, err := e.catalog.PlaylistName(ctx, playlistID); err != nil {
		logger.Warn("failed to fetch playlist name, using ID", "error", err)
	} else if name != "" {
		report.Name = name
	}

	fetched, err := e.fetcher.FetchAll(ctx, playlistID)
	if err != nil {
		logger.Error("failed to fetch tracks", "error", err)
		report.Err = err.Error()
		return report
	}
	report.TrackCount = len(fetched.Tracks)
	report.FailedPages = fetched.FailedPages
	e.sendProgress(progress, fetchTracksUpdate(playlistID, report.Name, fetched))

	resolved, err := e.resolver.Resolve(ctx, fetched.Tracks)
	if err != nil {
		logger.Error("failed to resolve genres", "error", err)
		report.Err = err.Error()
		return report
	}
	report.UnresolvedArtists = resolved.Unresolved
	e.sendProgress(progress, resolveGenresUpdate(playlistID, len(fetched.Tracks), resolved.Artists))

	groups := e.partitioner.Partition(resolved.Genres)
	e.sendProgress(progress, partitionUpdate(playlistID, groups))
	logger.Debug("partitioned", "tracks", report.TrackCount, "groups", len(groups))

	report.Groups = make([]models.GroupOutcome, 0, len(groups))
	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			report.Err = err.Error()
			return report
		}

		outcome := e.writer.Write(ctx, group, ownerID, report.Name)
		report.Groups = append(report.Groups, outcome)
		e.sendProgress(progress, writeGroupUpdate(playlistID, i+1, len(groups), outcome))
	}

	logger.Info("playlist split", "name", report.Name, "tracks", report.TrackCount, "groups", len(report.Groups))
	return report
}

var _ Splitter = (*SplitEngine)(nil)
