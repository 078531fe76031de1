package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultDescription is the destination playlist description; %s is replaced by the genre.
const DefaultDescription = "Split by subgenre: %s. Made using Splitify: https://splitifytool.com/"

// WriterOptions configures destination playlists and how their tracks are appended.
type WriterOptions struct {
	Description string        // every %s is replaced by the genre
	Public      bool          // visibility of created playlists
	Workers     int           // concurrent appends per playlist
	Pacing      time.Duration // minimum interval between appends, 0 disables
}

// PlaylistWriter materializes a [models.GenreGroup] as a new playlist.
type PlaylistWriter struct {
	catalog services.Catalog
	opts    WriterOptions
	logger  *log.Logger
}

// NewPlaylistWriter creates a writer.
func NewPlaylistWriter(catalog services.Catalog, opts WriterOptions, logger *log.Logger) *PlaylistWriter {
	if opts.Description == "" {
		opts.Description = DefaultDescription
	}
	opts.Workers = max(opts.Workers, 1)
	return &PlaylistWriter{catalog: catalog, opts: opts, logger: logger}
}

// Draft builds the destination playlist for a group of a source playlist named sourceName.
func (w *PlaylistWriter) Draft(group models.GenreGroup, sourceName string) models.PlaylistDraft {
	return models.PlaylistDraft{
		Name:        models.DraftName(sourceName, group.Genre),
		Description: strings.ReplaceAll(w.opts.Description, "%s", group.Genre),
		Public:      w.opts.Public,
		URIs:        group.URIs(),
	}
}

// Write creates the destination playlist and appends the group's tracks in chunks of
// [services.MaxAddTracks], each inserted at its offset.
//
// Empty groups are skipped without a remote call. A failed chunk is logged and recorded;
// the remaining chunks still go out.
func (w *PlaylistWriter) Write(ctx context.Context, group models.GenreGroup, ownerID, sourceName string) models.GroupOutcome {
	draft := w.Draft(group, sourceName)
	outcome := models.GroupOutcome{
		Genre:        group.Genre,
		PlaylistName: draft.Name,
		TrackCount:   len(draft.URIs),
	}

	if len(draft.URIs) == 0 {
		outcome.Skipped = true
		return outcome
	}

	id, err := w.catalog.CreatePlaylist(ctx, ownerID, draft.Name, draft.Description, draft.Public)
	if err != nil {
		w.logger.Error("failed to create playlist", "name", draft.Name, "genre", group.Genre, "error", err)
		outcome.Err = err.Error()
		return outcome
	}
	draft.ID = id
	outcome.PlaylistID = id

	limiter := newPacer(w.opts.Pacing)
	chunks := slices.Collect(slices.Chunk(draft.URIs, services.MaxAddTracks))
	failures := make([]*models.ChunkFailure, len(chunks))

	var g errgroup.Group
	g.SetLimit(w.opts.Workers)

	for i, uris := range chunks {
		offset := i * services.MaxAddTracks
		onPanic := func(r any) {
			failures[i] = &models.ChunkFailure{Offset: offset, Count: len(uris), Err: fmt.Sprintf("append panicked: %v", r)}
		}
		g.Go(guard(w.logger, "add tracks", onPanic, func() error {
			err := limiter.Wait(ctx)
			if err == nil {
				_, err = w.catalog.AddTracks(ctx, draft.ID, uris, offset)
			}
			if err != nil {
				w.logger.Error("failed to add tracks",
					"playlist", draft.Name, "genre", group.Genre, "offset", offset, "count", len(uris), "error", err)
				failures[i] = &models.ChunkFailure{Offset: offset, Count: len(uris), Err: err.Error()}
			}
			return nil
		}))
	}
	_ = g.Wait()

	for _, f := range failures {
		if f != nil {
			outcome.FailedChunks = append(outcome.FailedChunks, *f)
		}
	}
	outcome.ChunksWritten = len(chunks) - len(outcome.FailedChunks)
	return outcome
}

// newPacer returns a limiter admitting one append immediately and then one per interval.
func newPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
