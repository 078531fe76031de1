package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/shared"
	"golang.org/x/sync/errgroup"
)

// FetchResult holds every track read from a source playlist.
type FetchResult struct {
	PlaylistID  string
	Total       int            // length reported by the catalog
	Tracks      []models.Track // ordered by position
	FailedPages []int          // offsets of pages that could not be read
}

// TrackFetcher reads a whole playlist by fetching its pages concurrently.
type TrackFetcher struct {
	catalog services.Catalog
	workers int
	logger  *log.Logger
}

// NewTrackFetcher creates a fetcher that keeps at most workers page requests in flight.
func NewTrackFetcher(catalog services.Catalog, workers int, logger *log.Logger) *TrackFetcher {
	return &TrackFetcher{catalog: catalog, workers: max(workers, 1), logger: logger}
}

// FetchAll reads the playlist length, then every page at offsets 0, 100, 200 and so on.
//
// A page that fails is logged and skipped; its offset is recorded in [FetchResult.FailedPages].
// Failing to read the length is fatal for the playlist and wraps [shared.ErrPlaylistLength].
func (f *TrackFetcher) FetchAll(ctx context.Context, playlistID string) (*FetchResult, error) {
	total, err := f.catalog.PlaylistLength(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrPlaylistLength, playlistID, err)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: %s: negative length %d", shared.ErrPlaylistLength, playlistID, total)
	}

	pageCount := (total + services.PageSize - 1) / services.PageSize
	pages := make([][]models.Track, pageCount)
	failed := make([]bool, pageCount)

	var g errgroup.Group
	g.SetLimit(f.workers)

	for i := range pageCount {
		offset := i * services.PageSize
		g.Go(guard(f.logger, "fetch page", func(any) { failed[i] = true }, func() error {
			tracks, err := f.catalog.PlaylistPage(ctx, playlistID, offset, services.PageSize)
			if err != nil {
				f.logger.Warn("failed to fetch page", "playlist", playlistID, "offset", offset, "error", err)
				failed[i] = true
				return nil
			}
			if len(tracks) == 0 {
				f.logger.Debug("empty page", "playlist", playlistID, "offset", offset)
			}
			pages[i] = tracks
			return nil
		}))
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &FetchResult{PlaylistID: playlistID, Total: total, Tracks: make([]models.Track, 0, total)}
	for i, page := range pages {
		if failed[i] {
			result.FailedPages = append(result.FailedPages, i*services.PageSize)
			continue
		}
		result.Tracks = append(result.Tracks, page...)
	}
	return result, nil
}
