package tasks

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"golang.org/x/sync/errgroup"
)

// ResolveResult is the genre assignment for a set of tracks.
type ResolveResult struct {
	Genres     *models.TrackGenreMap
	Artists    int      // distinct artists seen
	Unresolved []string // artists whose lookup failed, in first-seen order
}

// GenreResolver assigns each track the union of its artists' genres.
type GenreResolver struct {
	catalog services.Catalog
	workers int
	logger  *log.Logger
}

// NewGenreResolver creates a resolver that keeps at most workers lookups in flight.
func NewGenreResolver(catalog services.Catalog, workers int, logger *log.Logger) *GenreResolver {
	return &GenreResolver{catalog: catalog, workers: max(workers, 1), logger: logger}
}

// Resolve looks up every distinct artist once, in batches of [services.MaxArtistBatch],
// then builds the track genre map from the run's cache.
//
// Assembly starts only after every lookup has finished. A failed batch is logged and its
// artists contribute no genres.
func (r *GenreResolver) Resolve(ctx context.Context, tracks []models.Track) (*ResolveResult, error) {
	cache := models.NewArtistCache()
	artists := distinctArtists(tracks)

	var g errgroup.Group
	g.SetLimit(r.workers)

	for batch := range slices.Chunk(artists, services.MaxArtistBatch) {
		g.Go(guard(r.logger, "resolve artists", func(any) {}, func() error {
			genres, err := r.catalog.ArtistGenres(ctx, batch)
			if err != nil {
				r.logger.Warn("failed to resolve artist batch", "size", len(batch), "first", batch[0], "error", err)
				return nil
			}
			for _, id := range batch {
				cache.Put(id, genres[id])
			}
			return nil
		}))
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ResolveResult{Genres: models.NewTrackGenreMap(), Artists: len(artists)}
	for _, id := range artists {
		if !cache.Has(id) {
			result.Unresolved = append(result.Unresolved, id)
		}
	}

	var ag errgroup.Group
	ag.SetLimit(r.workers)

	for chunk := range slices.Chunk(tracks, services.PageSize) {
		ag.Go(guard(r.logger, "assemble genres", func(any) {}, func() error {
			for _, t := range chunk {
				var genres []string
				for _, a := range t.ArtistIDs {
					g, _ := cache.Genres(a)
					genres = append(genres, g...)
				}
				result.Genres.Set(t.ID, t.Position, genres)
			}
			return nil
		}))
	}
	_ = ag.Wait()

	return result, nil
}

func distinctArtists(tracks []models.Track) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range tracks {
		for _, a := range t.ArtistIDs {
			if _, ok := seen[a]; ok || a == "" {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
