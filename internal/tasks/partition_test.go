package tasks

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/shared"
)

func genreMap(entries ...models.TrackGenres) *models.TrackGenreMap {
	m := models.NewTrackGenreMap()
	for _, e := range entries {
		m.Set(e.TrackID, e.Position, e.Genres)
	}
	return m
}

func entry(id string, pos int, genres ...string) models.TrackGenres {
	return models.TrackGenres{TrackID: id, Position: pos, Genres: genres}
}

func TestGenrePartitioner(t *testing.T) {
	t.Run("rarest genre wins", func(t *testing.T) {
		m := genreMap(
			entry("a", 0, "rock", "indie"),
			entry("b", 1, "rock"),
		)

		groups := GenrePartitioner{}.Partition(m)
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %+v", groups)
		}
		if groups[0].Genre != "indie" || !slices.Equal(groups[0].TrackIDs, []string{"a"}) {
			t.Errorf("expected indie:[a] first, got %+v", groups[0])
		}
		if groups[1].Genre != "rock" || !slices.Equal(groups[1].TrackIDs, []string{"b"}) || groups[1].Count != 2 {
			t.Errorf("expected rock:[b] with count 2, got %+v", groups[1])
		}
	})

	t.Run("tracks without genres are excluded", func(t *testing.T) {
		m := genreMap(
			entry("a", 0, "rock"),
			entry("b", 1),
		)

		groups := GenrePartitioner{}.Partition(m)
		if len(groups) != 1 || !slices.Equal(groups[0].TrackIDs, []string{"a"}) {
			t.Errorf("expected only a to be grouped, got %+v", groups)
		}
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		m := genreMap(
			entry("a", 0, "zouk"),
			entry("b", 1, "ambient"),
		)

		groups := GenrePartitioner{}.Partition(m)
		if len(groups) != 2 || groups[0].Genre != "zouk" || groups[1].Genre != "ambient" {
			t.Errorf("expected [zouk ambient], got %+v", groups)
		}
	})

	t.Run("groups that lose every track are not emitted", func(t *testing.T) {
		m := genreMap(
			entry("a", 0, "jazz", "bebop"),
			entry("b", 1, "jazz", "swing"),
			entry("c", 2, "pop"),
			entry("d", 3, "pop"),
			entry("e", 4, "pop"),
		)

		groups := GenrePartitioner{}.Partition(m)
		var genres []string
		for _, g := range groups {
			genres = append(genres, g.Genre)
		}
		if want := []string{"bebop", "swing", "pop"}; !slices.Equal(genres, want) {
			t.Errorf("expected %v, got %v", want, genres)
		}
	})

	t.Run("invariants", func(t *testing.T) {
		pool := []string{"rock", "indie", "jazz", "pop", "ambient", "metal"}
		var entries []models.TrackGenres
		withGenres := 0
		for i := range 200 {
			var genres []string
			for j, g := range pool {
				if (i+j)%(j+2) == 0 {
					genres = append(genres, g)
				}
			}
			if len(genres) > 0 {
				withGenres++
			}
			entries = append(entries, entry(fmt.Sprintf("t%d", i), i, genres...))
		}

		groups := GenrePartitioner{}.Partition(genreMap(entries...))

		seen := map[string]string{}
		for i, g := range groups {
			if len(g.TrackIDs) == 0 {
				t.Errorf("group %s is empty", g.Genre)
			}
			if i > 0 && groups[i-1].Count > g.Count {
				t.Errorf("groups out of order: %s(%d) before %s(%d)", groups[i-1].Genre, groups[i-1].Count, g.Genre, g.Count)
			}
			for _, id := range g.TrackIDs {
				if prev, ok := seen[id]; ok {
					t.Errorf("track %s in both %s and %s", id, prev, g.Genre)
				}
				seen[id] = g.Genre
			}
		}
		if len(seen) != withGenres {
			t.Errorf("expected %d grouped tracks, got %d", withGenres, len(seen))
		}
	})

	t.Run("empty map", func(t *testing.T) {
		if groups := (GenrePartitioner{}).Partition(models.NewTrackGenreMap()); len(groups) != 0 {
			t.Errorf("expected no groups, got %+v", groups)
		}
	})
}

func TestNewPartitioner(t *testing.T) {
	tc := []struct {
		name     string
		strategy string
		wantErr  error
	}{
		{name: "default", strategy: ""},
		{name: "genre", strategy: "Genre"},
		{name: "cluster", strategy: "cluster", wantErr: shared.ErrNotImplemented},
		{name: "unknown", strategy: "tempo", wantErr: shared.ErrInvalidConfig},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPartitioner(tt.strategy)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, ok := p.(GenrePartitioner); !ok {
				t.Errorf("expected GenrePartitioner, got %T", p)
			}
		})
	}
}
