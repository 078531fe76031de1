package tasks

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/shared"
)

const (
	StrategyGenre   = "genre"
	StrategyCluster = "cluster"
)

// Partitioner turns a track genre map into disjoint genre groups.
type Partitioner interface {
	Partition(m *models.TrackGenreMap) []models.GenreGroup
}

// NewPartitioner selects a partitioning strategy by name. An empty name selects [StrategyGenre].
func NewPartitioner(strategy string) (Partitioner, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyGenre:
		return GenrePartitioner{}, nil
	case StrategyCluster:
		return nil, fmt.Errorf("%w: %s partitioning", shared.ErrNotImplemented, StrategyCluster)
	default:
		return nil, fmt.Errorf("%w: unknown split strategy %q", shared.ErrInvalidConfig, strategy)
	}
}

// GenrePartitioner assigns every track to its rarest genre.
//
// Genres are visited in ascending order of how many tracks carry them, ties broken by
// first appearance in playlist order. Each visit claims the tracks bearing the genre that
// no earlier group has claimed. Tracks without genres belong to no group.
type GenrePartitioner struct{}

func (GenrePartitioner) Partition(m *models.TrackGenreMap) []models.GenreGroup {
	entries := m.Entries()

	counts := make(map[string]int)
	holders := make(map[string][]int)
	var order []string

	for i, e := range entries {
		for _, g := range e.Genres {
			if _, ok := counts[g]; !ok {
				order = append(order, g)
			}
			counts[g]++
			holders[g] = append(holders[g], i)
		}
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[a], counts[b])
	})

	used := make([]bool, len(entries))
	groups := make([]models.GenreGroup, 0, len(order))

	for _, genre := range order {
		var ids []string
		for _, i := range holders[genre] {
			if used[i] {
				continue
			}
			used[i] = true
			ids = append(ids, entries[i].TrackID)
		}
		if len(ids) == 0 {
			continue
		}
		groups = append(groups, models.GenreGroup{Genre: genre, Count: counts[genre], TrackIDs: ids})
	}
	return groups
}
