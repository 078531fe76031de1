package models

import (
	"cmp"
	"slices"
	"sync"
)

// TrackGenres is one entry of a [TrackGenreMap].
type TrackGenres struct {
	TrackID  string
	Position int
	Genres   []string // sorted, deduplicated
}

// TrackGenreMap assigns each track a set of genres. Safe for concurrent writers.
type TrackGenreMap struct {
	mu      sync.Mutex
	entries map[string]*TrackGenres
}

// NewTrackGenreMap creates an empty map.
func NewTrackGenreMap() *TrackGenreMap {
	return &TrackGenreMap{entries: make(map[string]*TrackGenres)}
}

// Set records genres for a track. Setting the same track twice merges the genre sets
// and keeps the lowest position.
func (m *TrackGenreMap) Set(trackID string, position int, genres []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[trackID]; ok {
		e.Genres = normalizeGenres(append(e.Genres, genres...))
		e.Position = min(e.Position, position)
		return
	}
	m.entries[trackID] = &TrackGenres{TrackID: trackID, Position: position, Genres: normalizeGenres(genres)}
}

// Genres returns the genre set for a track.
func (m *TrackGenreMap) Genres(trackID string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[trackID]
	if !ok {
		return nil, false
	}
	return slices.Clone(e.Genres), true
}

// Len returns the number of tracks in the map.
func (m *TrackGenreMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Entries returns a snapshot ordered by position, then track ID.
func (m *TrackGenreMap) Entries() []TrackGenres {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]TrackGenres, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, TrackGenres{TrackID: e.TrackID, Position: e.Position, Genres: slices.Clone(e.Genres)})
	}
	slices.SortFunc(out, func(a, b TrackGenres) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.TrackID, b.TrackID)
	})
	return out
}

func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g != "" {
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
