// Package models defines the value types that flow through the splitify pipeline.
//
// The package contains three categories of types:
//
// 1. Catalog entities: lightweight structs read from the music catalog
//   - [Track] : a playlist entry with its absolute position and artist IDs
//   - [Artist] : an artist and its genre tags
//
// 2. Pipeline state: per-run, mutex-guarded collections
//   - [ArtistCache] : artist to genres lookups made during one playlist run
//   - [TrackGenreMap] : track to genre-set assignment produced by resolution
//   - [GenreGroup] : a genre bucket emitted by partitioning
//   - [PlaylistDraft] : a destination playlist before and after creation
//
// 3. Reports: structured outcomes returned to callers
//   - [ChunkFailure], [GroupOutcome], [PlaylistReport], [ProcessReport]
//
// Pipeline state is never shared between runs.
package models
