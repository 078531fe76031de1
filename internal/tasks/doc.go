// Package tasks splits playlists into per-genre playlists with real-time progress reporting.
//
// # Pipeline
//
// [SplitEngine.Process] resolves the credential's owner once and then runs one pipeline per
// source playlist on a bounded worker pool. Each pipeline has four stages:
//
//  1. [TrackFetcher] : reads the playlist length, then every page of 100 tracks concurrently
//     - pages are reassembled by offset, never by completion order
//     - a failed page is logged and recorded, the rest of the playlist continues
//
//  2. [GenreResolver] : looks up each distinct artist once, 50 per request
//     - lookups write into a per-run [models.ArtistCache]
//     - track genres are assembled only after every lookup has finished
//
//  3. [Partitioner] : assigns every track with genres to exactly one group
//     - [GenrePartitioner] favours the rarest genre a track carries
//
//  4. [PlaylistWriter] : creates "<source> - <genre>" and appends tracks in chunks of 100
//     - appends are paced by a [rate.Limiter]
//     - failed chunks are recorded in the group's outcome
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Failure Isolation
//
// Failures are captured in [models.PlaylistReport] and [models.GroupOutcome] values rather than
// aborting the run. Only an unresolvable owner fails every playlist at once.
package tasks
