package models

import "time"

// Status is the summarized result of writing one genre group.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ChunkFailure records an append that did not land.
type ChunkFailure struct {
	Offset int    `json:"offset"`
	Count  int    `json:"count"`
	Err    string `json:"error"`
}

// GroupOutcome is the result of writing one [GenreGroup] to a destination playlist.
type GroupOutcome struct {
	Genre         string         `json:"genre"`
	PlaylistName  string         `json:"playlist_name"`
	PlaylistID    string         `json:"playlist_id,omitempty"`
	TrackCount    int            `json:"track_count"`
	ChunksWritten int            `json:"chunks_written"`
	FailedChunks  []ChunkFailure `json:"failed_chunks,omitempty"`
	Skipped       bool           `json:"skipped,omitempty"`
	Err           string         `json:"error,omitempty"`
}

// Status derives the outcome status.
func (o GroupOutcome) Status() Status {
	switch {
	case o.Skipped:
		return StatusSkipped
	case o.Err != "" || (o.ChunksWritten == 0 && len(o.FailedChunks) > 0):
		return StatusFailed
	case len(o.FailedChunks) > 0:
		return StatusPartial
	default:
		return StatusOK
	}
}

// PlaylistReport is the result of one source playlist's pipeline.
type PlaylistReport struct {
	PlaylistID        string         `json:"playlist_id"`
	Name              string         `json:"name"`
	TrackCount        int            `json:"track_count"`
	FailedPages       []int          `json:"failed_pages,omitempty"`
	UnresolvedArtists []string       `json:"unresolved_artists,omitempty"`
	Groups            []GroupOutcome `json:"groups"`
	Err               string         `json:"error,omitempty"`
}

// OK reports whether the pipeline finished without a structural error.
func (r PlaylistReport) OK() bool {
	return r.Err == ""
}

// TracksWritten sums the tracks landed across groups.
func (r PlaylistReport) TracksWritten() int {
	var n int
	for _, g := range r.Groups {
		failed := 0
		for _, c := range g.FailedChunks {
			failed += c.Count
		}
		if g.Status() == StatusOK || g.Status() == StatusPartial {
			n += g.TrackCount - failed
		}
	}
	return n
}

// ProcessReport is the result of one orchestrator run over many playlists.
type ProcessReport struct {
	RunID      string           `json:"run_id"`
	OwnerID    string           `json:"owner_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Playlists  []PlaylistReport `json:"playlists"`
}

// Succeeded counts playlists whose pipeline completed.
func (r ProcessReport) Succeeded() int {
	var n int
	for _, p := range r.Playlists {
		if p.OK() {
			n++
		}
	}
	return n
}

// Failed counts playlists whose pipeline stopped on a structural error.
func (r ProcessReport) Failed() int {
	return len(r.Playlists) - r.Succeeded()
}

// Duration returns the wall time of the run.
func (r ProcessReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
