package tasks

import (
	"fmt"

	"github.com/desertthunder/splitify/internal/models"
)

// ProgressUpdate represents a progress event during a split run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase      Phase  // Operation phase
	PlaylistID string // Source playlist the update belongs to, empty for run-level updates
	Step       int    // Current step number within phase
	Total      int    // Total steps in this phase
	Message    string // Human-readable message for display
	Data       any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveOwner Phase = iota
	FetchTracks
	ResolveGenres
	PartitionTracks
	WriteGroups
	PlaylistDone
	PlaylistFailed
	RunDone
)

func (p Phase) String() string {
	switch p {
	case ResolveOwner:
		return "resolve_owner"
	case FetchTracks:
		return "fetch_tracks"
	case ResolveGenres:
		return "resolve_genres"
	case PartitionTracks:
		return "partition_tracks"
	case WriteGroups:
		return "write_groups"
	case PlaylistDone:
		return "playlist_done"
	case PlaylistFailed:
		return "playlist_failed"
	case RunDone:
		return "run_done"
	default:
		return ""
	}
}

func resolveOwnerUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveOwner,
		Step:    0,
		Total:   total,
		Message: "Resolving current user...",
	}
}

func fetchTracksUpdate(playlistID, name string, result *FetchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:      FetchTracks,
		PlaylistID: playlistID,
		Step:       len(result.Tracks),
		Total:      result.Total,
		Message:    fmt.Sprintf("Fetched %d of %d tracks from %s", len(result.Tracks), result.Total, name),
	}
}

func resolveGenresUpdate(playlistID string, tracks, artists int) ProgressUpdate {
	return ProgressUpdate{
		Phase:      ResolveGenres,
		PlaylistID: playlistID,
		Step:       tracks,
		Total:      artists,
		Message:    fmt.Sprintf("Resolving genres for %d artists across %d tracks...", artists, tracks),
	}
}

func partitionUpdate(playlistID string, groups []models.GenreGroup) ProgressUpdate {
	return ProgressUpdate{
		Phase:      PartitionTracks,
		PlaylistID: playlistID,
		Total:      len(groups),
		Message:    fmt.Sprintf("Partitioned into %d genre groups", len(groups)),
		Data:       groups,
	}
}

func writeGroupUpdate(playlistID string, step, total int, outcome models.GroupOutcome) ProgressUpdate {
	mark := "✓"
	if s := outcome.Status(); s == models.StatusFailed || s == models.StatusPartial {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:      WriteGroups,
		PlaylistID: playlistID,
		Step:       step,
		Total:      total,
		Message:    fmt.Sprintf("[%d/%d] %s %s (%d tracks)", step, total, mark, outcome.PlaylistName, outcome.TrackCount),
		Data:       outcome,
	}
}

func playlistDoneUpdate(step, total int, report models.PlaylistReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:      PlaylistDone,
		PlaylistID: report.PlaylistID,
		Step:       step,
		Total:      total,
		Message:    fmt.Sprintf("[%d/%d] ✓ %s (%d groups)", step, total, report.Name, len(report.Groups)),
		Data:       report,
	}
}

func playlistFailedUpdate(step, total int, report models.PlaylistReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:      PlaylistFailed,
		PlaylistID: report.PlaylistID,
		Step:       step,
		Total:      total,
		Message:    fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, report.Name, report.Err),
		Data:       report,
	}
}

func runDoneUpdate(report *models.ProcessReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunDone,
		Step:    len(report.Playlists),
		Total:   len(report.Playlists),
		Message: fmt.Sprintf("Done: %d succeeded, %d failed", report.Succeeded(), report.Failed()),
		Data:    report,
	}
}
