// package services defines the [Catalog] boundary used by the splitting pipeline
package services

import (
	"context"

	"github.com/desertthunder/splitify/internal/models"
)

const (
	PageSize       = 100 // tracks per playlist page
	MaxArtistBatch = 50  // artist IDs per lookup
	MaxAddTracks   = 100 // URIs per append
)

// Catalog is the remote music catalog. Every pipeline stage talks to the catalog only
// through this interface, so implementations must be safe for concurrent use.
type Catalog interface {
	// CurrentUserID returns the ID of the user owning the credential.
	CurrentUserID(ctx context.Context) (string, error)

	// PlaylistName returns the display name of a playlist.
	PlaylistName(ctx context.Context, playlistID string) (string, error)

	// PlaylistLength returns the total number of entries in a playlist.
	PlaylistLength(ctx context.Context, playlistID string) (int, error)

	// PlaylistPage returns up to limit tracks starting at offset.
	// Entries without a track ID are dropped; positions stay absolute.
	PlaylistPage(ctx context.Context, playlistID string, offset, limit int) ([]models.Track, error)

	// ArtistGenres looks up at most [MaxArtistBatch] artists. Unknown artists are absent from the result.
	ArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error)

	// CreatePlaylist creates a playlist owned by ownerID and returns its ID.
	CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (string, error)

	// AddTracks inserts at most [MaxAddTracks] URIs at position and returns the snapshot ID.
	AddTracks(ctx context.Context, playlistID string, uris []string, position int) (string, error)

	// UserPlaylists lists every playlist of the current user.
	UserPlaylists(ctx context.Context) ([]Playlist, error)
}

// Playlist is playlist metadata as listed for the current user.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}
