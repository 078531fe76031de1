// package models defines the data model for the playlist splitting pipeline
package models

import "fmt"

// Track is a single entry of a source playlist.
type Track struct {
	ID         string   `json:"id"`
	PlaylistID string   `json:"playlist_id"`
	Position   int      `json:"position"` // absolute index in the source playlist
	ArtistIDs  []string `json:"artist_ids"`
}

// URI returns the catalog URI used when adding the track to a playlist.
func (t Track) URI() string {
	return TrackURI(t.ID)
}

// TrackURI formats a track ID as a catalog URI.
func TrackURI(id string) string {
	return fmt.Sprintf("spotify:track:%s", id)
}

// Artist is a catalog artist with its genre tags, which may be empty.
type Artist struct {
	ID     string   `json:"id"`
	Genres []string `json:"genres"`
}

// GenreGroup is one output bucket of the partitioner.
//
// Count is the number of tracks bearing the genre before assignment; TrackIDs holds
// only the tracks actually assigned to this group, in source order.
type GenreGroup struct {
	Genre    string   `json:"genre"`
	Count    int      `json:"count"`
	TrackIDs []string `json:"track_ids"`
}

// URIs returns the catalog URIs of the group's tracks in order.
func (g GenreGroup) URIs() []string {
	uris := make([]string, len(g.TrackIDs))
	for i, id := range g.TrackIDs {
		uris[i] = TrackURI(id)
	}
	return uris
}

// PlaylistDraft describes a destination playlist. ID is empty until the playlist is created.
type PlaylistDraft struct {
	ID          string
	Name        string
	Description string
	Public      bool
	URIs        []string
}

// DraftName builds the destination playlist name for a source playlist and genre.
func DraftName(source, genre string) string {
	return fmt.Sprintf("%s - %s", source, genre)
}
