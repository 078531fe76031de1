// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/shared"
)

// PageKey identifies one page request.
type PageKey struct {
	PlaylistID string
	Offset     int
}

// AddKey identifies one append request.
type AddKey struct {
	PlaylistID string
	Position   int
}

// CreatedPlaylist records a CreatePlaylist call.
type CreatedPlaylist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Public      bool
}

// AddCall records an AddTracks call.
type AddCall struct {
	PlaylistID string
	URIs       []string
	Position   int
}

// MockCatalog is an in-memory test double for [services.Catalog].
//
// Playlists hold source tracks by playlist ID; pages are sliced from them. Created playlists
// get the ID "new:<name>" so tests can target appends with [AddKey].
type MockCatalog struct {
	UserID    string
	UserErr   error
	Names     map[string]string
	NameErrs  map[string]error
	Playlists map[string][]models.Track
	Lengths   map[string]int // overrides len(Playlists[id])
	LengthErr map[string]error
	PageErrs  map[PageKey]error
	Genres    map[string][]string
	ArtistErr func(ids []string) error
	CreateErr map[string]error // by playlist name
	AddErrs   map[AddKey]error
	PanicOn   map[string]bool // panics in PlaylistLength for these IDs
	PanicPage map[PageKey]bool
	PanicAdd  map[AddKey]bool
	Listed    []services.Playlist
	Delay     time.Duration // applied to page and artist calls

	mu          sync.Mutex
	ArtistCalls [][]string
	PageCalls   []PageKey
	Created     []CreatedPlaylist
	Added       []AddCall
	UserCalls   int

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

// NewMockCatalog creates a mock owned by userID with no playlists.
func NewMockCatalog(userID string) *MockCatalog {
	return &MockCatalog{
		UserID:    userID,
		Names:     map[string]string{},
		NameErrs:  map[string]error{},
		Playlists: map[string][]models.Track{},
		Lengths:   map[string]int{},
		LengthErr: map[string]error{},
		PageErrs:  map[PageKey]error{},
		Genres:    map[string][]string{},
		CreateErr: map[string]error{},
		AddErrs:   map[AddKey]error{},
		PanicOn:   map[string]bool{},
		PanicPage: map[PageKey]bool{},
		PanicAdd:  map[AddKey]bool{},
	}
}

// AddPlaylist registers a source playlist. Positions are assigned when pages are served.
func (m *MockCatalog) AddPlaylist(id, name string, tracks ...models.Track) {
	m.Names[id] = name
	m.Playlists[id] = tracks
}

// MaxInFlight returns the highest number of page or artist calls observed running at once.
func (m *MockCatalog) MaxInFlight() int {
	return int(m.maxInFlight.Load())
}

func (m *MockCatalog) enter(ctx context.Context) error {
	n := m.inFlight.Add(1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if m.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.Delay):
		return nil
	}
}

func (m *MockCatalog) leave() {
	m.inFlight.Add(-1)
}

func (m *MockCatalog) CurrentUserID(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.UserCalls++
	m.mu.Unlock()
	if m.UserErr != nil {
		return "", m.UserErr
	}
	return m.UserID, nil
}

func (m *MockCatalog) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	if err := m.NameErrs[playlistID]; err != nil {
		return "", err
	}
	name, ok := m.Names[playlistID]
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return name, nil
}

func (m *MockCatalog) PlaylistLength(ctx context.Context, playlistID string) (int, error) {
	if m.PanicOn[playlistID] {
		panic("mock catalog panic for " + playlistID)
	}
	if err := m.LengthErr[playlistID]; err != nil {
		return 0, err
	}
	if n, ok := m.Lengths[playlistID]; ok {
		return n, nil
	}
	tracks, ok := m.Playlists[playlistID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return len(tracks), nil
}

func (m *MockCatalog) PlaylistPage(ctx context.Context, playlistID string, offset, limit int) ([]models.Track, error) {
	if err := m.enter(ctx); err != nil {
		m.leave()
		return nil, err
	}
	defer m.leave()

	key := PageKey{PlaylistID: playlistID, Offset: offset}
	m.mu.Lock()
	m.PageCalls = append(m.PageCalls, key)
	m.mu.Unlock()

	if m.PanicPage[key] {
		panic(fmt.Sprintf("mock catalog page panic for %s at %d", playlistID, offset))
	}
	if err := m.PageErrs[key]; err != nil {
		return nil, err
	}

	all := m.Playlists[playlistID]
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))

	page := make([]models.Track, 0, end-offset)
	for i, t := range all[offset:end] {
		if t.ID == "" {
			continue
		}
		t.PlaylistID = playlistID
		t.Position = offset + i
		t.ArtistIDs = slices.Clone(t.ArtistIDs)
		page = append(page, t)
	}
	return page, nil
}

func (m *MockCatalog) ArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error) {
	if len(artistIDs) > services.MaxArtistBatch {
		return nil, fmt.Errorf("%w: %d artist IDs", shared.ErrInvalidArgument, len(artistIDs))
	}
	if err := m.enter(ctx); err != nil {
		m.leave()
		return nil, err
	}
	defer m.leave()

	m.mu.Lock()
	m.ArtistCalls = append(m.ArtistCalls, slices.Clone(artistIDs))
	m.mu.Unlock()

	if m.ArtistErr != nil {
		if err := m.ArtistErr(artistIDs); err != nil {
			return nil, err
		}
	}

	out := make(map[string][]string, len(artistIDs))
	for _, id := range artistIDs {
		if genres, ok := m.Genres[id]; ok {
			out[id] = slices.Clone(genres)
		}
	}
	return out, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (string, error) {
	if err := m.CreateErr[name]; err != nil {
		return "", err
	}
	id := "new:" + name

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, CreatedPlaylist{ID: id, OwnerID: ownerID, Name: name, Description: description, Public: public})
	return id, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, uris []string, position int) (string, error) {
	if len(uris) > services.MaxAddTracks {
		return "", fmt.Errorf("%w: %d uris", shared.ErrInvalidArgument, len(uris))
	}
	if m.PanicAdd[AddKey{PlaylistID: playlistID, Position: position}] {
		panic(fmt.Sprintf("mock catalog append panic for %s at %d", playlistID, position))
	}
	if err := m.AddErrs[AddKey{PlaylistID: playlistID, Position: position}]; err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added = append(m.Added, AddCall{PlaylistID: playlistID, URIs: slices.Clone(uris), Position: position})
	return fmt.Sprintf("snap-%d", len(m.Added)), nil
}

func (m *MockCatalog) UserPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	return slices.Clone(m.Listed), nil
}

// AddsFor returns the recorded appends for a playlist, in call order.
func (m *MockCatalog) AddsFor(playlistID string) []AddCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []AddCall
	for _, a := range m.Added {
		if a.PlaylistID == playlistID {
			out = append(out, a)
		}
	}
	return out
}

// Track builds a source track for [MockCatalog.AddPlaylist].
func Track(id string, artistIDs ...string) models.Track {
	return models.Track{ID: id, ArtistIDs: artistIDs}
}

var _ services.Catalog = (*MockCatalog)(nil)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
