// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/shared"
	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"
)

const (
	spotifyBaseURL   = "https://api.spotify.com/v1"
	playlistsLimit   = 50
	maxBackoff       = 30 * time.Second
	pageFields       = "items(track(id,artists(id)))"
	defaultTimeout   = 30 * time.Second
	defaultBackoff   = time.Second
	defaultRetries   = 5
	spotifyTrackURI  = "spotify:track:"
	maxErrorBodySize = 4096
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id" validate:"required"`
	DisplayName string `json:"display_name"`
}

type spotifyPlaylistName struct {
	Name string `json:"name"`
}

type spotifyPlaylistTotal struct {
	Total *int `json:"total" validate:"required,gte=0"`
}

// SpotifyArtistRef is the artist stub embedded in a track.
type SpotifyArtistRef struct {
	ID string `json:"id"`
}

// SpotifyTrackRef is the trimmed track returned with fields=items(track(id,artists(id))).
// ID is empty for local files.
type SpotifyTrackRef struct {
	ID      string             `json:"id"`
	Artists []SpotifyArtistRef `json:"artists"`
}

// SpotifyPlaylistItem is one entry of a playlist page. Track is nil for removed tracks.
type SpotifyPlaylistItem struct {
	Track *SpotifyTrackRef `json:"track"`
}

type spotifyPlaylistPage struct {
	Items []SpotifyPlaylistItem `json:"items"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id" validate:"required"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type spotifyArtists struct {
	Artists []*SpotifyArtist `json:"artists"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type createPlaylistResponse struct {
	ID string `json:"id" validate:"required"`
}

type addTracksRequest struct {
	URIs     []string `json:"uris"`
	Position int      `json:"position"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id" validate:"required"`
}

// Owner is the owner stub of a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id" validate:"required"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items" validate:"dive"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements [Catalog] for the Spotify Web API.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	validate   *validator.Validate
	logger     *log.Logger
}

// NewSpotifyService creates a Spotify catalog client that authenticates every request with accessToken.
func NewSpotifyService(accessToken string, config shared.CatalogConfig, logger *log.Logger) (*SpotifyService, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("%w: spotify access token", shared.ErrMissingCredentials)
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	timeout := config.RequestTimeout.Duration
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	backoff := config.RetryBackoff.Duration
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	retries := config.MaxRetries
	if retries < 0 {
		retries = defaultRetries
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	client := &http.Client{
		Timeout:   timeout,
		Transport: &oauth2.Transport{Source: src, Base: http.DefaultTransport},
	}

	return &SpotifyService{
		baseURL:    baseURL,
		httpClient: client,
		maxRetries: retries,
		backoff:    backoff,
		validate:   validator.New(),
		logger:     logger,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated HTTP request to the Spotify API, retrying rate-limited
// responses, and decodes and validates the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = data
	}

	for attempt := 0; ; attempt++ {
		resp, err := s.send(ctx, method, endpoint, payload)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp.Header.Get("Retry-After"), s.backoffFor(attempt))
			drain(resp)

			if attempt >= s.maxRetries {
				return fmt.Errorf("%w: %s %s after %d retries", shared.ErrRateLimitExhausted, method, endpoint, attempt)
			}

			s.logger.Warn("rate limited", "method", method, "endpoint", endpoint, "attempt", attempt+1, "wait", wait)
			if err := sleepContext(ctx, wait); err != nil {
				return err
			}
			continue
		}

		return s.handleResponse(resp, method, endpoint, result)
	}
}

func (s *SpotifyService) send(ctx context.Context, method, endpoint string, payload []byte) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, endpoint, err)
	}
	return resp, nil
}

func (s *SpotifyService) handleResponse(resp *http.Response, method, endpoint string, result any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp, method, endpoint)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decode %s: %v", shared.ErrInvalidResponse, endpoint, err)
	}

	if err := s.validate.Struct(result); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrInvalidResponse, endpoint, err)
	}
	return nil
}

func (s *SpotifyService) backoffFor(attempt int) time.Duration {
	d := s.backoff << attempt
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func statusError(resp *http.Response, method, endpoint string) error {
	msg := http.StatusText(resp.StatusCode)
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	var body spotifyErrorBody
	if json.Unmarshal(data, &body) == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = shared.ErrNotAuthenticated
	case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(endpoint, "/playlists/"):
		sentinel = shared.ErrPlaylistNotFound
	case resp.StatusCode == http.StatusServiceUnavailable:
		sentinel = shared.ErrServiceUnavailable
	default:
		sentinel = shared.ErrAPIRequest
	}
	return fmt.Errorf("%w: %s %s: status %d: %s", sentinel, method, endpoint, resp.StatusCode, msg)
}

// retryAfter parses a Retry-After header given either as seconds or as an HTTP date.
func retryAfter(header string, fallback time.Duration) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return fallback
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
	resp.Body.Close()
}

// CurrentUserID retrieves the ID of the authenticated user.
func (s *SpotifyService) CurrentUserID(ctx context.Context) (string, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// PlaylistName retrieves the display name of a playlist.
func (s *SpotifyService) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	if playlistID == "" {
		return "", fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s?fields=name", url.PathEscape(playlistID))

	var response spotifyPlaylistName
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return "", err
	}
	return response.Name, nil
}

// PlaylistLength retrieves the number of entries in a playlist.
func (s *SpotifyService) PlaylistLength(ctx context.Context, playlistID string) (int, error) {
	if playlistID == "" {
		return 0, fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?fields=total", url.PathEscape(playlistID))

	var response spotifyPlaylistTotal
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return 0, err
	}
	return *response.Total, nil
}

// PlaylistPage retrieves one page of a playlist's tracks.
func (s *SpotifyService) PlaylistPage(ctx context.Context, playlistID string, offset, limit int) ([]models.Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", shared.ErrInvalidArgument, offset)
	}
	if limit <= 0 || limit > PageSize {
		limit = PageSize
	}

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("fields", pageFields)
	endpoint := fmt.Sprintf("/playlists/%s/tracks?%s", url.PathEscape(playlistID), query.Encode())

	var response spotifyPlaylistPage
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Items))
	for i, item := range response.Items {
		if item.Track == nil || item.Track.ID == "" {
			continue
		}

		artistIDs := make([]string, 0, len(item.Track.Artists))
		for _, a := range item.Track.Artists {
			if a.ID != "" {
				artistIDs = append(artistIDs, a.ID)
			}
		}

		tracks = append(tracks, models.Track{
			ID:         item.Track.ID,
			PlaylistID: playlistID,
			Position:   offset + i,
			ArtistIDs:  artistIDs,
		})
	}
	return tracks, nil
}

// ArtistGenres retrieves the genres of up to [MaxArtistBatch] artists.
func (s *SpotifyService) ArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error) {
	if len(artistIDs) == 0 {
		return map[string][]string{}, nil
	}
	if len(artistIDs) > MaxArtistBatch {
		return nil, fmt.Errorf("%w: maximum %d artist IDs allowed, got %d", shared.ErrInvalidArgument, MaxArtistBatch, len(artistIDs))
	}

	query := url.Values{}
	query.Set("ids", strings.Join(artistIDs, ","))
	endpoint := "/artists?" + query.Encode()

	var response spotifyArtists
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	genres := make(map[string][]string, len(response.Artists))
	for _, a := range response.Artists {
		if a == nil {
			continue
		}
		if err := s.validate.Struct(a); err != nil {
			return nil, fmt.Errorf("%w: artist: %v", shared.ErrInvalidResponse, err)
		}
		if a.Genres == nil {
			a.Genres = []string{}
		}
		genres[a.ID] = a.Genres
	}
	return genres, nil
}

// CreatePlaylist creates a playlist for ownerID and returns the new playlist's ID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("%w: owner ID", shared.ErrMissingArgument)
	}
	if name == "" {
		return "", fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(ownerID))
	body := createPlaylistRequest{Name: name, Description: description, Public: public}

	var response createPlaylistResponse
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &response); err != nil {
		return "", err
	}
	return response.ID, nil
}

// AddTracks inserts up to [MaxAddTracks] track URIs into a playlist at position.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string, position int) (string, error) {
	if playlistID == "" {
		return "", fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}
	if len(uris) == 0 {
		return "", fmt.Errorf("%w: no track URIs provided", shared.ErrMissingArgument)
	}
	if len(uris) > MaxAddTracks {
		return "", fmt.Errorf("%w: maximum %d track URIs allowed, got %d", shared.ErrInvalidArgument, MaxAddTracks, len(uris))
	}
	for _, uri := range uris {
		if !strings.HasPrefix(uri, spotifyTrackURI) {
			return "", fmt.Errorf("%w: not a track URI: %q", shared.ErrInvalidArgument, uri)
		}
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := addTracksRequest{URIs: uris, Position: position}

	var response snapshotResponse
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &response); err != nil {
		return "", err
	}
	return response.SnapshotID, nil
}

// UserPlaylists retrieves every playlist of the current user, following pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context) ([]Playlist, error) {
	var all []Playlist
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", playlistsLimit, offset)

		var response SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			all = append(all, Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				Owner:       sp.Owner.ID,
				TrackCount:  sp.Tracks.Total,
				Public:      sp.Public,
			})
		}

		if response.Next == nil || len(response.Items) == 0 {
			break
		}
		offset += playlistsLimit
	}

	return all, nil
}

var _ Catalog = (*SpotifyService)(nil)
