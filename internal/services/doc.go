// Package services defines the [Catalog] interface and implements it for the Spotify Web API.
//
// # Catalog Interface
//
// The splitting pipeline reads playlists and artists and writes new playlists only through
// [Catalog], so tests substitute an in-memory implementation.
//
// # Spotify Implementation
//
// [SpotifyService] sends an already-issued bearer token through an [oauth2.Transport]
// backed by a static token source. Acquiring and refreshing tokens is left to the caller.
//
// Requests answered with 429 are retried after the Retry-After delay, or an exponential
// backoff when the header is absent, up to the configured retry cap.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : credential rejected (401)
//   - [shared.ErrPlaylistNotFound] : playlist ID not found (404)
//   - [shared.ErrRateLimitExhausted] : 429 persisted past the retry cap
//   - [shared.ErrServiceUnavailable] : 503 from the API
//   - [shared.ErrAPIRequest] : any other failed request
//   - [shared.ErrInvalidResponse] : response body failed decoding or validation
//
// # API Mappings
//
// Responses are decoded into typed DTOs and validated with validator tags before being
// converted to [models.Track] or plain values.
package services
