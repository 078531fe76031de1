// Package server exposes the split pipeline over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with "METHOD /path" patterns.
//
// # Endpoints
//
//   - POST /process-playlist : body {"playlistIds": [...]}, responds with the run's [models.ProcessReport]
//   - GET /user-playlists : the caller's playlists
//   - GET /health : liveness
//
// Every pipeline endpoint requires an "Authorization: Bearer <token>" header. The token is used as-is
// for the catalog; the server never stores or refreshes it.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
