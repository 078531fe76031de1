package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/shared"
	"github.com/desertthunder/splitify/internal/tasks"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// CatalogFactory builds a catalog client for a caller's bearer token.
type CatalogFactory func(accessToken string) (services.Catalog, error)

type processRequest struct {
	PlaylistIDs []string `json:"playlistIds" validate:"required,min=1,max=100,dive,required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ProcessHandler runs a split for the playlists named in the request body.
type ProcessHandler struct {
	catalogs CatalogFactory
	opts     tasks.Options
	validate *validator.Validate
	logger   *log.Logger
}

// NewProcessHandler creates a [ProcessHandler].
func NewProcessHandler(catalogs CatalogFactory, opts tasks.Options, logger *log.Logger) *ProcessHandler {
	return &ProcessHandler{catalogs: catalogs, opts: opts, validate: validator.New(), logger: logger}
}

func (h *ProcessHandler) Routes() []string {
	return []string{"POST /process-playlist"}
}

// ServeHTTP expects {"playlistIds": [...]} and an Authorization bearer token, and responds with the run's report.
func (h *ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req processRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "playlistIds must list between 1 and 100 non-empty IDs")
		return
	}

	catalog, err := h.catalogs(token)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	engine, err := tasks.NewSplitEngine(catalog, h.opts, h.logger)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	report, err := engine.Process(r.Context(), req.PlaylistIDs, nil)
	if err != nil {
		h.logger.Error("split failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// PlaylistsHandler lists the caller's playlists.
type PlaylistsHandler struct {
	catalogs CatalogFactory
	logger   *log.Logger
}

// NewPlaylistsHandler creates a [PlaylistsHandler].
func NewPlaylistsHandler(catalogs CatalogFactory, logger *log.Logger) *PlaylistsHandler {
	return &PlaylistsHandler{catalogs: catalogs, logger: logger}
}

func (h *PlaylistsHandler) Routes() []string {
	return []string{"GET /user-playlists"}
}

func (h *PlaylistsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	catalog, err := h.catalogs(token)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	playlists, err := catalog.UserPlaylists(r.Context())
	if err != nil {
		h.logger.Error("failed to list playlists", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	if playlists == nil {
		playlists = []services.Playlist{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// statusFor maps pipeline and catalog errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrRateLimitExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrNotImplemented), errors.Is(err, shared.ErrInvalidConfig):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := shared.MarshalJSON(body, false)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
