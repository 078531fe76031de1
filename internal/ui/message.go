package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgProgressUpdate
	MsgSplitComplete
)

type playlistsFetched struct {
	playlists []services.Playlist
	err       error
}

type splitComplete struct {
	report *models.ProcessReport
	err    error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []services.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsFetched{playlists, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// splitCompleteMsg is the constructor for [MsgSplitComplete]
func splitCompleteMsg(report *models.ProcessReport, err error) Msg {
	return Msg{kind: MsgSplitComplete, data: splitComplete{report, err}}
}
