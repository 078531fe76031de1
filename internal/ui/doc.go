// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for splitting playlists by genre:
//  1. [PlaylistListView] : Browse the user's playlists and toggle the ones to split
//  2. [ConfirmView] : Confirm the split
//  3. [SplitView] : Monitor real-time progress updates with a spinner and progress bar
//  4. [ResultView] : Display per-playlist outcomes and written genre playlists
//
// When playlist IDs are passed up front the model starts directly in [SplitView].
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.Splitter], providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
