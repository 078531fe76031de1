package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/shared"
	"github.com/desertthunder/splitify/internal/tasks"
	tu "github.com/desertthunder/splitify/internal/testing"
)

func newTestModel(t *testing.T, ids ...string) (*Model, *tu.MockCatalog) {
	t.Helper()

	catalog := tu.NewMockCatalog("owner")
	catalog.Genres["a1"] = []string{"rock"}
	catalog.Genres["a2"] = []string{"jazz"}
	catalog.AddPlaylist("p1", "Mixed", tu.Track("t1", "a1"), tu.Track("t2", "a2"))
	catalog.AddPlaylist("p2", "Rock", tu.Track("t3", "a1"))
	catalog.Listed = []services.Playlist{
		{ID: "p1", Name: "Mixed", TrackCount: 2},
		{ID: "p2", Name: "Rock", TrackCount: 1},
	}

	opts := tasks.Options{PlaylistWorkers: 2, PageWorkers: 1, GenreWorkers: 1, ChunkWorkers: 1}
	engine, err := tasks.NewSplitEngine(catalog, opts, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	m := NewModel(context.Background(), catalog, engine, ids)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, catalog
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain feeds progress messages into the model until the run completes.
func drain(t *testing.T, m *Model) {
	t.Helper()
	for range 1000 {
		msg := waitForProgress(m.progressChan, m.doneChan)()
		m.Update(msg)
		if m.view == ResultView {
			return
		}
	}
	t.Fatal("split never completed")
}

func TestModel(t *testing.T) {
	t.Run("fetches playlists on init", func(t *testing.T) {
		m, _ := newTestModel(t)

		cmd := m.Init()
		if cmd == nil {
			t.Fatal("expected fetch command")
		}
		m.Update(cmd())

		if len(m.playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(m.playlists))
		}
		if !strings.Contains(m.View(), "Your Playlists") {
			t.Errorf("expected playlist list view, got %q", m.View())
		}
	})

	t.Run("fetch error", func(t *testing.T) {
		m, catalog := newTestModel(t)
		catalog.UserErr = errors.New("token expired")

		m.Update(m.Init()())
		if !strings.Contains(m.View(), "token expired") {
			t.Errorf("expected error view, got %q", m.View())
		}
	})

	t.Run("selection and confirm", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.Update(m.Init()())

		m.Update(runes("x"))
		if ids := m.selectedIDs(); len(ids) != 1 || ids[0] != "p1" {
			t.Fatalf("expected p1 selected, got %v", ids)
		}

		m.Update(runes("x"))
		if ids := m.selectedIDs(); len(ids) != 0 {
			t.Fatalf("expected toggle off, got %v", ids)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Mixed") {
			t.Errorf("expected selected playlist in confirm view, got %q", m.View())
		}

		m.Update(runes("n"))
		if m.view != PlaylistListView {
			t.Errorf("expected list view after declining, got %v", m.view)
		}
	})

	t.Run("split from selection", func(t *testing.T) {
		m, catalog := newTestModel(t)
		m.Update(m.Init()())

		m.Update(runes("x"))
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.Update(runes("y"))
		if m.view != SplitView {
			t.Fatalf("expected split view, got %v", m.view)
		}

		drain(t, m)

		report, err := m.Report()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Playlists) != 1 || report.Playlists[0].PlaylistID != "p1" {
			t.Fatalf("unexpected report %+v", report.Playlists)
		}
		if len(catalog.Created) != 2 {
			t.Errorf("expected 2 genre playlists, got %d", len(catalog.Created))
		}
		if view := m.View(); !strings.Contains(view, "Split Complete") || !strings.Contains(view, "Mixed - rock") {
			t.Errorf("unexpected result view %q", view)
		}

		m.Update(runes("r"))
		if m.view != PlaylistListView || len(m.selectedIDs()) != 0 {
			t.Errorf("expected reset to list view, got %v with %v", m.view, m.selectedIDs())
		}
	})

	t.Run("split from ids", func(t *testing.T) {
		m, _ := newTestModel(t, "p1", "p2")

		m.Init()
		if m.view != SplitView {
			t.Fatalf("expected split view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Splitting 2 playlist(s)") {
			t.Errorf("unexpected split view %q", m.View())
		}

		drain(t, m)

		if m.completed != 2 {
			t.Errorf("expected 2 completed playlists, got %d", m.completed)
		}
		if m.names["p2"] != "Rock" {
			t.Errorf("expected name from report, got %q", m.names["p2"])
		}

		m.Update(runes("r"))
		if m.view != ResultView {
			t.Errorf("restart needs a playlist list, got %v", m.view)
		}
	})

	t.Run("failed run", func(t *testing.T) {
		m, catalog := newTestModel(t, "p1")
		catalog.UserErr = errors.New("unauthorized")

		m.Init()
		drain(t, m)

		if _, err := m.Report(); !errors.Is(err, shared.ErrUserUnresolved) {
			t.Errorf("expected ErrUserUnresolved, got %v", err)
		}
		if !strings.Contains(m.View(), "Split failed") {
			t.Errorf("expected failure view, got %q", m.View())
		}
	})

	t.Run("quit cancels", func(t *testing.T) {
		m, _ := newTestModel(t)

		_, cmd := m.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if m.ctx.Err() == nil {
			t.Error("expected context to be cancelled")
		}
	})
}
