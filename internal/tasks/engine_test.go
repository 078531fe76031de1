package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/shared"
	tu "github.com/desertthunder/splitify/internal/testing"
)

func testOptions() Options {
	return Options{
		PlaylistWorkers: 5,
		PageWorkers:     5,
		GenreWorkers:    5,
		ChunkWorkers:    1,
		Public:          true,
	}
}

// newSplitCatalog returns a catalog with two playlists: "p1" of rock and jazz tracks and "p2" of pop tracks.
func newSplitCatalog() *tu.MockCatalog {
	catalog := tu.NewMockCatalog("owner")
	catalog.Genres["rocker"] = []string{"rock"}
	catalog.Genres["crooner"] = []string{"jazz", "vocal jazz"}
	catalog.Genres["idol"] = []string{"pop"}

	catalog.AddPlaylist("p1", "Mixed",
		tu.Track("r1", "rocker"),
		tu.Track("j1", "crooner"),
		tu.Track("r2", "rocker"),
		tu.Track("x1", "nobody"),
	)
	catalog.AddPlaylist("p2", "Pop", tu.Track("s1", "idol"), tu.Track("s2", "idol"))
	return catalog
}

func TestSplitEngine(t *testing.T) {
	t.Run("NewSplitEngine", func(t *testing.T) {
		if _, err := NewSplitEngine(nil, testOptions(), testLogger()); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}

		opts := testOptions()
		opts.Strategy = "cluster"
		if _, err := NewSplitEngine(tu.NewMockCatalog("owner"), opts, testLogger()); !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("splits every playlist", func(t *testing.T) {
		catalog := newSplitCatalog()
		engine, err := NewSplitEngine(catalog, testOptions(), testLogger())
		if err != nil {
			t.Fatalf("failed to create engine: %v", err)
		}

		report, err := engine.Process(context.Background(), []string{"p1", "p2"}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if report.RunID == "" || report.OwnerID != "owner" {
			t.Errorf("unexpected run metadata %+v", report)
		}
		if report.Succeeded() != 2 {
			t.Fatalf("expected 2 successful playlists, got %+v", report.Playlists)
		}

		p1 := report.Playlists[0]
		if p1.PlaylistID != "p1" || p1.Name != "Mixed" || p1.TrackCount != 4 {
			t.Errorf("unexpected p1 report %+v", p1)
		}
		if len(p1.Groups) != 2 || p1.Groups[0].Genre != "jazz" || p1.Groups[1].Genre != "rock" {
			t.Errorf("expected jazz then rock groups, got %+v", p1.Groups)
		}
		if p1.Groups[1].TrackCount != 2 {
			t.Errorf("expected 2 rock tracks, got %d", p1.Groups[1].TrackCount)
		}

		rock := catalog.AddsFor("new:Mixed - rock")
		if len(rock) != 1 || strings.Join(rock[0].URIs, ",") != "spotify:track:r1,spotify:track:r2" {
			t.Errorf("unexpected rock appends %+v", rock)
		}
		if adds := catalog.AddsFor("new:Pop - pop"); len(adds) != 1 || len(adds[0].URIs) != 2 {
			t.Errorf("unexpected pop appends %+v", adds)
		}
		if catalog.UserCalls != 1 {
			t.Errorf("expected owner resolved once, got %d calls", catalog.UserCalls)
		}
		for _, c := range catalog.Created {
			if c.OwnerID != "owner" {
				t.Errorf("playlist %s created for %s", c.Name, c.OwnerID)
			}
		}
	})

	t.Run("one failing playlist does not affect others", func(t *testing.T) {
		catalog := newSplitCatalog()
		catalog.AddPlaylist("broken", "Broken", tu.Track("b1", "rocker"))
		catalog.LengthErr["broken"] = shared.ErrAPIRequest
		catalog.AddPlaylist("boom", "Boom", tu.Track("b2", "rocker"))
		catalog.PanicOn["boom"] = true

		engine, _ := NewSplitEngine(catalog, testOptions(), testLogger())
		report, err := engine.Process(context.Background(), []string{"broken", "p1", "boom", "p2"}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if report.Succeeded() != 2 || report.Failed() != 2 {
			t.Fatalf("expected 2 succeeded and 2 failed, got %d and %d", report.Succeeded(), report.Failed())
		}
		if !strings.Contains(report.Playlists[0].Err, shared.ErrPlaylistLength.Error()) {
			t.Errorf("expected length error, got %q", report.Playlists[0].Err)
		}
		if !strings.Contains(report.Playlists[2].Err, "panicked") {
			t.Errorf("expected captured panic, got %q", report.Playlists[2].Err)
		}
		if report.Playlists[1].PlaylistID != "p1" || !report.Playlists[1].OK() {
			t.Errorf("expected p1 to succeed in input order, got %+v", report.Playlists[1])
		}
		for _, c := range catalog.Created {
			if strings.HasPrefix(c.Name, "Broken") || strings.HasPrefix(c.Name, "Boom") {
				t.Errorf("unexpected playlist created for failed source: %s", c.Name)
			}
		}
	})

	t.Run("worker panics stay inside their page and chunk", func(t *testing.T) {
		catalog := newSplitCatalog()
		catalog.AddPlaylist("shaky", "Shaky", tu.Track("k1", "rocker"))
		catalog.PanicPage[tu.PageKey{PlaylistID: "shaky", Offset: 0}] = true
		catalog.PanicAdd[tu.AddKey{PlaylistID: "new:Mixed - rock", Position: 0}] = true

		engine, _ := NewSplitEngine(catalog, testOptions(), testLogger())
		report, err := engine.Process(context.Background(), []string{"shaky", "p1", "p2"}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(report.Playlists) != 3 {
			t.Fatalf("expected 3 playlist reports, got %d", len(report.Playlists))
		}

		shaky := report.Playlists[0]
		if !shaky.OK() || shaky.TrackCount != 0 || len(shaky.FailedPages) != 1 || shaky.FailedPages[0] != 0 {
			t.Errorf("expected shaky to report failed page 0, got %+v", shaky)
		}

		mixed := report.Playlists[1]
		for _, g := range mixed.Groups {
			switch g.Genre {
			case "rock":
				if g.Status() != models.StatusFailed || len(g.FailedChunks) != 1 ||
					!strings.Contains(g.FailedChunks[0].Err, "panicked") {
					t.Errorf("expected rock append to fail with captured panic, got %+v", g)
				}
			case "jazz":
				if g.Status() != models.StatusOK {
					t.Errorf("expected jazz group to be written, got %+v", g)
				}
			}
		}
		if !report.Playlists[2].OK() || len(report.Playlists[2].Groups) != 1 {
			t.Errorf("expected p2 to split cleanly, got %+v", report.Playlists[2])
		}
	})

	t.Run("owner failure fails every playlist", func(t *testing.T) {
		catalog := newSplitCatalog()
		catalog.UserErr = shared.ErrNotAuthenticated

		engine, _ := NewSplitEngine(catalog, testOptions(), testLogger())
		report, err := engine.Process(context.Background(), []string{"p1", "p2"}, nil)

		if !errors.Is(err, shared.ErrUserUnresolved) || !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrUserUnresolved wrapping ErrNotAuthenticated, got %v", err)
		}
		if report.Failed() != 2 {
			t.Errorf("expected both playlists failed, got %+v", report.Playlists)
		}
		if len(catalog.PageCalls) != 0 || len(catalog.Created) != 0 {
			t.Error("expected no pipeline work after owner failure")
		}
	})

	t.Run("name failure falls back to ID", func(t *testing.T) {
		catalog := newSplitCatalog()
		catalog.NameErrs["p2"] = shared.ErrAPIRequest

		engine, _ := NewSplitEngine(catalog, testOptions(), testLogger())
		report, err := engine.Process(context.Background(), []string{"p2"}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if report.Playlists[0].Name != "p2" {
			t.Errorf("expected name to fall back to ID, got %s", report.Playlists[0].Name)
		}
		if len(catalog.Created) != 1 || catalog.Created[0].Name != "p2 - pop" {
			t.Errorf("unexpected created playlists %+v", catalog.Created)
		}
	})

	t.Run("no playlists", func(t *testing.T) {
		catalog := newSplitCatalog()
		engine, _ := NewSplitEngine(catalog, testOptions(), testLogger())

		report, err := engine.Process(context.Background(), nil, nil)
		if err != nil || len(report.Playlists) != 0 {
			t.Errorf("expected empty report, got %+v, %v", report, err)
		}
		if catalog.UserCalls != 0 {
			t.Errorf("expected no remote calls, got %d", catalog.UserCalls)
		}
	})

	t.Run("progress updates", func(t *testing.T) {
		catalog := newSplitCatalog()
		engine, _ := NewSplitEngine(catalog, testOptions(), testLogger())

		progress := make(chan ProgressUpdate, 100)
		if _, err := engine.Process(context.Background(), []string{"p1", "p2"}, progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		phases := map[Phase]int{}
		var last ProgressUpdate
		for u := range progress {
			phases[u.Phase]++
			last = u
		}

		if phases[ResolveOwner] != 1 || phases[PlaylistDone] != 2 || phases[WriteGroups] != 3 {
			t.Errorf("unexpected phase counts %v", phases)
		}
		if last.Phase != RunDone {
			t.Errorf("expected last update to be run_done, got %s", last.Phase)
		}
		if _, ok := last.Data.(*models.ProcessReport); !ok {
			t.Errorf("expected run_done to carry the report, got %T", last.Data)
		}
	})

	t.Run("full progress channel never blocks", func(t *testing.T) {
		catalog := newSplitCatalog()
		engine, _ := NewSplitEngine(catalog, testOptions(), testLogger())

		progress := make(chan ProgressUpdate)
		report, err := engine.Process(context.Background(), []string{"p1", "p2"}, progress)
		if err != nil || report.Succeeded() != 2 {
			t.Errorf("expected run to finish without a reader, got %v", err)
		}
	})

	t.Run("cancelled run", func(t *testing.T) {
		catalog := newSplitCatalog()
		engine, _ := NewSplitEngine(catalog, testOptions(), testLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report, err := engine.Process(ctx, []string{"p1", "p2"}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if report.Failed() != 2 || len(catalog.Created) != 0 {
			t.Errorf("expected every playlist to stop before writing, got %+v", report.Playlists)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tc := []struct {
		phase Phase
		want  string
	}{
		{ResolveOwner, "resolve_owner"},
		{FetchTracks, "fetch_tracks"},
		{ResolveGenres, "resolve_genres"},
		{PartitionTracks, "partition_tracks"},
		{WriteGroups, "write_groups"},
		{PlaylistDone, "playlist_done"},
		{PlaylistFailed, "playlist_failed"},
		{RunDone, "run_done"},
		{Phase(99), ""},
	}

	for _, tt := range tc {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
