package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/shared"
	th "github.com/desertthunder/splitify/internal/testing"
)

func sampleReport() *models.ProcessReport {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.ProcessReport{
		RunID:      "run-1",
		OwnerID:    "owner",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Playlists: []models.PlaylistReport{
			{
				PlaylistID:        "p1",
				Name:              "Road Trip",
				TrackCount:        152,
				FailedPages:       []int{100},
				UnresolvedArtists: []string{"a9"},
				Groups: []models.GroupOutcome{
					{Genre: "indie", PlaylistName: "Road Trip - indie", PlaylistID: "n1", TrackCount: 2, ChunksWritten: 1},
					{
						Genre:         "rock",
						PlaylistName:  "Road Trip - rock",
						PlaylistID:    "n2",
						TrackCount:    150,
						ChunksWritten: 1,
						FailedChunks:  []models.ChunkFailure{{Offset: 100, Count: 50, Err: "API request failed"}},
					},
				},
			},
			{PlaylistID: "p2", Name: "p2", Err: "could not determine playlist length"},
		},
	}
}

func TestReportFormats(t *testing.T) {
	t.Run("ReportToCSV", func(t *testing.T) {
		data, err := ReportToCSV(sampleReport())
		if err != nil {
			t.Fatalf("ReportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header plus 3 rows, got %d", len(records))
		}
		if records[0][0] != "Source ID" {
			t.Errorf("CSV missing headers, got: %v", records[0])
		}
		if records[2][2] != "rock" || records[2][6] != "partial" || records[2][7] != "1" {
			t.Errorf("unexpected rock row %v", records[2])
		}
		if records[3][0] != "p2" || records[3][6] != "failed" || records[3][8] == "" {
			t.Errorf("unexpected failed row %v", records[3])
		}
	})

	t.Run("ReportToMarkdown", func(t *testing.T) {
		data, err := ReportToMarkdown(sampleReport())
		if err != nil {
			t.Fatalf("ReportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Split run run-1",
			"**Playlists**: 1 succeeded, 1 failed",
			"## Road Trip",
			"| indie | Road Trip - indie | 2 | ok |",
			"| rock | Road Trip - rock | 150 | partial |",
			"**Error**: could not determine playlist length",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ReportToText", func(t *testing.T) {
		data, err := ReportToText(sampleReport())
		if err != nil {
			t.Fatalf("ReportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"✓ Road Trip (152 tracks, 2 groups)",
			"1. Road Trip - indie [2] ok",
			"chunk at 100 (50 tracks)",
			"unread pages at offsets 100",
			"1 artists unresolved",
			"✗ p2: could not determine playlist length",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ReportToJSON", func(t *testing.T) {
		data, err := ReportToJSON(sampleReport())
		if err != nil {
			t.Fatalf("ReportToJSON failed: %v", err)
		}

		var decoded models.ProcessReport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.RunID != "run-1" || len(decoded.Playlists) != 2 {
			t.Errorf("unexpected decoded report %+v", decoded)
		}
		if !strings.Contains(string(data), `"failed_chunks"`) {
			t.Error("expected failed_chunks key in JSON")
		}
	})

	t.Run("FormatReport", func(t *testing.T) {
		tc := []struct {
			format  string
			prefix  string
			wantErr bool
		}{
			{format: "", prefix: "Run: run-1"},
			{format: "TEXT", prefix: "Run: run-1"},
			{format: "md", prefix: "# Split run"},
			{format: "csv", prefix: "Source ID"},
			{format: "json", prefix: "{"},
			{format: "xml", wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.format, func(t *testing.T) {
				data, err := FormatReport(sampleReport(), tt.format)
				if tt.wantErr {
					if !errors.Is(err, shared.ErrInvalidArgument) {
						t.Errorf("expected ErrInvalidArgument, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if !strings.HasPrefix(string(data), tt.prefix) {
					t.Errorf("expected output to start with %q, got %q", tt.prefix, string(data))
				}
			})
		}
	})
}

func TestWriteReport(t *testing.T) {
	t.Run("writer", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteReport(&buf, sampleReport(), "text"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if buf.Len() == 0 {
			t.Error("expected output")
		}
	})

	t.Run("failing writer", func(t *testing.T) {
		if err := WriteReport(&th.FWriter{}, sampleReport(), "text"); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		got, err := WriteReportFile(sampleReport(), "json", path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		th.AssertFileExists(t, got)
		if content := th.MustReadFile(t, got); !strings.Contains(content, `"run_id": "run-1"`) {
			t.Errorf("unexpected file content %s", content)
		}
	})

	t.Run("default filename", func(t *testing.T) {
		if got := extension("md"); got != "md" {
			t.Errorf("expected md, got %s", got)
		}
		if got := extension("weird"); got != "txt" {
			t.Errorf("expected txt fallback, got %s", got)
		}
	})
}

func TestPlaylistListing(t *testing.T) {
	playlists := []services.Playlist{
		{ID: "p1", Name: "Road Trip", Owner: "owner", TrackCount: 152, Public: true},
		{ID: "p2", Name: "Focus", Owner: "owner", TrackCount: 40},
	}

	t.Run("text", func(t *testing.T) {
		output := string(PlaylistsToText(playlists))
		if !strings.Contains(output, "1. Road Trip (152 tracks, public) [p1]") {
			t.Errorf("unexpected text %s", output)
		}
		if !strings.Contains(output, "2. Focus (40 tracks, private) [p2]") {
			t.Errorf("unexpected text %s", output)
		}
	})

	t.Run("csv", func(t *testing.T) {
		data, err := PlaylistsToCSV(playlists)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(data), "p2,Focus,owner,40,false") {
			t.Errorf("unexpected CSV %s", data)
		}
	})
}
