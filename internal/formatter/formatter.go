// package formatter renders split reports and playlist listings in various formats (text, Markdown, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/splitify/internal/models"
	"github.com/desertthunder/splitify/internal/services"
	"github.com/desertthunder/splitify/internal/shared"
)

// Supported output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// Formats lists the accepted values of --format.
var Formats = []string{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ReportToCSV converts a ProcessReport to CSV with one row per destination group.
//
// Playlists that failed before partitioning get a single row with an empty genre.
func ReportToCSV(report *models.ProcessReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Source ID", "Source", "Genre", "Playlist", "Playlist ID", "Tracks", "Status", "Failed Chunks", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range report.Playlists {
		if !p.OK() || len(p.Groups) == 0 {
			status := string(models.StatusOK)
			if !p.OK() {
				status = string(models.StatusFailed)
			}
			record := []string{p.PlaylistID, p.Name, "", "", "", strconv.Itoa(p.TrackCount), status, "0", p.Err}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}

		for _, g := range p.Groups {
			record := []string{
				p.PlaylistID,
				p.Name,
				g.Genre,
				g.PlaylistName,
				g.PlaylistID,
				strconv.Itoa(g.TrackCount),
				string(g.Status()),
				strconv.Itoa(len(g.FailedChunks)),
				g.Err,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown converts a ProcessReport to Markdown with a section per source playlist
func ReportToMarkdown(report *models.ProcessReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Split run %s\n\n", report.RunID)
	fmt.Fprintf(&buf, "**Owner**: %s\n", report.OwnerID)
	fmt.Fprintf(&buf, "**Duration**: %s\n", report.Duration().Round(time.Millisecond))
	fmt.Fprintf(&buf, "**Playlists**: %d succeeded, %d failed\n\n", report.Succeeded(), report.Failed())

	for _, p := range report.Playlists {
		fmt.Fprintf(&buf, "## %s\n\n", p.Name)
		if !p.OK() {
			fmt.Fprintf(&buf, "**Error**: %s\n\n", p.Err)
			continue
		}

		fmt.Fprintf(&buf, "**Tracks**: %d\n\n", p.TrackCount)
		if len(p.Groups) == 0 {
			buf.WriteString("No genre groups.\n\n")
			continue
		}

		buf.WriteString("| Genre | Playlist | Tracks | Status |\n")
		buf.WriteString("| --- | --- | --- | --- |\n")
		for _, g := range p.Groups {
			fmt.Fprintf(&buf, "| %s | %s | %d | %s |\n", g.Genre, g.PlaylistName, g.TrackCount, g.Status())
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ReportToText converts a ProcessReport to plain text
func ReportToText(report *models.ProcessReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Run: %s\n", report.RunID)
	fmt.Fprintf(&buf, "Playlists: %d succeeded, %d failed\n\n", report.Succeeded(), report.Failed())

	for _, p := range report.Playlists {
		if !p.OK() {
			fmt.Fprintf(&buf, "✗ %s: %s\n", p.Name, p.Err)
			continue
		}

		fmt.Fprintf(&buf, "✓ %s (%d tracks, %d groups)\n", p.Name, p.TrackCount, len(p.Groups))
		for i, g := range p.Groups {
			fmt.Fprintf(&buf, "  %d. %s [%d] %s\n", i+1, g.PlaylistName, g.TrackCount, g.Status())
			for _, c := range g.FailedChunks {
				fmt.Fprintf(&buf, "     chunk at %d (%d tracks): %s\n", c.Offset, c.Count, c.Err)
			}
			if g.Err != "" {
				fmt.Fprintf(&buf, "     %s\n", g.Err)
			}
		}
		if len(p.FailedPages) > 0 {
			fmt.Fprintf(&buf, "  unread pages at offsets %s\n", joinInts(p.FailedPages))
		}
		if len(p.UnresolvedArtists) > 0 {
			fmt.Fprintf(&buf, "  %d artists unresolved\n", len(p.UnresolvedArtists))
		}
	}

	return buf.Bytes(), nil
}

// ReportToJSON generates an indented JSON representation of the report
func ReportToJSON(report *models.ProcessReport) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// FormatReport renders a report in the named format.
func FormatReport(report *models.ProcessReport, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText, "txt":
		return ReportToText(report)
	case FormatMarkdown, "md":
		return ReportToMarkdown(report)
	case FormatCSV:
		return ReportToCSV(report)
	case FormatJSON:
		return ReportToJSON(report)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (use %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// WriteReport renders a report to w.
func WriteReport(w io.Writer, report *models.ProcessReport, format string) error {
	data, err := FormatReport(report, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteReportFile renders a report to a file.
//
// Defaults to split_{run ID}.{ext} as the filename.
func WriteReportFile(report *models.ProcessReport, format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("split_%s.%s", report.RunID, extension(format))
	}

	data, err := FormatReport(report, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// PlaylistsToText lists playlists one per line
func PlaylistsToText(playlists []services.Playlist) []byte {
	var buf bytes.Buffer
	for i, p := range playlists {
		fmt.Fprintf(&buf, "%d. %s (%d tracks, %s) [%s]\n", i+1, p.Name, p.TrackCount, visibility(p.Public), p.ID)
	}
	return buf.Bytes()
}

// PlaylistsToCSV converts playlists to CSV format with columns: ID, Name, Owner, Tracks, Public
func PlaylistsToCSV(playlists []services.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Owner", "Tracks", "Public"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, p := range playlists {
		record := []string{p.ID, p.Name, p.Owner, strconv.Itoa(p.TrackCount), strconv.FormatBool(p.Public)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func visibility(public bool) string {
	if public {
		return "public"
	}
	return "private"
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case FormatMarkdown, "md":
		return "md"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
