package shared

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		want    log.Level
		wantErr bool
	}{
		{name: "empty defaults to info", input: "", want: log.InfoLevel},
		{name: "debug", input: "debug", want: log.DebugLevel},
		{name: "mixed case and padding", input: "  WARN ", want: log.WarnLevel},
		{name: "unknown", input: "verbose", want: log.InfoLevel, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "run", "r1")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "run=r1") {
			t.Errorf("expected message and key-value in output, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "splitify.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("to file")
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("expected unique non-empty IDs, got %q and %q", a, b)
	}
}

func TestOpenPlaylist(t *testing.T) {
	original := getRuntime
	t.Cleanup(func() { getRuntime = original })

	t.Run("PlaylistURL", func(t *testing.T) {
		tc := []struct {
			id, want string
		}{
			{id: "37i9dQZF1DXcBWIGoYBM5M", want: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M"},
			{id: "a b/c", want: "https://open.spotify.com/playlist/a%20b%2Fc"},
		}
		for _, tt := range tc {
			if got := PlaylistURL(tt.id); got != tt.want {
				t.Errorf("PlaylistURL(%q) = %q, want %q", tt.id, got, tt.want)
			}
		}
	})

	t.Run("requires an ID", func(t *testing.T) {
		if err := OpenPlaylist(""); !errors.Is(err, ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenPlaylist("abc"); err == nil || !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})

	t.Run("browser command per platform", func(t *testing.T) {
		for goos, bin := range map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "rundll32"} {
			cmd, err := browserCommand(goos, PlaylistURL("abc"))
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", goos, err)
			}
			if cmd.Args[0] != bin || cmd.Args[len(cmd.Args)-1] != "https://open.spotify.com/playlist/abc" {
				t.Errorf("%s: unexpected command %v", goos, cmd.Args)
			}
		}
	})
}
