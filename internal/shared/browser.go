package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// PlaylistBaseURL is the web player address playlists are opened under.
const PlaylistBaseURL = "https://open.spotify.com/playlist/"

var getRuntime = func() string { return runtime.GOOS }

// PlaylistURL returns the web player link for a playlist ID.
func PlaylistURL(playlistID string) string {
	return PlaylistBaseURL + url.PathEscape(playlistID)
}

// OpenPlaylist opens a created playlist in the web player.
func OpenPlaylist(playlistID string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", ErrMissingArgument)
	}
	return OpenBrowser(PlaylistURL(playlistID))
}

// OpenBrowser opens the default system browser to the specified URL.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(getRuntime(), url)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func browserCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
