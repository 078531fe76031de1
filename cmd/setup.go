package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/splitify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the starter config file at --config.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlain("\nNext steps:\n")
	r.writePlain("1. Set credentials.spotify.access_token in %s, or export SPOTIFY_TOKEN\n", path)
	r.writePlain("2. Run 'splitify playlists' to check the token\n")
	r.writePlain("3. Run 'splitify split <playlist-id>' to split a playlist by genre\n")
	return nil
}
