package main

import (
	"context"

	"github.com/desertthunder/splitify/internal/server"
	"github.com/desertthunder/splitify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP surface until the process is interrupted.
//
// Requests carry their own bearer token, so no token is needed at startup.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config.Server
	if cmd.IsSet("host") {
		config.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Port = cmd.Int("port")
	}

	srv := server.NewServer(config, r.catalogs, tasks.OptionsFromConfig(r.config.Split), r.logger)
	return srv.ListenAndServe(ctx)
}
