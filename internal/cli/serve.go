package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/dejo1307/swiftdecl/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve declaration snapshots over MCP on stdio",
		Long: `Start an MCP server on stdin/stdout. Logs go to stderr.

A snapshot previously written to the output directory is loaded at
startup so queries work before the first generate_snapshot call.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slogctx.FromCtx(ctx).With("component", "cli")

			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if repo, err := filepath.Abs(a.cfg.Repo); err == nil {
				if _, err := eng.LoadArtifacts(ctx, repo); err != nil {
					logger.Debug("no existing snapshot loaded", "error", err)
				}
			}

			srv, err := server.New(eng, a.cfg)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
}
