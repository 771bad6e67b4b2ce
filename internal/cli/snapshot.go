package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/dejo1307/swiftdecl/internal/engine"
	"github.com/dejo1307/swiftdecl/internal/model"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var (
		watch bool
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot [REPO]",
		Short: "Extract every Swift file of a repository and write the artifacts",
		Long: `Walk the repository, extract all Swift files, run the explainers and
renderers, and write the artifacts to the output directory.

Files whose content is unchanged since the previous snapshot are not parsed
again. With --watch the snapshot is regenerated whenever a Swift file
changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := a.cfg.Repo
			if len(args) == 1 {
				repo = args[0]
			}
			repo, err := filepath.Abs(repo)
			if err != nil {
				return err
			}

			var opts []engine.Option
			if !quiet {
				opts = append(opts, engine.WithProgress(newBarProgress(cmd.ErrOrStderr())))
			}
			eng, err := a.newEngine(opts...)
			if err != nil {
				return err
			}
			defer eng.Close()

			snapshot, err := eng.GenerateSnapshot(ctx, repo)
			if err != nil {
				return err
			}
			if err := eng.WriteArtifacts(ctx, repo); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), snapshot, filepath.Join(repo, a.cfg.Output.Dir))

			if !watch {
				return nil
			}
			logger := slogctx.FromCtx(ctx).With("component", "cli")
			return eng.Watch(ctx, repo, func(s *model.Snapshot, err error) {
				if err != nil {
					logger.Error("snapshot failed", "error", err)
					return
				}
				printSummary(cmd.OutOrStdout(), s, filepath.Join(repo, a.cfg.Output.Dir))
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate on file changes until interrupted")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show a progress bar")
	return cmd
}

func printSummary(w io.Writer, s *model.Snapshot, outDir string) {
	var size int
	for _, a := range s.Artifacts {
		size += len(a.Content)
	}
	fmt.Fprintf(w, "\nSnapshot complete:\n")
	fmt.Fprintf(w, "  Repository:    %s\n", s.Meta.RepoPath)
	fmt.Fprintf(w, "  Files:         %s (%s unchanged)\n", humanize.Comma(int64(s.Meta.FileCount)), humanize.Comma(int64(s.Meta.ReusedFiles)))
	fmt.Fprintf(w, "  Declarations:  %s\n", humanize.Comma(int64(s.Meta.DeclarationCount)))
	fmt.Fprintf(w, "  Diagnostics:   %s\n", humanize.Comma(int64(s.Meta.DiagnosticCount)))
	fmt.Fprintf(w, "  Insights:      %d\n", s.Meta.InsightCount)
	fmt.Fprintf(w, "  Artifacts:     %d (%s)\n", len(s.Artifacts), humanize.Bytes(uint64(size)))
	fmt.Fprintf(w, "  Duration:      %s\n", s.Meta.Duration)
	fmt.Fprintf(w, "  Output:        %s\n", outDir)
}
