// Package cli implements the swiftdecl command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	slogctx "github.com/veqryn/slog-context"

	"github.com/dejo1307/swiftdecl/internal/config"
	"github.com/dejo1307/swiftdecl/internal/engine"
	"github.com/dejo1307/swiftdecl/internal/explainers/cycles"
	"github.com/dejo1307/swiftdecl/internal/explainers/layers"
	"github.com/dejo1307/swiftdecl/internal/explainers/rules"
	"github.com/dejo1307/swiftdecl/internal/renderers/declyaml"
	"github.com/dejo1307/swiftdecl/internal/renderers/outline"
)

// Version is set at build time.
var Version = "dev"

// app carries the state shared by all subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "swiftdecl",
		Short: "Extract declaration models from Swift sources",
		Long: `swiftdecl parses Swift source files and extracts every class, struct,
enum, protocol and extension, with their members, generics and nesting.

It can print the model of single files, snapshot a whole repository into
JSONL, YAML and markdown artifacts, or serve the snapshot over MCP.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger := newLogger(cmd.ErrOrStderr(), a.v.GetBool("verbose"), a.v.GetBool("no-color"))
			slog.SetDefault(logger)
			cmd.SetContext(slogctx.NewCtx(ctx, logger))

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is ./"+config.DefaultFile+" when present)")
	flags.String("repo", "", "repository root (overrides the config file)")
	flags.Int("workers", 0, "parallel extraction workers (0 = number of CPUs)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.Bool("no-color", false, "disable colored log output")
	for _, name := range []string{"config", "repo", "workers", "verbose", "no-color"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	a.v.SetEnvPrefix("SWIFTDECL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd.AddCommand(
		newExtractCmd(a),
		newSnapshotCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// loadConfig reads the config file and applies flag and environment
// overrides.
func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := a.v.GetString("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultFile)
	}
	if err != nil {
		return nil, err
	}

	if repo := a.v.GetString("repo"); repo != "" {
		cfg.Repo = repo
	}
	if workers := a.v.GetInt("workers"); workers > 0 {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEngine creates an engine with every explainer and renderer registered;
// the config decides which of them run.
func (a *app) newEngine(opts ...engine.Option) (*engine.Engine, error) {
	eng, err := engine.New(a.cfg, opts...)
	if err != nil {
		return nil, err
	}

	ruleExplainer, err := rules.New(a.cfg.Rules)
	if err != nil {
		eng.Close()
		return nil, err
	}

	eng.RegisterExplainer(cycles.New())
	eng.RegisterExplainer(layers.New())
	eng.RegisterExplainer(ruleExplainer)

	eng.RegisterRenderer(outline.New(a.cfg.Output.MaxOutlineTokens))
	eng.RegisterRenderer(declyaml.New())
	return eng, nil
}

func newLogger(w io.Writer, verbose, noColor bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}))
}
