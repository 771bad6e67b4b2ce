package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/dejo1307/swiftdecl/internal/frontend"
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/renderers/declyaml"
	"github.com/dejo1307/swiftdecl/internal/treecache"
)

// Output formats of the extract command.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatPretty = "pretty"
)

var formats = []string{FormatJSON, FormatYAML, FormatPretty}

func newExtractCmd(a *app) *cobra.Command {
	var (
		format   string
		frontEnd string
	)

	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Print the declaration model of source files",
		Long: `Parse each file and print its extracted declarations.

The front end is chosen by file extension unless --frontend is given:
.ts, .tsx, .mts and .cts files use the TypeScript bridge, everything else
the Swift parser.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(formats, format) {
				return errors.Errorf("unknown format %q (want one of %v)", format, formats)
			}
			if frontEnd != "" && !slices.Contains(frontend.Names, frontEnd) {
				return errors.WithDetails(frontend.ErrUnknown, "frontend", frontEnd)
			}

			var slot treecache.Slot
			files := make([]model.FileModel, 0, len(args))
			for _, path := range args {
				src, err := os.ReadFile(path)
				if err != nil {
					return errors.Errorf("reading %s: %w", path, err)
				}
				fm, err := frontend.ExtractCached(cmd.Context(), &slot, path, src, frontEnd)
				if err != nil {
					return err
				}
				files = append(files, *fm)
			}
			return writeFiles(cmd.OutOrStdout(), format, files)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "output format: json, yaml or pretty")
	cmd.Flags().StringVar(&frontEnd, "frontend", "", "front end: swift or typescript (default: by extension)")
	return cmd
}

// writeFiles prints file models. JSON output is one indented document per
// file.
func writeFiles(w io.Writer, format string, files []model.FileModel) error {
	switch format {
	case FormatYAML:
		data, err := declyaml.Marshal(files)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return errors.WithStack(err)
	case FormatPretty:
		p := pp.New()
		p.SetColoringEnabled(false)
		p.SetExportedOnly(true)
		for _, f := range files {
			if _, err := fmt.Fprintln(w, p.Sprint(f)); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, f := range files {
			if err := enc.Encode(f); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}
}
