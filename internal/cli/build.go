package cli

import (
	"fmt"
	"os"

	"github.com/crxgen/crxgen/internal/bundle"
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/normalize"
	"github.com/crxgen/crxgen/internal/processor"
	"github.com/crxgen/crxgen/internal/reconcile"
	"github.com/spf13/cobra"
)

var (
	buildMode  string
	buildClean bool
)

func init() {
	buildCmd.Flags().StringVar(&buildMode, "mode", "", "Build mode (development, production)")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "Remove the output directory first")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the extension and write manifest.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseModeFlag(buildMode, manifest.Production)
		if err != nil {
			return err
		}
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}

		out := p.settings.OutDir
		if buildClean {
			if err := os.RemoveAll(out); err != nil {
				return fmt.Errorf("removing %s: %w", out, err)
			}
		}

		// Write fills in fields such as content script matches, so the
		// schema is checked on the reconciled manifest only.
		opts, m, layout, err := p.normalize(mode, processor.Runtime{}, false)
		if err != nil {
			return err
		}
		entries := normalize.Entries(opts, m, layout)
		if len(entries) == 0 {
			p.log.Warn().Str("src", p.settings.SrcDir).Msg("no entries found")
		}

		res, err := bundle.Build(cmd.Context(), bundle.Options{
			Root:    p.settings.Root,
			SrcDir:  p.settings.SrcDir,
			OutDir:  out,
			Entries: entries,
			Mode:    mode,
			Titles:  p.pageTitles(entries),
			Logger:  p.log,
		})
		if err != nil {
			return err
		}
		if err := os.MkdirAll(out, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}

		final, err := reconcile.Reconcile(reconcile.Options{
			Manifest: m,
			Assets:   res.Assets,
			Inputs:   res.Inputs,
			OutDir:   out,
			Mode:     mode,
			Context:  opts.Context(m, layout),
			Logger:   p.log,
		})
		if err != nil {
			return err
		}
		if err := normalize.Validate(final); err != nil {
			return fmt.Errorf("built manifest: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Built %d entries for %s into %s\n", len(res.Assets), p.settings.Target, out)
		return nil
	},
}
