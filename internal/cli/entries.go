package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/normalize"
	"github.com/crxgen/crxgen/internal/processor"
	"github.com/spf13/cobra"
)

var (
	entriesMode string
	entriesJSON bool
)

func init() {
	entriesCmd.Flags().StringVar(&entriesMode, "mode", "", "Build mode (development, production)")
	entriesCmd.Flags().BoolVar(&entriesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(entriesCmd)
}

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List the bundler entry points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseModeFlag(entriesMode, manifest.Production)
		if err != nil {
			return err
		}
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		opts, m, layout, err := p.normalize(mode, processor.Runtime{}, false)
		if err != nil {
			return err
		}
		entries := normalize.Entries(opts, m, layout)

		out := cmd.OutOrStdout()
		if entriesJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling entries: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(entries) == 0 {
			fmt.Fprintln(out, "No entries found.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tHTML\tIMPORTS")
		for _, name := range entries.Names() {
			e := entries[name]
			fmt.Fprintf(w, "%s\t%t\t%s\n", name, e.HTML, strings.Join(e.Import, ", "))
		}
		return w.Flush()
	},
}
