package cli

import (
	"fmt"

	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/processor"
	"github.com/spf13/cobra"
)

var (
	manifestMode    string
	manifestStrict  bool
	manifestCompact bool
)

func init() {
	manifestCmd.Flags().StringVar(&manifestMode, "mode", "", "Build mode (development, production)")
	manifestCmd.Flags().BoolVar(&manifestStrict, "strict", false, "Fail when the manifest does not validate")
	manifestCmd.Flags().BoolVar(&manifestCompact, "compact", false, "Print compact JSON")
	rootCmd.AddCommand(manifestCmd)
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the normalized manifest",
	Long: `Scan the source tree, merge discovered entries into the declared manifest and
print the result. Source paths are not yet replaced by compiled file names.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseModeFlag(manifestMode, manifest.Production)
		if err != nil {
			return err
		}
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		_, m, _, err := p.normalize(mode, processor.Runtime{}, manifestStrict)
		if err != nil {
			return err
		}

		data, err := m.Encode(!manifestCompact)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
		if manifestCompact {
			fmt.Fprintln(out)
		}
		return nil
	},
}
