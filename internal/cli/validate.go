package cli

import (
	"fmt"
	"path/filepath"

	"github.com/crxgen/crxgen/internal/config"
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a manifest file",
	Long: `Validate a manifest.json (or YAML manifest) against the manifest schema.
Without a path, the manifest in the output directory is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := config.Load(flagRoot)
			if err != nil {
				return err
			}
			s, err := cfg.Resolve(config.Overrides{Target: flagTarget, OutDir: flagOutDir})
			if err != nil {
				return err
			}
			path = filepath.Join(s.OutDir, manifest.FileName)
		}
		return runManifestCheck(cmd, path)
	},
}

func runManifestCheck(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if result.Valid {
		m, err := manifest.LoadPartial(path)
		if err != nil {
			fmt.Fprintf(out, "  [ OK ] Valid manifest\n")
			return nil
		}
		fmt.Fprintf(out, "  [ OK ] Valid manifest: %s (v%s)\n", m.String("name"), m.String("version"))
		return nil
	}

	fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "    - %s\n", issue)
	}
	return fmt.Errorf("manifest %s has %d validation issue(s)", path, len(result.Issues))
}
