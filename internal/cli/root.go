package cli

import (
	"fmt"
	"os"

	"github.com/crxgen/crxgen/internal/branding"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// Persistent flags shared by every project command.
var (
	flagRoot      string
	flagTarget    string
	flagSrcDir    string
	flagOutDir    string
	flagLogLevel  string
	flagLogFormat string
	flagVerbose   bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagRoot, "root", ".", "Project root containing package.json and "+branding.ConfigName()+".yaml")
	pf.StringVarP(&flagTarget, "target", "t", "", "Build target (chrome-mv3, firefox-mv3, firefox-mv2, safari-mv3, edge-mv3, opera-mv3)")
	pf.StringVar(&flagSrcDir, "src", "", "Source directory (default: src/ when present, else the project root)")
	pf.StringVar(&flagOutDir, "out", "", "Output directory (default: dist/<target>)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format (pretty, json)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` builds browser-extension manifests from source-tree conventions.

Files such as background.ts, popup/index.tsx or contents/*.ts are discovered,
merged into the manifest for the selected target, compiled, and the manifest
is patched with the emitted file names. Values declared in the manifest always
win over discovered files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
