package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crxgen/crxgen/internal/bundle"
	"github.com/crxgen/crxgen/internal/devruntime"
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/normalize"
	"github.com/crxgen/crxgen/internal/processor"
	"github.com/crxgen/crxgen/internal/reconcile"
	"github.com/crxgen/crxgen/internal/reload"
	"github.com/spf13/cobra"
)

var devNoReload bool

func init() {
	devCmd.Flags().BoolVar(&devNoReload, "no-reload", false, "Do not start the reload server or inject the reload runtime")
	rootCmd.AddCommand(devCmd)
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Build in development mode and rebuild on change",
	Long: `Build the extension in development mode, watch the sources and rebuild on
every change. After each rebuild manifest.json is reconciled and connected
extensions are told to reload.

The manifest is normalized once at startup; restart dev after adding or
removing entry files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var hub *reload.Hub
		var rt processor.Runtime
		if !devNoReload {
			rt, err = devruntime.Materialize(p.settings.Root, p.settings.ReloadPort)
			if err != nil {
				return err
			}
			if changed, err := devruntime.EnsureIgnored(p.settings.Root); err != nil {
				p.log.Warn().Err(err).Msg("updating .gitignore")
			} else if changed {
				p.log.Info().Msg("added the work directory to .gitignore")
			}
			hub = reload.NewHub(p.log)
			srv, err := reload.Listen(fmt.Sprintf("127.0.0.1:%d", p.settings.ReloadPort), hub)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					p.log.Warn().Err(err).Msg("stopping reload server")
				}
			}()
		}

		opts, m, layout, err := p.normalize(manifest.Development, rt, false)
		if err != nil {
			return err
		}
		entries := normalize.Entries(opts, m, layout)
		out := p.settings.OutDir
		if err := os.MkdirAll(out, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}

		onBuild := func(res *bundle.Result, err error) {
			if err != nil {
				p.log.Error().Err(err).Msg("rebuild failed")
				return
			}
			final, err := reconcile.Reconcile(reconcile.Options{
				Manifest: m,
				Assets:   res.Assets,
				Inputs:   res.Inputs,
				OutDir:   out,
				Mode:     manifest.Development,
				Context:  opts.Context(m, layout),
				Logger:   p.log,
			})
			if err != nil {
				p.log.Error().Err(err).Msg("reconciling manifest")
				return
			}
			if err := normalize.Validate(final); err != nil {
				p.log.Warn().Err(err).Msg("built manifest does not validate")
			}
			if hub != nil {
				n := hub.Reload()
				p.log.Info().Int("clients", n).Msg("rebuilt")
			} else {
				p.log.Info().Msg("rebuilt")
			}
		}

		return bundle.Watch(ctx, bundle.Options{
			Root:    p.settings.Root,
			SrcDir:  p.settings.SrcDir,
			OutDir:  out,
			Entries: entries,
			Mode:    manifest.Development,
			Titles:  p.pageTitles(entries),
			Logger:  p.log,
		}, onBuild)
	},
}
