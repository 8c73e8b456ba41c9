package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tnunamak/copilotmeter/internal/autostart"
	"github.com/tnunamak/copilotmeter/internal/tray"
)

func newTrayCmd(opts *rootOptions) *cobra.Command {
	var install, uninstall, noNotify bool

	cmd := &cobra.Command{
		Use:   "tray",
		Short: "Run as system tray icon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if install {
				if err := autostart.Install(); err != nil {
					return err
				}
				fmt.Fprintln(out, "copilotmeter will start at login")
				return nil
			}
			if uninstall {
				if err := autostart.Uninstall(); err != nil {
					return err
				}
				fmt.Fprintln(out, "copilotmeter autostart removed")
				return nil
			}

			p, err := newPipeline(opts)
			if err != nil {
				return err
			}
			defer p.close()

			r := p.refresher()
			ctx, cancel := context.WithCancel(p.context(cmd.Context()))
			defer cancel()
			go p.watchSettings(ctx, r)

			return tray.Run(tray.Options{
				Refresher: r,
				Interval:  p.cfg.RefreshInterval(),
				Version:   Version,
				Logger:    p.logger,
				Notify:    !noNotify,
			})
		},
	}

	cmd.Flags().BoolVar(&install, "install", false, "Enable launch at login")
	cmd.Flags().BoolVar(&uninstall, "uninstall", false, "Disable launch at login")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "Disable desktop notifications")
	cmd.MarkFlagsMutuallyExclusive("install", "uninstall")

	return cmd
}
