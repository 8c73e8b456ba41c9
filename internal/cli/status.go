package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var jsonMode, plainMode, waybarMode bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current usage (default)",
		Long: "Resolve a token, fetch Copilot usage once and print it.\n\n" +
			"Exit status is 0 when usage was shown, 1 on a network or HTTP error " +
			"and 2 when setup is needed (no token, token rejected, no quota data).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := formatText
			switch {
			case jsonMode:
				format = formatJSON
			case waybarMode:
				format = formatWaybar
			case plainMode:
				format = formatPlain
			}
			return runStatus(cmd, opts, format)
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&plainMode, "plain", false, "Plain text, no color codes")
	cmd.Flags().BoolVar(&waybarMode, "waybar", false, "Output a Waybar custom-module line")
	cmd.MarkFlagsMutuallyExclusive("json", "plain", "waybar")

	return cmd
}

func runStatus(cmd *cobra.Command, opts *rootOptions, format string) error {
	p, err := newPipeline(opts)
	if err != nil {
		return err
	}
	defer p.close()

	ctx, stop := signal.NotifyContext(p.context(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := p.refresher()
	defer r.Close()

	st, ok := r.Refresh(ctx)
	if !ok {
		return context.Canceled
	}

	if err := render(cmd.OutOrStdout(), format, st, time.Now()); err != nil {
		return err
	}

	// Waybar hides modules whose script fails, so it always exits 0.
	if format == formatWaybar {
		return nil
	}
	if code := exitCode(st); code != 0 {
		return &exitError{code: code}
	}
	return nil
}
