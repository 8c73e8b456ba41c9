package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tnunamak/copilotmeter/internal/display"
	"github.com/tnunamak/copilotmeter/internal/metrics"
	"github.com/tnunamak/copilotmeter/internal/server"
)

// writerSink prints every state as one record in a fixed format.
type writerSink struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	logger *zap.Logger
}

func (s *writerSink) Show(st display.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := render(s.w, s.format, st, time.Now()); err != nil {
		s.logger.Warn("write state", zap.Error(err))
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		format   string
		listen   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh periodically and print each result",
		Long: "Run the refresh loop without a tray icon, printing one record per refresh. " +
			"With --listen, also serve /metrics, /healthz, GET /api/state and POST /api/refresh. " +
			"Saving the settings file triggers a refresh.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatText, formatPlain, formatJSON, formatWaybar:
			default:
				return fmt.Errorf("unknown format %q (want text, plain, json or waybar)", format)
			}

			p, err := newPipeline(opts)
			if err != nil {
				return err
			}
			defer p.close()

			if !cmd.Flags().Changed("interval") {
				interval = p.cfg.RefreshInterval()
			}
			if interval < 0 {
				return fmt.Errorf("interval must be >= 0, got %s", interval)
			}
			if !cmd.Flags().Changed("listen") {
				listen = p.cfg.Metrics.Addr
			}

			ctx, stop := signal.NotifyContext(p.context(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := &writerSink{w: cmd.OutOrStdout(), format: format, logger: p.logger}
			holder := &server.StateHolder{}
			r := p.refresher(out, holder)
			defer r.Close()

			// Nothing periodic and nothing to serve: print one record and exit.
			if interval == 0 && listen == "" {
				if _, ok := r.Refresh(ctx); !ok {
					return context.Canceled
				}
				return nil
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				r.Run(ctx, interval)
				return nil
			})
			g.Go(func() error {
				p.watchSettings(ctx, r)
				return nil
			})
			if listen != "" {
				metrics.Register()
				srv := server.New(holder, r, p.logger)
				g.Go(func() error {
					return srv.ListenAndServe(ctx, listen)
				})
			}
			go func() {
				<-ctx.Done()
				r.Close()
			}()
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, plain, json or waybar")
	cmd.Flags().StringVar(&listen, "listen", "", "Serve state and metrics on this address (default metrics.addr)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval; 0 refreshes once, then exits unless --listen is set (default refresh_interval_sec)")

	return cmd
}
