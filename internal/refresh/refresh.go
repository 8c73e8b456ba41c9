// Package refresh drives one pass of the pipeline: resolve a token, fetch
// usage, present it, and hand the resulting state to every sink. Overlapping
// refreshes share one in-flight pass, and nothing reaches a sink once the
// refresher is closed.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tnunamak/copilotmeter/internal/api"
	"github.com/tnunamak/copilotmeter/internal/cache"
	"github.com/tnunamak/copilotmeter/internal/credentials"
	"github.com/tnunamak/copilotmeter/internal/display"
	"github.com/tnunamak/copilotmeter/internal/logger"
	"github.com/tnunamak/copilotmeter/internal/metrics"
)

// Sink receives every state produced by a refresh.
type Sink interface {
	Show(display.State)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(display.State)

func (f SinkFunc) Show(s display.State) { f(s) }

// Resolver finds a token.
type Resolver interface {
	Resolve(ctx context.Context) (credentials.Resolution, error)
}

// Fetcher fetches usage for a token.
type Fetcher interface {
	Fetch(ctx context.Context, token string) api.Outcome
}

// Refresher runs refresh passes. Create one with New.
type Refresher struct {
	resolver Resolver
	fetcher  Fetcher
	store    *cache.Store
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	sinks []Sink

	group  singleflight.Group
	root   context.Context
	cancel context.CancelFunc
	closed atomic.Bool
	// showMu is held for reading around each sink call and for writing by
	// Close, so no sink call starts or is still running once Close returns.
	showMu sync.RWMutex
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithSinks adds sinks in the order they will be called.
func WithSinks(sinks ...Sink) Option {
	return func(r *Refresher) { r.sinks = append(r.sinks, sinks...) }
}

// WithStore sets the last-known-good store.
func WithStore(s *cache.Store) Option {
	return func(r *Refresher) { r.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Refresher) { r.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Refresher) { r.now = now }
}

func New(resolver Resolver, fetcher Fetcher, opts ...Option) *Refresher {
	r := &Refresher{
		resolver: resolver,
		fetcher:  fetcher,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = cache.New(0)
	}
	r.root, r.cancel = context.WithCancel(logger.ContextWithLogger(context.Background(), r.logger))
	return r
}

// AddSink registers another sink. Sinks added after a pass started may not
// see that pass.
func (r *Refresher) AddSink(s Sink) {
	r.mu.Lock()
	r.sinks = append(r.sinks, s)
	r.mu.Unlock()
}

// Closed reports whether Close has been called.
func (r *Refresher) Closed() bool {
	return r.closed.Load()
}

// Close stops any in-flight pass and prevents further sink calls. It waits
// for a sink call already in progress to return, so a sink must not call
// Close itself; it does not wait for the rest of the pass to unwind.
func (r *Refresher) Close() {
	if r.closed.Swap(true) {
		return
	}
	r.cancel()
	// Wait out a sink call that already passed the closed check.
	r.showMu.Lock()
	r.showMu.Unlock()
}

// Refresh runs a pass, or joins the one already running, and returns its
// state. ok is false when the pass was abandoned because the refresher was
// closed or ctx ended first.
func (r *Refresher) Refresh(ctx context.Context) (display.State, bool) {
	if r.closed.Load() {
		return display.State{}, false
	}

	ch := r.group.DoChan("refresh", func() (any, error) {
		st, ok := r.pass(r.root)
		if !ok {
			return nil, errAbandoned
		}
		return st, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return display.State{}, false
		}
		return res.Val.(display.State), true
	case <-ctx.Done():
		return display.State{}, false
	}
}

var errAbandoned = errors.New("refresh abandoned")

// Run refreshes immediately and then every interval until ctx ends or the
// refresher is closed. An interval <= 0 refreshes once and then waits.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	r.Refresh(ctx)

	if interval <= 0 {
		select {
		case <-ctx.Done():
		case <-r.root.Done():
		}
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.root.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

func (r *Refresher) pass(ctx context.Context) (display.State, bool) {
	res, err := r.resolver.Resolve(ctx)
	if r.closed.Load() {
		return display.State{}, false
	}

	var st display.State
	switch {
	case errors.Is(err, credentials.ErrNoCredentials):
		r.logger.Debug("no token found")
		st = display.NoCredentials()
	case err != nil:
		// Only cancellation reaches here; the resolver swallows probe errors.
		r.logger.Debug("token resolution interrupted", zap.Error(err))
		return display.State{}, false
	default:
		metrics.TokenSourceTotal.WithLabelValues(string(res.Source)).Inc()
		r.logger.Debug("token resolved", zap.String("source", string(res.Source)))

		outcome := r.fetch(ctx, res.Token)
		if r.closed.Load() {
			return display.State{}, false
		}
		st = r.present(outcome)
	}

	metrics.RefreshTotal.WithLabelValues(string(st.Mode)).Inc()
	recordQuota(st)

	r.mu.Lock()
	sinks := append([]Sink(nil), r.sinks...)
	r.mu.Unlock()

	for _, s := range sinks {
		if !r.showOpen(s, st) {
			return display.State{}, false
		}
	}
	return st, true
}

// showOpen calls the sink unless the refresher is closed.
func (r *Refresher) showOpen(s Sink, st display.State) bool {
	r.showMu.RLock()
	defer r.showMu.RUnlock()
	if r.closed.Load() {
		return false
	}
	r.show(s, st)
	return true
}

func (r *Refresher) fetch(ctx context.Context, token string) (out api.Outcome) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("usage fetch panicked", zap.Any("panic", p))
			out = api.Outcome{Kind: api.KindTransportError, Message: fmt.Sprintf("internal error: %v", p)}
		}
		metrics.FetchDuration.WithLabelValues(string(out.Kind)).Observe(time.Since(start).Seconds())
	}()
	return r.fetcher.Fetch(ctx, token)
}

func (r *Refresher) present(o api.Outcome) display.State {
	now := r.now()

	var lastGood *display.Usage
	if e, ok := r.store.Read(now); ok {
		lastGood = e.Usage
	}

	st := display.FromOutcome(o, lastGood, now)
	switch st.Mode {
	case display.ModeUsage:
		r.store.Write(st.Usage, now)
	case display.ModeSetup:
		if o.Kind == api.KindAuthRejected {
			r.store.Clear()
		}
	case display.ModeNetworkError:
		r.logger.Warn("usage fetch failed", zap.String("kind", string(o.Kind)), zap.String("detail", st.Detail))
	}
	return st
}

func (r *Refresher) show(s Sink, st display.State) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("sink panicked", zap.Any("panic", p))
		}
	}()
	s.Show(st)
}

func recordQuota(st display.State) {
	if st.Mode != display.ModeUsage || st.Usage == nil {
		return
	}
	set := func(name string, m display.Meter) {
		if m.Unlimited {
			metrics.QuotaUsedPercent.DeleteLabelValues(name)
			return
		}
		metrics.QuotaUsedPercent.WithLabelValues(name).Set(m.UsedPercent)
	}
	set("premium", st.Usage.Premium)
	set("chat", st.Usage.Chat)
}
