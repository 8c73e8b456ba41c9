package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tnunamak/copilotmeter/internal/logger"
)

// ErrNoCredentials is returned when every probe came up empty.
var ErrNoCredentials = errors.New("no GitHub token found")

// Resolution is a token together with the probe that produced it.
type Resolution struct {
	Token  string
	Source Source
}

// Resolver runs probes in a fixed order until one yields a token.
// It keeps no state between calls: every Resolve starts from the first probe.
type Resolver struct {
	probes []Probe
}

func NewResolver(probes ...Probe) *Resolver {
	return &Resolver{probes: probes}
}

// Sources returns the probe order.
func (r *Resolver) Sources() []Source {
	out := make([]Source, len(r.probes))
	for i, p := range r.probes {
		out[i] = p.Source()
	}
	return out
}

// Resolve awaits each probe in turn and returns the first token found.
// If ctx is cancelled while a probe runs, no further probe is started and
// ctx.Err() is returned.
func (r *Resolver) Resolve(ctx context.Context) (Resolution, error) {
	log := logger.FromContext(ctx)
	for _, p := range r.probes {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}
		token, ok := runProbe(ctx, p)
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}
		if ok {
			log.Debug("token found", zap.String("source", string(p.Source())))
			return Resolution{Token: token, Source: p.Source()}, nil
		}
	}
	return Resolution{}, ErrNoCredentials
}

// runProbe shields the chain from a panicking probe; a panic counts as "not found".
func runProbe(ctx context.Context, p Probe) (token string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.FromContext(ctx).Error("credential probe panicked",
				zap.String("source", string(p.Source())),
				zap.String("panic", fmt.Sprint(rec)),
			)
			token, ok = "", false
		}
	}()
	return p.Probe(ctx)
}

// Options configures the default probe chain.
type Options struct {
	Paths Paths
	// ManualToken is asked for the configured token on every resolve, so a
	// token saved while the process runs is used by the next refresh.
	ManualToken  func() string
	GHCommand    string
	ProbeTimeout time.Duration
}

// DefaultProbes builds the standard chain: gh CLI, gh hosts.yml, the three
// github-copilot files, then the manual token.
func DefaultProbes(opts Options) []Probe {
	gh := opts.GHCommand
	if gh == "" {
		gh = "gh"
	}
	fixed := func(path string) func() string {
		return func() string { return path }
	}
	return []Probe{
		NewCommandProbe(SourceGHCLI, opts.ProbeTimeout, gh, "auth", "token"),
		NewTextFileProbe(SourceGHHostsYAML, fixed(opts.Paths.GHHostsYAML), FromLegacyYAMLText),
		NewJSONFileProbe(SourceCopilotHosts, fixed(opts.Paths.CopilotHosts), FromHostsDocument),
		NewJSONFileProbe(SourceCopilotApps, fixed(opts.Paths.CopilotApps), FromAppsDocument),
		NewJSONFileProbe(SourceCopilotOAuth, fixed(opts.Paths.CopilotOAuth), FromOAuthDocument),
		NewValueProbe(SourceManual, opts.ManualToken),
	}
}
