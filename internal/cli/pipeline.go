package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/tnunamak/copilotmeter/internal/api"
	"github.com/tnunamak/copilotmeter/internal/cache"
	"github.com/tnunamak/copilotmeter/internal/config"
	"github.com/tnunamak/copilotmeter/internal/credentials"
	"github.com/tnunamak/copilotmeter/internal/logger"
	"github.com/tnunamak/copilotmeter/internal/refresh"
)

// pipeline is the wired set of collaborators every command builds from the
// settings file.
type pipeline struct {
	path     string
	cfg      config.Config
	logger   *zap.Logger
	resolver *credentials.Resolver
	client   *api.Client
}

func (o *rootOptions) settingsPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.DefaultPath()
}

func newPipeline(opts *rootOptions) (*pipeline, error) {
	path := opts.settingsPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	clientOpts := []api.Option{api.WithTimeout(cfg.HTTPTimeout())}
	if cfg.APIURL != "" {
		clientOpts = append(clientOpts, api.WithURL(cfg.APIURL))
	}

	manual := config.TokenReader(path, cfg.Token, func(err error) {
		log.Warn("reload settings for token", zap.Error(err))
	})

	return &pipeline{
		path:     path,
		cfg:      cfg,
		logger:   log,
		resolver: credentials.NewResolver(credentials.DefaultProbes(cfg.ProbeOptions(manual))...),
		client:   api.NewClient(clientOpts...),
	}, nil
}

func (p *pipeline) refresher(sinks ...refresh.Sink) *refresh.Refresher {
	return refresh.New(p.resolver, p.client,
		refresh.WithSinks(sinks...),
		refresh.WithStore(cache.New(0)),
		refresh.WithLogger(p.logger),
	)
}

// watchSettings refreshes r whenever the settings file changes, until ctx
// ends. The refresh rereads the manual token.
func (p *pipeline) watchSettings(ctx context.Context, r *refresh.Refresher) {
	config.Watch(ctx, p.path, config.DefaultWatchInterval, func() {
		p.logger.Debug("settings changed", zap.String("path", p.path))
		r.Refresh(ctx)
	})
}

func (p *pipeline) context(parent context.Context) context.Context {
	return logger.ContextWithLogger(parent, p.logger)
}

func (p *pipeline) close() {
	_ = p.logger.Sync()
}
