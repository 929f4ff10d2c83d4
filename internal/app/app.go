package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/proteindiff/internal/config"
	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/specialistvlad/proteindiff/internal/hcl"
	"github.com/specialistvlad/proteindiff/internal/progress"
	"github.com/specialistvlad/proteindiff/internal/sampler"
	"github.com/specialistvlad/proteindiff/internal/yamlconf"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	ctx      context.Context
	registry *sampler.Registry
	config   *config.Model
	tracker  *progress.Tracker

	httpServer *http.Server
}

// DefaultLoaders returns the profile formats the binary understands.
func DefaultLoaders() []config.Loader {
	return []config.Loader{hcl.NewLoader(), yamlconf.NewLoader()}
}

// NewApp is the constructor for the main application. It resolves the
// configuration profile, applies command line overrides and registers the
// samplers. Configuration problems are fatal and panic.
func NewApp(outW io.Writer, appConfig *Config, loaders []config.Loader, modules ...sampler.Module) *App {
	bootLogger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), bootLogger)

	resolver := &config.Resolver{
		SearchPaths: config.SearchPaths(appConfig.ConfigPath),
		Loaders:     loaders,
	}
	cfgModel, err := resolver.Resolve(ctx, appConfig.ConfigName)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	if err := appConfig.apply(cfgModel); err != nil {
		panic(fmt.Errorf("failed to apply overrides: %w", err))
	}
	if err := cfgModel.Validate(); err != nil {
		panic(err)
	}

	logger := newLogger(cfgModel.Logging.Level, cfgModel.Logging.Format, outW)
	ctx = ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Configuration resolved.", "profile", appConfig.ConfigName, "overrides", len(appConfig.Overrides))

	reg := sampler.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All samplers registered.", "kinds", reg.Kinds())

	return &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		registry: reg,
		config:   cfgModel,
		tracker:  progress.NewTracker(),
	}
}

// Config returns the resolved configuration. This is primarily for testing.
func (a *App) Config() *config.Model {
	return a.config
}

// Registry returns the application's sampler registry. This is primarily for
// testing.
func (a *App) Registry() *sampler.Registry {
	return a.registry
}
