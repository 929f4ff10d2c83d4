package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/specialistvlad/proteindiff/internal/batch"
	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/specialistvlad/proteindiff/internal/determinism"
	"github.com/specialistvlad/proteindiff/internal/ledger"
	"github.com/specialistvlad/proteindiff/internal/output"
	"github.com/specialistvlad/proteindiff/internal/progress"
	"github.com/specialistvlad/proteindiff/internal/sampler"
)

// Run executes one batch of designs with the resolved configuration.
func (a *App) Run(ctx context.Context) (*batch.Summary, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	cfg := a.config
	runID := uuid.NewString()
	ctx, logger := ctxlog.With(ctx, "run_id", runID)
	logger.Debug("App.Run method started.")

	var src *determinism.Source
	if cfg.Inference.Deterministic {
		src = determinism.New(cfg.Inference.Seed)
	} else {
		src = determinism.NewFromClock()
	}

	s, err := a.registry.New(ctx, cfg.Sampler.Kind, sampler.Deps{Config: cfg, Source: src})
	if err != nil {
		return nil, err
	}
	if closer, ok := s.(io.Closer); ok {
		defer closer.Close()
	}
	logger.Info("Sampler ready.", "kind", cfg.Sampler.Kind, "device_name", cfg.Inference.DeviceName)

	store, err := ledger.NewStore(cfg.Ledger.Kind, cfg.Ledger.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer store.Close()

	reporters := progress.Multi{progress.LogReporter{}, a.tracker}
	if url := cfg.Progress.SocketIOURL; url != "" {
		feed, err := progress.DialSocketIO(ctx, url, cfg.Progress.Namespace)
		if err != nil {
			logger.Warn("Progress feed unavailable, continuing without it.", "error", err)
		} else {
			defer feed.Close()
			reporters = append(reporters, feed)
		}
	}

	a.startHealthcheckServer()
	defer a.closeHealthcheckServer()

	cfgMap, err := cfg.ToMap()
	if err != nil {
		return nil, fmt.Errorf("failed to render configuration: %w", err)
	}

	controller := &batch.Controller{
		Sampler: s,
		Writer: &output.Writer{
			WriteTrajectory: cfg.Inference.WriteTrajectory,
			Format:          cfg.Inference.TrbFormat,
			Compression:     cfg.Inference.TrajectoryCompression,
		},
		Seeds: &determinism.Controller{
			Source:  src,
			Enabled: cfg.Inference.Deterministic,
			Base:    cfg.Inference.Seed,
		},
		Ledger:    store,
		Reporter:  reporters,
		RunID:     runID,
		Prefix:    cfg.Inference.OutputPrefix,
		Start:     cfg.Inference.DesignStartnum,
		Count:     cfg.Inference.NumDesigns,
		Cautious:  cfg.Inference.Cautious,
		FinalStep: cfg.Inference.FinalStep,
		Device:    cfg.Inference.DeviceName,
		Config:    cfgMap,
	}

	logger.Info("🚀 Starting batch.", "designs", cfg.Inference.NumDesigns, "prefix", cfg.Inference.OutputPrefix)
	summary, err := controller.Run(ctx)
	if err != nil {
		return summary, fmt.Errorf("batch failed: %w", err)
	}
	logger.Info("🏁 Batch finished.", "completed", summary.Completed, "skipped", summary.Skipped)
	return summary, nil
}
