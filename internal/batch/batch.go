// Package batch runs a contiguous range of designs, one after the other,
// skipping designs whose structure file already exists.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/specialistvlad/proteindiff/internal/determinism"
	"github.com/specialistvlad/proteindiff/internal/diffusion"
	"github.com/specialistvlad/proteindiff/internal/fsutil"
	"github.com/specialistvlad/proteindiff/internal/ledger"
	"github.com/specialistvlad/proteindiff/internal/output"
	"github.com/specialistvlad/proteindiff/internal/progress"
	"github.com/specialistvlad/proteindiff/internal/resume"
	"github.com/specialistvlad/proteindiff/internal/sampler"
)

// DesignError wraps the failure that aborted the batch at a design.
type DesignError struct {
	Index int
	Err   error
}

func (e *DesignError) Error() string {
	return fmt.Sprintf("design %d failed: %v", e.Index, e.Err)
}

func (e *DesignError) Unwrap() error { return e.Err }

// ArtifactWriter persists a finished design.
type ArtifactWriter interface {
	Write(ctx context.Context, d output.Design) (*output.Artifacts, error)
}

// Summary describes what a batch did.
type Summary struct {
	RunID     string
	Start     int
	Count     int
	Completed int
	Skipped   int
	Entries   []ledger.Entry
}

// Controller runs designs [start, start+Count).
type Controller struct {
	Sampler  sampler.Sampler
	Writer   ArtifactWriter
	Seeds    *determinism.Controller
	Ledger   ledger.Store
	Reporter progress.Reporter

	RunID  string
	Prefix string
	// Start is the first design index, or resume.AutoStart.
	Start     int
	Count     int
	Cautious  bool
	FinalStep int
	// Device is the configured device name; "auto" asks the sampler.
	Device string
	// Config is the resolved configuration stored in every metadata record.
	Config map[string]any
}

// Run processes the batch. Cancellation is checked before each design; a
// design that has started always runs to completion or failure. The first
// failing design aborts the batch; designs already written stay on disk.
func (c *Controller) Run(ctx context.Context) (*Summary, error) {
	logger := ctxlog.FromContext(ctx)

	start, err := resume.ResolveStart(c.Start, c.Prefix)
	if err != nil {
		return nil, err
	}
	if c.Start == resume.AutoStart {
		logger.Info("Resuming from existing designs.", "start", start)
	}

	summary := &Summary{RunID: c.RunID, Start: start, Count: c.Count}
	c.Seeds.SeedGlobal(ctx)

	var runErr error
	for i := start; i < start+c.Count; i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("Batch interrupted before design.", "design", i, "error", err)
			runErr = err
			break
		}
		if err := c.runDesign(ctx, i); err != nil {
			runErr = &DesignError{Index: i, Err: err}
			break
		}
	}

	entries, err := c.Ledger.List(ctx, c.RunID)
	if err != nil {
		return summary, errors.Join(runErr, fmt.Errorf("failed to read ledger: %w", err))
	}
	counts := ledger.Count(entries)
	summary.Entries = entries
	summary.Completed = counts[ledger.StatusCompleted]
	summary.Skipped = counts[ledger.StatusSkipped]
	return summary, runErr
}

func (c *Controller) runDesign(ctx context.Context, i int) error {
	ctx, logger := ctxlog.With(ctx, "design", i)
	c.Seeds.SeedDesign(ctx, i)
	seed := c.Seeds.Source.Current()

	prefix := output.DesignPrefix(c.Prefix, i)
	path := output.StructurePath(prefix)
	if c.Cautious {
		exists, err := fsutil.Exists(path)
		if err != nil {
			return err
		}
		if exists {
			logger.Info("Skipping design, output exists.", "path", path)
			if err := c.record(ctx, i, ledger.StatusSkipped, path, seed, 0); err != nil {
				return err
			}
			c.Reporter.Report(ctx, progress.Event{Kind: progress.DesignSkipped, RunID: c.RunID, DesignIndex: i, Path: path})
			return nil
		}
	}

	// A started design is never interrupted; cancellation is seen before the
	// next one.
	ctx = context.WithoutCancel(ctx)
	logger.Info("Making design.", "prefix", prefix)
	started := time.Now()

	x, seq, err := c.Sampler.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize design: %w", err)
	}
	// Remote samplers only learn their device from the first response.
	device := sampler.ResolveDevice(c.Device, c.Sampler)
	logger.Debug("Sampler initialized.", "residues", len(x), "device", device)

	runner := &diffusion.Runner{
		Sampler:   c.Sampler,
		TInitial:  c.Sampler.TimestepInput(),
		FinalStep: c.FinalStep,
		OnStep: func(r diffusion.StepRecord) {
			c.Reporter.Report(ctx, progress.Event{
				Kind:        progress.StepCompleted,
				RunID:       c.RunID,
				DesignIndex: i,
				Timestep:    r.Timestep,
				Step:        r.Index,
				Steps:       r.Total,
			})
		},
	}
	c.Reporter.Report(ctx, progress.Event{Kind: progress.DesignStarted, RunID: c.RunID, DesignIndex: i, Steps: runner.Steps()})

	res, err := runner.Run(ctx, x, seq)
	if err != nil {
		return err
	}
	traj := diffusion.Assemble(res, seq)
	elapsed := time.Since(started).Seconds()

	var mappings map[string]any
	if cm, ok := c.Sampler.(sampler.ContigMapper); ok {
		mappings = cm.Mappings()
	}
	arts, err := c.Writer.Write(ctx, output.Design{
		Prefix:       prefix,
		Trajectory:   traj,
		ChainIndex:   c.Sampler.ChainIndex(),
		BinderLength: c.Sampler.BinderLength(),
		Metadata: output.Metadata{
			Config:      c.Config,
			PLDDT:       traj.Confidence,
			Device:      device,
			Seconds:     elapsed,
			RunID:       c.RunID,
			DesignIndex: i,
			Seed:        seed,
			Mappings:    mappings,
		},
	})
	if err != nil {
		return err
	}

	if err := c.record(ctx, i, ledger.StatusCompleted, arts.Structure, seed, elapsed); err != nil {
		return err
	}
	c.Reporter.Report(ctx, progress.Event{Kind: progress.DesignFinished, RunID: c.RunID, DesignIndex: i, Path: arts.Structure, Seconds: elapsed})
	logger.Info("Finished design.", "seconds", fmt.Sprintf("%.2f", elapsed), "steps", res.Len())
	return nil
}

func (c *Controller) record(ctx context.Context, i int, status ledger.Status, path string, seed int64, seconds float64) error {
	err := c.Ledger.Record(ctx, ledger.Entry{
		RunID:       c.RunID,
		DesignIndex: i,
		Status:      status,
		Path:        path,
		Seed:        seed,
		Seconds:     seconds,
		RecordedAt:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to record design in ledger: %w", err)
	}
	return nil
}
