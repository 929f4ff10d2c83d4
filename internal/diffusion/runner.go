package diffusion

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/specialistvlad/proteindiff/internal/protein"
	"github.com/specialistvlad/proteindiff/internal/sampler"
)

// ErrInvalidSchedule is returned when the final step lies above the start.
var ErrInvalidSchedule = errors.New("final step must not exceed the initial timestep")

// StepError reports the timestep at which the sampler failed.
type StepError struct {
	Timestep int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("sampler failed at timestep %d: %v", e.Timestep, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// StepRecord describes a completed step for observers.
type StepRecord struct {
	Timestep   int
	Index      int
	Total      int
	Confidence []float64
}

// Result holds the per-step tensors of one design in generation order.
type Result struct {
	Timesteps  []int
	PX0        []protein.Structure
	Denoised   []protein.Structure
	Sequences  []protein.Sequence
	Confidence [][]float64
}

// Len returns the number of steps recorded.
func (r *Result) Len() int { return len(r.Timesteps) }

// Runner drives the timestep loop of one design.
type Runner struct {
	Sampler   sampler.Sampler
	TInitial  int
	FinalStep int
	// OnStep, when set, is called after every step.
	OnStep func(StepRecord)
}

// Steps returns how many steps Run will take.
func (r *Runner) Steps() int {
	return r.TInitial - r.FinalStep + 1
}

// Run steps x and seq from TInitial down to FinalStep inclusive. Any sampler
// failure discards everything collected so far.
func (r *Runner) Run(ctx context.Context, x protein.Structure, seq protein.Sequence) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if r.FinalStep > r.TInitial {
		return nil, fmt.Errorf("%w: final step %d, initial timestep %d", ErrInvalidSchedule, r.FinalStep, r.TInitial)
	}

	total := r.Steps()
	res := &Result{
		Timesteps:  make([]int, 0, total),
		PX0:        make([]protein.Structure, 0, total),
		Denoised:   make([]protein.Structure, 0, total),
		Sequences:  make([]protein.Sequence, 0, total),
		Confidence: make([][]float64, 0, total),
	}

	logger.Debug("Diffusion loop started.", "t_initial", r.TInitial, "final_step", r.FinalStep, "steps", total)
	for t := r.TInitial; t >= r.FinalStep; t-- {
		out, err := r.Sampler.Step(ctx, t, x, seq, r.FinalStep)
		if err != nil {
			return nil, &StepError{Timestep: t, Err: err}
		}
		conf, err := squeeze(out.Confidence)
		if err != nil {
			return nil, &StepError{Timestep: t, Err: err}
		}

		res.Timesteps = append(res.Timesteps, t)
		res.PX0 = append(res.PX0, out.PX0.Clone())
		res.Denoised = append(res.Denoised, out.Next.Clone())
		res.Sequences = append(res.Sequences, out.Seq.Clone())
		res.Confidence = append(res.Confidence, conf)

		x, seq = out.Next, out.Seq
		if r.OnStep != nil {
			r.OnStep(StepRecord{Timestep: t, Index: res.Len() - 1, Total: total, Confidence: conf})
		}
	}

	r.checkSchedule(res.Timesteps)
	logger.Debug("Diffusion loop finished.", "steps", res.Len())
	return res, nil
}

// checkSchedule panics if the recorded timesteps are not the contiguous
// descending run from TInitial to FinalStep.
func (r *Runner) checkSchedule(ts []int) {
	if len(ts) != r.Steps() {
		panic(fmt.Sprintf("diffusion: recorded %d steps, expected %d", len(ts), r.Steps()))
	}
	for i, t := range ts {
		if t != r.TInitial-i {
			panic(fmt.Sprintf("diffusion: step %d ran timestep %d, expected %d", i, t, r.TInitial-i))
		}
	}
}

// squeeze drops the leading batch dimension of a confidence tensor.
func squeeze(conf [][]float64) ([]float64, error) {
	if len(conf) == 0 {
		return nil, errors.New("sampler returned an empty confidence tensor")
	}
	return append([]float64(nil), conf[0]...), nil
}
