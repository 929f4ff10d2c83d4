package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/proteindiff/internal/protein"
	"github.com/specialistvlad/proteindiff/internal/sampler"
)

// FakeSampler is a scripted sampler. Every structure it returns is filled
// with the timestep that produced it, so stacks can be checked for order.
type FakeSampler struct {
	Residues int
	// Categories is the initial sequence; nil means every residue is
	// diffused.
	Categories []int
	TInput     int
	Binder     int
	Chains     []string
	DeviceName string

	// FailAt makes Step fail at that timestep when non-nil.
	FailAt *int

	mu        sync.Mutex
	Inits     int
	Timesteps []int
}

var _ sampler.Sampler = (*FakeSampler)(nil)

// StructureAt returns the structure the fake produces for value v.
func (f *FakeSampler) StructureAt(v float64) protein.Structure {
	s := protein.NewStructure(f.Residues, protein.NumAtoms)
	for i := range s {
		for j := range s[i] {
			s[i][j] = protein.Vec3{v, v, v}
		}
	}
	return s
}

// Initialize implements sampler.Sampler.
func (f *FakeSampler) Initialize(ctx context.Context) (protein.Structure, protein.Sequence, error) {
	f.mu.Lock()
	f.Inits++
	f.mu.Unlock()

	cats := f.Categories
	if cats == nil {
		cats = make([]int, f.Residues)
		for i := range cats {
			cats[i] = protein.Diffused
		}
	}
	return f.StructureAt(-1), protein.OneHot(cats), nil
}

// Step implements sampler.Sampler.
func (f *FakeSampler) Step(ctx context.Context, t int, x protein.Structure, seq protein.Sequence, finalStep int) (sampler.StepOutput, error) {
	f.mu.Lock()
	f.Timesteps = append(f.Timesteps, t)
	f.mu.Unlock()

	if f.FailAt != nil && *f.FailAt == t {
		return sampler.StepOutput{}, fmt.Errorf("scripted failure at timestep %d", t)
	}

	conf := make([]float64, f.Residues)
	for i := range conf {
		conf[i] = float64(t)
	}
	// The sequence deliberately changes so callers can verify it is ignored.
	next := make([]int, f.Residues)
	for i := range next {
		next[i] = protein.TRP
	}
	return sampler.StepOutput{
		PX0:        f.StructureAt(float64(t) + 0.5),
		Next:       f.StructureAt(float64(t)),
		Seq:        protein.OneHot(next),
		Confidence: [][]float64{conf},
	}, nil
}

// Calls returns a copy of the timesteps Step has received.
func (f *FakeSampler) Calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.Timesteps...)
}

// Initializations returns how many designs were started.
func (f *FakeSampler) Initializations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Inits
}

// TimestepInput implements sampler.Sampler.
func (f *FakeSampler) TimestepInput() int { return f.TInput }

// BinderLength implements sampler.Sampler.
func (f *FakeSampler) BinderLength() int { return f.Binder }

// ChainIndex implements sampler.Sampler.
func (f *FakeSampler) ChainIndex() []string { return f.Chains }

// Device implements sampler.DeviceReporter.
func (f *FakeSampler) Device() string { return f.DeviceName }

// Mappings implements sampler.ContigMapper.
func (f *FakeSampler) Mappings() map[string]any {
	return map[string]any{"mask_1d": make([]bool, f.Residues)}
}
