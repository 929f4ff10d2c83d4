// Package sampler defines the contract between the diffusion loop and the
// model that denoises a structure one timestep at a time.
//
// Concrete samplers live in sub-packages and are made available to the
// application through a Registry, keyed by the `sampler.kind` setting.
package sampler

import (
	"context"

	"github.com/specialistvlad/proteindiff/internal/protein"
)

// Sampler produces the initial noised design and performs reverse steps.
type Sampler interface {
	// Initialize draws a fresh noised structure and its starting sequence.
	Initialize(ctx context.Context) (protein.Structure, protein.Sequence, error)
	// Step denoises x at timestep t.
	Step(ctx context.Context, t int, x protein.Structure, seq protein.Sequence, finalStep int) (StepOutput, error)
	// TimestepInput is the timestep the reverse process starts from.
	TimestepInput() int
	// BinderLength is the length of the first chain of a multi-chain
	// design, or 0.
	BinderLength() int
	// ChainIndex returns the chain letter per residue, or nil.
	ChainIndex() []string
}

// StepOutput is what one reverse step yields.
type StepOutput struct {
	// PX0 is the predicted clean structure.
	PX0 protein.Structure
	// Next is the structure at t-1.
	Next protein.Structure
	// Seq is the sequence at t-1.
	Seq protein.Sequence
	// Confidence carries a leading batch dimension of one.
	Confidence [][]float64
}

// ContigMapper is implemented by samplers that know how motif residues map
// between the reference structure and the design.
type ContigMapper interface {
	Mappings() map[string]any
}

// DeviceReporter is implemented by samplers that know where they compute.
type DeviceReporter interface {
	Device() string
}

// ResolveDevice returns the configured device name, or asks the sampler when
// the name is "auto". Samplers that cannot tell run on "cpu".
func ResolveDevice(configured string, s Sampler) string {
	if configured != "" && configured != "auto" {
		return configured
	}
	if dr, ok := s.(DeviceReporter); ok {
		if d := dr.Device(); d != "" {
			return d
		}
	}
	return "cpu"
}
