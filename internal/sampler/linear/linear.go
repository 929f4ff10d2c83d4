// Package linear provides an in-process reference sampler. It does not run a
// learned model: the predicted clean structure is fixed when a design is
// initialised and every reverse step interpolates toward it with shrinking
// Gaussian noise. It exercises the whole pipeline without a GPU and gives
// reproducible trajectories under a fixed seed.
package linear

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/proteindiff/internal/config"
	"github.com/specialistvlad/proteindiff/internal/contig"
	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/specialistvlad/proteindiff/internal/determinism"
	"github.com/specialistvlad/proteindiff/internal/pdb"
	"github.com/specialistvlad/proteindiff/internal/protein"
	"github.com/specialistvlad/proteindiff/internal/sampler"
)

// Kind is the `sampler.kind` value selecting this sampler.
const Kind = "linear"

// initialSpread is the standard deviation, in Angstrom, of the noise added to
// diffused residues at the start of a full-length trajectory.
const initialSpread = 10.0

// risePerResidue is the CA-CA distance of an extended strand.
const risePerResidue = 3.8

// idealBackbone holds N, CA, C, O of a residue in its local frame.
var idealBackbone = [protein.BackboneAtoms]protein.Vec3{
	{-0.525, 1.363, 0},
	{0, 0, 0},
	{1.526, 0, 0},
	{2.153, -1.062, 0},
}

// ErrNotInitialized is returned by Step before Initialize has been called.
var ErrNotInitialized = errors.New("linear sampler: Initialize has not been called")

// Module registers the linear sampler.
type Module struct{}

// Register implements sampler.Module.
func (m *Module) Register(r *sampler.Registry) {
	r.Register(Kind, func(ctx context.Context, deps sampler.Deps) (sampler.Sampler, error) {
		return New(ctx, deps.Config, deps.Source)
	})
}

// Sampler is the linear interpolation sampler.
type Sampler struct {
	src        *determinism.Source
	T          int
	tInput     int
	noiseScale float64
	chains     [][]contig.Segment

	motif    map[contig.ResidueID]pdb.Residue
	refIndex map[contig.ResidueID]int

	layout *contig.Map
	px0    protein.Structure
}

// New builds a sampler from the contig list and, when the contigs name motif
// residues, the input structure.
func New(ctx context.Context, cfg *config.Model, src *determinism.Source) (*Sampler, error) {
	logger := ctxlog.FromContext(ctx)
	if src == nil {
		return nil, errors.New("linear sampler needs a random source")
	}

	chains, err := contig.Parse(cfg.ContigMap.Contigs)
	if err != nil {
		return nil, fmt.Errorf("invalid contigmap.contigs: %w", err)
	}

	s := &Sampler{
		src:        src,
		T:          cfg.Diffuser.T,
		tInput:     cfg.TimestepInput(),
		noiseScale: cfg.Sampler.NoiseScale,
		chains:     chains,
		motif:      map[contig.ResidueID]pdb.Residue{},
		refIndex:   map[contig.ResidueID]int{},
	}

	if !hasMotif(chains) {
		logger.Debug("Contigs have no motif segments, input structure not read.")
		return s, nil
	}
	if cfg.Inference.InputPDB == "" {
		return nil, errors.New("contigs reference motif residues but inference.input_pdb is not set")
	}
	residues, err := pdb.ReadFile(cfg.Inference.InputPDB)
	if err != nil {
		return nil, err
	}
	for i, r := range residues {
		id := contig.ResidueID{Chain: r.Chain, Num: r.Num}
		s.refIndex[id] = i
		s.motif[id] = r
	}
	for _, segs := range chains {
		for _, seg := range segs {
			if !seg.Motif {
				continue
			}
			for num := seg.Start; num <= seg.End; num++ {
				if _, ok := s.motif[contig.ResidueID{Chain: seg.Chain, Num: num}]; !ok {
					return nil, fmt.Errorf("motif residue %s%d not found in %s", seg.Chain, num, cfg.Inference.InputPDB)
				}
			}
		}
	}
	logger.Debug("Motif residues loaded.", "path", cfg.Inference.InputPDB, "residues", len(residues))
	return s, nil
}

func hasMotif(chains [][]contig.Segment) bool {
	for _, segs := range chains {
		for _, seg := range segs {
			if seg.Motif {
				return true
			}
		}
	}
	return false
}

// Initialize samples the segment lengths, fixes the target structure and
// returns it with noise applied to the diffused residues.
func (s *Sampler) Initialize(ctx context.Context) (protein.Structure, protein.Sequence, error) {
	layout, err := contig.Sample(s.chains, s.src.Rand())
	if err != nil {
		return nil, nil, err
	}
	s.layout = layout

	n := layout.Len()
	px0 := make(protein.Structure, n)
	categories := make([]int, n)
	for i, r := range layout.Residues {
		if r.Motif {
			ref := s.motif[r.Ref]
			px0[i] = ref.Coords()
			categories[i] = ref.Category()
			continue
		}
		px0[i] = extendedResidue(i)
		categories[i] = protein.Diffused
	}
	s.px0 = px0

	spread := initialSpread * s.noiseScale * math.Sqrt(float64(s.tInput)/float64(s.T))
	x := px0.Clone()
	for i, r := range layout.Residues {
		if r.Motif {
			continue
		}
		s.perturb(x[i], spread)
	}

	ctxlog.FromContext(ctx).Debug("Design initialised.", "residues", n, "sampled", layout.Sampled)
	return x, protein.OneHot(categories), nil
}

// Step moves x a 1/(t-final+1) fraction of the way to the target and adds
// noise that vanishes at the final step.
func (s *Sampler) Step(ctx context.Context, t int, x protein.Structure, seq protein.Sequence, finalStep int) (sampler.StepOutput, error) {
	if s.layout == nil {
		return sampler.StepOutput{}, ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return sampler.StepOutput{}, err
	}
	if len(x) != len(s.px0) {
		return sampler.StepOutput{}, fmt.Errorf("structure has %d residues, design has %d", len(x), len(s.px0))
	}
	if t < finalStep {
		return sampler.StepOutput{}, fmt.Errorf("timestep %d is below the final step %d", t, finalStep)
	}

	remaining := t - finalStep
	frac := 1 / float64(remaining+1)
	sigma := s.noiseScale * math.Sqrt(float64(remaining)/float64(s.T))

	next := make(protein.Structure, len(x))
	confidence := make([]float64, len(x))
	span := float64(s.tInput - finalStep + 1)
	for i, r := range s.layout.Residues {
		if r.Motif {
			next[i] = append([]protein.Vec3(nil), s.px0[i]...)
			confidence[i] = 1
			continue
		}
		next[i] = make([]protein.Vec3, len(x[i]))
		for j, cur := range x[i] {
			target := s.px0[i][j]
			if target.IsNaN() {
				next[i][j] = target
				continue
			}
			next[i][j] = cur.Add(target.Sub(cur).Scale(frac))
		}
		if sigma > 0 {
			s.perturb(next[i], sigma)
		}
		confidence[i] = math.Max(0, 1-float64(remaining)/span)
	}

	return sampler.StepOutput{
		PX0:        s.px0.Clone(),
		Next:       next,
		Seq:        seq.Clone(),
		Confidence: [][]float64{confidence},
	}, nil
}

func (s *Sampler) perturb(atoms []protein.Vec3, sigma float64) {
	rng := s.src.Rand()
	for j := range atoms {
		if atoms[j].IsNaN() {
			continue
		}
		noise := protein.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		atoms[j] = atoms[j].Add(noise.Scale(sigma))
	}
}

func extendedResidue(i int) []protein.Vec3 {
	nan := math.NaN()
	atoms := make([]protein.Vec3, protein.NumAtoms)
	flip := 1.0
	if i%2 == 1 {
		flip = -1
	}
	for j := range atoms {
		if j >= protein.BackboneAtoms {
			atoms[j] = protein.Vec3{nan, nan, nan}
			continue
		}
		a := idealBackbone[j]
		atoms[j] = protein.Vec3{a[0] + risePerResidue*float64(i), flip * a[1], a[2]}
	}
	return atoms
}

// TimestepInput implements sampler.Sampler.
func (s *Sampler) TimestepInput() int { return s.tInput }

// BinderLength implements sampler.Sampler.
func (s *Sampler) BinderLength() int {
	if s.layout == nil {
		return 0
	}
	return s.layout.BinderLength()
}

// ChainIndex implements sampler.Sampler.
func (s *Sampler) ChainIndex() []string {
	if s.layout == nil {
		return nil
	}
	return s.layout.ChainIndex()
}

// Device implements sampler.DeviceReporter.
func (s *Sampler) Device() string { return "cpu" }

// Mappings implements sampler.ContigMapper.
func (s *Sampler) Mappings() map[string]any {
	if s.layout == nil {
		return nil
	}
	return s.layout.Mappings(s.refIndex)
}
