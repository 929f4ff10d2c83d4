package diffusion

import "github.com/specialistvlad/proteindiff/internal/protein"

// Trajectory is a Result arranged for output.
type Trajectory struct {
	// Denoised and PX0 are in reverse generation order: element 0 is the
	// last step.
	Denoised []protein.Structure
	PX0      []protein.Structure
	// Confidence stays in generation order.
	Confidence    [][]float64
	FinalSequence []int
	Mask          []float64
}

// Final returns the most denoised structure.
func (t *Trajectory) Final() protein.Structure {
	if len(t.Denoised) == 0 {
		return nil
	}
	return t.Denoised[0]
}

// Assemble arranges a loop result. The final sequence and mask come from the
// initial sequence only.
func Assemble(res *Result, initial protein.Sequence) *Trajectory {
	return &Trajectory{
		Denoised:      Reverse(res.Denoised),
		PX0:           Reverse(res.PX0),
		Confidence:    res.Confidence,
		FinalSequence: FinalSequence(initial),
		Mask:          MotifMask(initial),
	}
}

// Reverse returns a new slice with the elements of s in reverse order.
func Reverse[T any](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// FinalSequence gives the placeholder identity to every diffused position and
// keeps the initial identity everywhere else.
func FinalSequence(initial protein.Sequence) []int {
	out := initial.Argmax()
	for i, c := range out {
		if c == protein.Diffused {
			out[i] = protein.Placeholder
		}
	}
	return out
}

// MotifMask is 0 at diffused positions and 1 at motif positions.
func MotifMask(initial protein.Sequence) []float64 {
	cats := initial.Argmax()
	mask := make([]float64, len(cats))
	for i, c := range cats {
		if c != protein.Diffused {
			mask[i] = 1
		}
	}
	return mask
}
