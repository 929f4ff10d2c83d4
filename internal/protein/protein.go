// Package protein defines the tensor shapes exchanged between the sampler,
// the diffusion loop and the structure writers, together with the residue
// alphabet and heavy-atom naming tables.
package protein

import "math"

// Vec3 is a single cartesian coordinate in Angstrom.
type Vec3 [3]float64

// Structure is a residues × atoms × 3 coordinate tensor.
type Structure [][]Vec3

// Sequence is a residues × NumCategories categorical tensor, one-hot or soft.
type Sequence [][]float64

// NewStructure allocates a structure of the given shape filled with zeros.
func NewStructure(residues, atoms int) Structure {
	s := make(Structure, residues)
	for i := range s {
		s[i] = make([]Vec3, atoms)
	}
	return s
}

// Len returns the number of residues.
func (s Structure) Len() int { return len(s) }

// Clone returns a deep copy that shares no backing arrays with s.
func (s Structure) Clone() Structure {
	if s == nil {
		return nil
	}
	out := make(Structure, len(s))
	for i, res := range s {
		out[i] = append([]Vec3(nil), res...)
	}
	return out
}

// Backbone returns a copy restricted to the first n atoms of every residue.
func (s Structure) Backbone(n int) Structure {
	out := make(Structure, len(s))
	for i, res := range s {
		k := n
		if k > len(res) {
			k = len(res)
		}
		out[i] = append([]Vec3(nil), res[:k]...)
	}
	return out
}

// OneHot builds a one-hot sequence from per-residue category indices.
func OneHot(categories []int) Sequence {
	seq := make(Sequence, len(categories))
	for i, c := range categories {
		row := make([]float64, NumCategories)
		if c >= 0 && c < NumCategories {
			row[c] = 1
		}
		seq[i] = row
	}
	return seq
}

// Len returns the number of residues.
func (s Sequence) Len() int { return len(s) }

// Clone returns a deep copy that shares no backing arrays with s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	for i, row := range s {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Argmax returns the highest-scoring category per residue. Ties resolve to
// the lowest index and an empty row yields -1.
func (s Sequence) Argmax() []int {
	out := make([]int, len(s))
	for i, row := range s {
		best, bestVal := -1, math.Inf(-1)
		for c, v := range row {
			if v > bestVal {
				best, bestVal = c, v
			}
		}
		out[i] = best
	}
	return out
}

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

// Scale returns a * k.
func (a Vec3) Scale(k float64) Vec3 { return Vec3{a[0] * k, a[1] * k, a[2] * k} }

// IsNaN reports whether any component is NaN.
func (a Vec3) IsNaN() bool {
	return math.IsNaN(a[0]) || math.IsNaN(a[1]) || math.IsNaN(a[2])
}
