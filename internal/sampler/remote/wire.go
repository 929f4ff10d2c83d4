package remote

import (
	"math"

	"github.com/specialistvlad/proteindiff/internal/protein"
)

// wireStructure is a Structure as JSON can carry it: a nil atom is a missing
// one.
type wireStructure [][]*protein.Vec3

func encode(s protein.Structure) wireStructure {
	out := make(wireStructure, len(s))
	for i, res := range s {
		out[i] = make([]*protein.Vec3, len(res))
		for j, xyz := range res {
			if xyz.IsNaN() {
				continue
			}
			v := xyz
			out[i][j] = &v
		}
	}
	return out
}

func (w wireStructure) decode() protein.Structure {
	if w == nil {
		return nil
	}
	nan := math.NaN()
	out := make(protein.Structure, len(w))
	for i, res := range w {
		out[i] = make([]protein.Vec3, len(res))
		for j, xyz := range res {
			if xyz == nil {
				out[i][j] = protein.Vec3{nan, nan, nan}
				continue
			}
			out[i][j] = *xyz
		}
	}
	return out
}
