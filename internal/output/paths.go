// Package output writes the artifacts of a finished design: the final
// structure, its metadata record and, optionally, the two trajectories.
package output

import (
	"fmt"
	"path/filepath"
)

// DesignPrefix is the path stem shared by every artifact of design i.
func DesignPrefix(prefix string, i int) string {
	return fmt.Sprintf("%s_%05d", prefix, i)
}

// StructurePath is the primary artifact; its presence marks a design done.
func StructurePath(designPrefix string) string {
	return designPrefix + ".pdb"
}

// MetadataPath is the metadata record written next to the structure.
func MetadataPath(designPrefix string) string {
	return designPrefix + ".trb"
}

// TrajectoryPaths returns the denoised (Xt-1) and predicted-clean (pX0)
// trajectory paths under the traj/ directory beside the design.
func TrajectoryPaths(designPrefix string) (denoised, px0 string) {
	dir := filepath.Join(filepath.Dir(designPrefix), "traj")
	base := filepath.Base(designPrefix)
	return filepath.Join(dir, base+"_Xt-1_traj.pdb"), filepath.Join(dir, base+"_pX0_traj.pdb")
}

// ChainIDs returns the chain letter of every residue. Without a chain index
// the first binderLen residues go to chain A and the rest to chain B.
func ChainIDs(chainIndex []string, binderLen, n int) []string {
	if len(chainIndex) == n {
		return chainIndex
	}
	out := make([]string, n)
	for i := range out {
		if binderLen > 0 && i >= binderLen {
			out[i] = "B"
		} else {
			out[i] = "A"
		}
	}
	return out
}
