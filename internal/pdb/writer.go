// Package pdb reads and writes the subset of the PDB format the sampler
// needs: fixed-column ATOM records, MODEL/ENDMDL framing for trajectories and
// a reader for motif residues.
package pdb

import (
	"bufio"
	"fmt"
	"io"

	"github.com/specialistvlad/proteindiff/internal/protein"
)

// Model is one frame to serialise.
type Model struct {
	Coords protein.Structure
	// Sequence holds the residue category per position.
	Sequence []int
	// Chains holds the chain letter per position; nil writes every residue
	// to chain A.
	Chains []string
	// BFactors holds one value per residue; nil writes zeros.
	BFactors []float64
}

func (m Model) validate() error {
	n := len(m.Coords)
	if len(m.Sequence) != n {
		return fmt.Errorf("sequence has %d residues, coordinates have %d", len(m.Sequence), n)
	}
	if m.Chains != nil && len(m.Chains) != n {
		return fmt.Errorf("chain index has %d entries, coordinates have %d", len(m.Chains), n)
	}
	if m.BFactors != nil && len(m.BFactors) != n {
		return fmt.Errorf("b-factors have %d entries, coordinates have %d", len(m.BFactors), n)
	}
	return nil
}

// Write serialises a single model followed by END.
func Write(w io.Writer, m Model) error {
	if err := m.validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	writeAtoms(bw, m)
	fmt.Fprintln(bw, "END")
	return bw.Flush()
}

// WriteModels serialises a multi-model file, one MODEL/ENDMDL block per frame.
func WriteModels(w io.Writer, models []Model) error {
	bw := bufio.NewWriter(w)
	for i, m := range models {
		if err := m.validate(); err != nil {
			return fmt.Errorf("model %d: %w", i+1, err)
		}
		fmt.Fprintf(bw, "MODEL     %4d\n", i+1)
		writeAtoms(bw, m)
		fmt.Fprintln(bw, "ENDMDL")
	}
	fmt.Fprintln(bw, "END")
	return bw.Flush()
}

func writeAtoms(w io.Writer, m Model) {
	serial := 1
	for i, atoms := range m.Coords {
		category := m.Sequence[i]
		names := protein.AtomNames(category)
		chain := "A"
		if m.Chains != nil {
			chain = m.Chains[i]
		}
		b := 0.0
		if m.BFactors != nil {
			b = m.BFactors[i]
		}

		for j, xyz := range atoms {
			if j >= len(names) || xyz.IsNaN() {
				continue
			}
			fmt.Fprintf(w, "%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
				"ATOM", serial%100000, atomField(names[j]), protein.ThreeLetter(category), chain, (i+1)%10000,
				xyz[0], xyz[1], xyz[2], 1.0, b, names[j][:1])
			serial++
		}
	}
}

// atomField aligns an atom name in its four columns: names shorter than four
// characters start in the second column.
func atomField(name string) string {
	if len(name) < 4 {
		return " " + name
	}
	return name
}
