package pdb

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/specialistvlad/proteindiff/internal/protein"
)

// Residue is one residue read from a structure file.
type Residue struct {
	Chain string
	Num   int
	Name  string
	Atoms map[string]protein.Vec3
}

// Category returns the alphabet category of the residue name.
func (r Residue) Category() int {
	return protein.FromThreeLetter(r.Name)
}

// Coords lays the residue's atoms out in the heavy-atom order of its
// category. Atoms absent from the file are NaN.
func (r Residue) Coords() []protein.Vec3 {
	out := make([]protein.Vec3, protein.NumAtoms)
	nan := math.NaN()
	for i := range out {
		out[i] = protein.Vec3{nan, nan, nan}
	}
	for i, name := range protein.AtomNames(r.Category()) {
		if xyz, ok := r.Atoms[name]; ok {
			out[i] = xyz
		}
	}
	return out
}

// ReadFile reads the residues of the first model in a PDB file.
func ReadFile(path string) ([]Residue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	residues, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return residues, nil
}

// Read parses ATOM records of the first model, in file order. Alternate
// locations other than the first are dropped.
func Read(r io.Reader) ([]Residue, error) {
	var (
		residues []Residue
		current  *Residue
	)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.HasPrefix(text, "ENDMDL") {
			break
		}
		if !strings.HasPrefix(text, "ATOM  ") {
			continue
		}
		if len(text) < 54 {
			return nil, fmt.Errorf("line %d: truncated ATOM record", line)
		}
		if alt := text[16]; alt != ' ' && alt != 'A' {
			continue
		}

		name := strings.TrimSpace(text[12:16])
		resName := strings.TrimSpace(text[17:20])
		chain := strings.TrimSpace(text[21:22])
		num, err := strconv.Atoi(strings.TrimSpace(text[22:26]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid residue number: %w", line, err)
		}
		var xyz protein.Vec3
		for k := range 3 {
			field := strings.TrimSpace(text[30+8*k : 38+8*k])
			if xyz[k], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("line %d: invalid coordinate: %w", line, err)
			}
		}

		if current == nil || current.Chain != chain || current.Num != num {
			residues = append(residues, Residue{Chain: chain, Num: num, Name: resName, Atoms: map[string]protein.Vec3{}})
			current = &residues[len(residues)-1]
		}
		current.Atoms[name] = xyz
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return residues, nil
}
