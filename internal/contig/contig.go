// Package contig parses contig strings and lays out the residues of a design.
//
// A contig list has one entry per chain. Each entry is a `/`-separated list of
// segments:
//
//	"40-60"             a diffused segment whose length is drawn from [40, 60]
//	"12"                a diffused segment of exactly 12 residues
//	"A163-181"          residues 163..181 of chain A of the input structure
//	"B7"                a single motif residue
//
// Chains of the design are lettered A, B, ... in list order.
package contig

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Segment is one piece of a chain. Motif segments copy Start..End from the
// reference chain; diffused segments get a length in [Start, End].
type Segment struct {
	Motif bool
	Chain string
	Start int
	End   int
}

func (s Segment) String() string {
	if s.Motif {
		if s.Start == s.End {
			return fmt.Sprintf("%s%d", s.Chain, s.Start)
		}
		return fmt.Sprintf("%s%d-%d", s.Chain, s.Start, s.End)
	}
	if s.Start == s.End {
		return strconv.Itoa(s.Start)
	}
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Parse splits every chain entry into segments.
func Parse(contigs []string) ([][]Segment, error) {
	if len(contigs) == 0 {
		return nil, fmt.Errorf("no contigs given")
	}
	chains := make([][]Segment, 0, len(contigs))
	for i, entry := range contigs {
		var segs []Segment
		for _, raw := range strings.Split(entry, "/") {
			seg, err := parseSegment(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("chain %d (%q): %w", i, entry, err)
			}
			segs = append(segs, seg)
		}
		chains = append(chains, segs)
	}
	return chains, nil
}

func parseSegment(raw string) (Segment, error) {
	if raw == "" {
		return Segment{}, fmt.Errorf("empty segment")
	}

	seg := Segment{}
	body := raw
	if c := raw[0]; c >= 'A' && c <= 'Z' {
		seg.Motif = true
		seg.Chain = raw[:1]
		body = raw[1:]
	}

	lo, hi, isRange := strings.Cut(body, "-")
	start, err := strconv.Atoi(lo)
	if err != nil {
		return Segment{}, fmt.Errorf("invalid segment %q", raw)
	}
	end := start
	if isRange {
		if end, err = strconv.Atoi(hi); err != nil {
			return Segment{}, fmt.Errorf("invalid segment %q", raw)
		}
	}
	if start < 0 || end < start {
		return Segment{}, fmt.Errorf("invalid range in segment %q", raw)
	}
	if seg.Motif && start == 0 {
		return Segment{}, fmt.Errorf("motif residue numbers start at 1 in %q", raw)
	}
	seg.Start, seg.End = start, end
	return seg, nil
}

// ResidueID names a residue of a structure file by chain and residue number.
type ResidueID struct {
	Chain string
	Num   int
}

// Residue is one position of a sampled design.
type Residue struct {
	// Chain is the letter of the design chain holding this residue.
	Chain string
	Motif bool
	// Ref is the reference residue a motif position is copied from.
	Ref ResidueID
}

// Map is a contig list with every diffused length fixed.
type Map struct {
	Residues []Residue
	// Sampled holds one entry per chain with the lengths that were drawn,
	// e.g. "15/A163-181/22".
	Sampled []string
	lengths []int
}

// Sample draws a length for every diffused segment.
func Sample(chains [][]Segment, r *rand.Rand) (*Map, error) {
	if len(chains) > 26 {
		return nil, fmt.Errorf("too many chains: %d", len(chains))
	}
	m := &Map{}
	for i, segs := range chains {
		letter := string(rune('A' + i))
		var parts []string
		n := 0
		for _, seg := range segs {
			if seg.Motif {
				for num := seg.Start; num <= seg.End; num++ {
					m.Residues = append(m.Residues, Residue{
						Chain: letter,
						Motif: true,
						Ref:   ResidueID{Chain: seg.Chain, Num: num},
					})
				}
				n += seg.End - seg.Start + 1
				parts = append(parts, seg.String())
				continue
			}

			length := seg.Start + r.IntN(seg.End-seg.Start+1)
			for range length {
				m.Residues = append(m.Residues, Residue{Chain: letter})
			}
			n += length
			parts = append(parts, strconv.Itoa(length))
		}
		if n == 0 {
			return nil, fmt.Errorf("chain %s has no residues", letter)
		}
		m.lengths = append(m.lengths, n)
		m.Sampled = append(m.Sampled, strings.Join(parts, "/"))
	}
	return m, nil
}

// Len is the number of residues in the design.
func (m *Map) Len() int { return len(m.Residues) }

// ChainIndex returns the design chain letter of every residue.
func (m *Map) ChainIndex() []string {
	out := make([]string, len(m.Residues))
	for i, r := range m.Residues {
		out[i] = r.Chain
	}
	return out
}

// BinderLength is the length of the first chain when the design has more than
// one chain, and 0 otherwise.
func (m *Map) BinderLength() int {
	if len(m.lengths) < 2 {
		return 0
	}
	return m.lengths[0]
}

// MotifRefs lists the reference residues in design order.
func (m *Map) MotifRefs() []ResidueID {
	var out []ResidueID
	for _, r := range m.Residues {
		if r.Motif {
			out = append(out, r.Ref)
		}
	}
	return out
}

// Mask1D reports which design positions are motif residues.
func (m *Map) Mask1D() []bool {
	out := make([]bool, len(m.Residues))
	for i, r := range m.Residues {
		out[i] = r.Motif
	}
	return out
}

// Mappings returns the motif correspondence tables stored in the metadata
// record. refIndex gives the 0-based position of a residue in the reference
// structure; motif residues missing from it are reported as -1.
func (m *Map) Mappings(refIndex map[ResidueID]int) map[string]any {
	var (
		conRef = [][2]any{}
		conHal = [][2]any{}
		refIdx = []int{}
		halIdx = []int{}
	)
	for i, r := range m.Residues {
		if !r.Motif {
			continue
		}
		conRef = append(conRef, [2]any{r.Ref.Chain, r.Ref.Num})
		conHal = append(conHal, [2]any{r.Chain, i + 1})
		idx, ok := refIndex[r.Ref]
		if !ok {
			idx = -1
		}
		refIdx = append(refIdx, idx)
		halIdx = append(halIdx, i)
	}
	return map[string]any{
		"con_ref_pdb_idx": conRef,
		"con_hal_pdb_idx": conHal,
		"ref_idx0":        refIdx,
		"hal_idx0":        halIdx,
		"sampled_mask":    m.Sampled,
		"mask_1d":         m.Mask1D(),
	}
}
