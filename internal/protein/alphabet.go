package protein

import "strings"

// Residue categories in model order. UNK and MAS close the alphabet.
const (
	ALA = iota
	ARG
	ASN
	ASP
	CYS
	GLN
	GLU
	GLY
	HIS
	ILE
	LEU
	LYS
	MET
	PHE
	PRO
	SER
	THR
	TRP
	TYR
	VAL
	UNK
	MAS

	NumCategories
)

// Diffused is the reserved category marking positions the model generates.
const Diffused = MAS

// Placeholder is the identity written for diffused positions.
const Placeholder = GLY

// BackboneAtoms is the number of leading atoms forming N, CA, C, O.
const BackboneAtoms = 4

// NumAtoms is the width of the heavy-atom representation.
const NumAtoms = 14

var threeLetter = [NumCategories]string{
	"ALA", "ARG", "ASN", "ASP", "CYS", "GLN", "GLU", "GLY", "HIS", "ILE",
	"LEU", "LYS", "MET", "PHE", "PRO", "SER", "THR", "TRP", "TYR", "VAL",
	"UNK", "MAS",
}

// heavyAtoms lists atom names per category in the 14-atom layout.
var heavyAtoms = [NumCategories][]string{
	{"N", "CA", "C", "O", "CB"},
	{"N", "CA", "C", "O", "CB", "CG", "CD", "NE", "CZ", "NH1", "NH2"},
	{"N", "CA", "C", "O", "CB", "CG", "OD1", "ND2"},
	{"N", "CA", "C", "O", "CB", "CG", "OD1", "OD2"},
	{"N", "CA", "C", "O", "CB", "SG"},
	{"N", "CA", "C", "O", "CB", "CG", "CD", "OE1", "NE2"},
	{"N", "CA", "C", "O", "CB", "CG", "CD", "OE1", "OE2"},
	{"N", "CA", "C", "O"},
	{"N", "CA", "C", "O", "CB", "CG", "ND1", "CD2", "CE1", "NE2"},
	{"N", "CA", "C", "O", "CB", "CG1", "CG2", "CD1"},
	{"N", "CA", "C", "O", "CB", "CG", "CD1", "CD2"},
	{"N", "CA", "C", "O", "CB", "CG", "CD", "CE", "NZ"},
	{"N", "CA", "C", "O", "CB", "CG", "SD", "CE"},
	{"N", "CA", "C", "O", "CB", "CG", "CD1", "CD2", "CE1", "CE2", "CZ"},
	{"N", "CA", "C", "O", "CB", "CG", "CD"},
	{"N", "CA", "C", "O", "CB", "OG"},
	{"N", "CA", "C", "O", "CB", "OG1", "CG2"},
	{"N", "CA", "C", "O", "CB", "CG", "CD1", "CD2", "NE1", "CE2", "CE3", "CZ2", "CZ3", "CH2"},
	{"N", "CA", "C", "O", "CB", "CG", "CD1", "CD2", "CE1", "CE2", "CZ", "OH"},
	{"N", "CA", "C", "O", "CB", "CG1", "CG2"},
	{"N", "CA", "C", "O", "CB"},
	{"N", "CA", "C", "O", "CB"},
}

// ThreeLetter returns the residue name for a category, UNK when out of range.
func ThreeLetter(category int) string {
	if category < 0 || category >= NumCategories {
		return threeLetter[UNK]
	}
	return threeLetter[category]
}

// FromThreeLetter maps a residue name to its category, UNK when unknown.
func FromThreeLetter(name string) int {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range threeLetter {
		if n == name {
			return i
		}
	}
	return UNK
}

// AtomNames returns the heavy-atom names for a category.
func AtomNames(category int) []string {
	if category < 0 || category >= NumCategories {
		return heavyAtoms[UNK]
	}
	return heavyAtoms[category]
}

// AtomIndex returns the slot of an atom name for a category, or -1.
func AtomIndex(category int, atom string) int {
	for i, n := range AtomNames(category) {
		if n == atom {
			return i
		}
	}
	return -1
}
