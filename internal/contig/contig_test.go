package contig

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	chains, err := Parse([]string{"10-20/A5-7/3", "B1"})
	require.NoError(t, err)

	want := [][]Segment{
		{
			{Start: 10, End: 20},
			{Motif: true, Chain: "A", Start: 5, End: 7},
			{Start: 3, End: 3},
		},
		{
			{Motif: true, Chain: "B", Start: 1, End: 1},
		},
	}
	if diff := cmp.Diff(want, chains); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := map[string][]string{
		"empty list":     nil,
		"empty segment":  {"10//5"},
		"reversed range": {"20-10"},
		"not a number":   {"ten"},
		"motif zero":     {"A0-4"},
		"bad motif end":  {"A3-x"},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestSegmentString(t *testing.T) {
	for _, s := range []string{"7", "4-9", "A12", "C3-30"} {
		seg, err := parseSegment(s)
		require.NoError(t, err)
		assert.Equal(t, s, seg.String())
	}
}

func TestSample_FixedLayout(t *testing.T) {
	// --- Arrange ---
	chains, err := Parse([]string{"2/A5-6/1", "3"})
	require.NoError(t, err)

	// --- Act ---
	m, err := Sample(chains, rand.New(rand.NewPCG(1, 2)))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 8, m.Len())
	assert.Equal(t, []string{"A", "A", "A", "A", "A", "B", "B", "B"}, m.ChainIndex())
	assert.Equal(t, 5, m.BinderLength())
	assert.Equal(t, []string{"2/A5-6/1", "3"}, m.Sampled)
	assert.Equal(t, []bool{false, false, true, true, false, false, false, false}, m.Mask1D())
	assert.Equal(t, []ResidueID{{"A", 5}, {"A", 6}}, m.MotifRefs())
}

func TestSample_SingleChainHasNoBinder(t *testing.T) {
	chains, err := Parse([]string{"10"})
	require.NoError(t, err)
	m, err := Sample(chains, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, 0, m.BinderLength())
}

func TestSample_LengthsWithinRangeAndReproducible(t *testing.T) {
	chains, err := Parse([]string{"5-15/A1-3/5-15"})
	require.NoError(t, err)

	a, err := Sample(chains, rand.New(rand.NewPCG(42, 0)))
	require.NoError(t, err)
	b, err := Sample(chains, rand.New(rand.NewPCG(42, 0)))
	require.NoError(t, err)

	assert.Equal(t, a.Sampled, b.Sampled)
	assert.GreaterOrEqual(t, a.Len(), 13)
	assert.LessOrEqual(t, a.Len(), 33)
}

func TestSample_EmptyChain(t *testing.T) {
	chains, err := Parse([]string{"0"})
	require.NoError(t, err)
	_, err = Sample(chains, rand.New(rand.NewPCG(1, 2)))
	assert.Error(t, err)
}

func TestMappings(t *testing.T) {
	chains, err := Parse([]string{"1/A10-11"})
	require.NoError(t, err)
	m, err := Sample(chains, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	got := m.Mappings(map[ResidueID]int{{"A", 10}: 4})

	assert.Equal(t, [][2]any{{"A", 10}, {"A", 11}}, got["con_ref_pdb_idx"])
	assert.Equal(t, [][2]any{{"A", 2}, {"A", 3}}, got["con_hal_pdb_idx"])
	assert.Equal(t, []int{4, -1}, got["ref_idx0"])
	assert.Equal(t, []int{1, 2}, got["hal_idx0"])
	assert.Equal(t, []string{"1/A10-11"}, got["sampled_mask"])
	assert.Equal(t, []bool{false, true, true}, got["mask_1d"])
}
