package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/specialistvlad/proteindiff/internal/diffusion"
	"github.com/specialistvlad/proteindiff/internal/protein"
	"github.com/specialistvlad/proteindiff/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	p := DesignPrefix("out/run/design", 7)
	assert.Equal(t, "out/run/design_00007", p)
	assert.Equal(t, "out/run/design_00007.pdb", StructurePath(p))
	assert.Equal(t, "out/run/design_00007.trb", MetadataPath(p))

	denoised, px0 := TrajectoryPaths(p)
	assert.Equal(t, filepath.Join("out", "run", "traj", "design_00007_Xt-1_traj.pdb"), denoised)
	assert.Equal(t, filepath.Join("out", "run", "traj", "design_00007_pX0_traj.pdb"), px0)
}

func TestChainIDs(t *testing.T) {
	assert.Equal(t, []string{"A", "A", "A"}, ChainIDs(nil, 0, 3))
	assert.Equal(t, []string{"A", "A", "B"}, ChainIDs(nil, 2, 3))
	assert.Equal(t, []string{"C", "D"}, ChainIDs([]string{"C", "D"}, 1, 2))
}

func testTrajectory(t *testing.T, steps int) *diffusion.Trajectory {
	t.Helper()
	ctx, _ := testutil.Context(t)
	fake := &testutil.FakeSampler{Residues: 3, Categories: []int{protein.MAS, protein.SER, protein.MAS}}
	x, seq, err := fake.Initialize(ctx)
	require.NoError(t, err)
	res, err := (&diffusion.Runner{Sampler: fake, TInitial: steps, FinalStep: 1}).Run(ctx, x, seq)
	require.NoError(t, err)
	return diffusion.Assemble(res, seq)
}

func testMetadata() Metadata {
	return Metadata{
		Config:      map[string]any{"inference": map[string]any{"num_designs": 1}},
		PLDDT:       [][]float64{{0.5, 0.5, 0.5}},
		Device:      "cpu",
		Seconds:     1.5,
		RunID:       "run-1",
		DesignIndex: 3,
		Seed:        42,
		Mappings:    map[string]any{"hal_idx0": []int{1}},
	}
}

func TestWriter_WritesAllArtifacts(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	prefix := DesignPrefix(filepath.Join(t.TempDir(), "samples", "design"), 3)
	w := &Writer{WriteTrajectory: true, Format: "msgpack", Compression: "none"}

	// --- Act ---
	arts, err := w.Write(ctx, Design{Prefix: prefix, Trajectory: testTrajectory(t, 4), Metadata: testMetadata()})

	// --- Assert ---
	require.NoError(t, err)
	assert.Greater(t, arts.Bytes, int64(0))

	pdbText, err := os.ReadFile(arts.Structure)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(pdbText)), "\n")
	// Three residues, backbone only, plus END.
	require.Len(t, lines, 13)
	assert.Equal(t, "GLY", lines[0][17:20])
	assert.Equal(t, "SER", lines[4][17:20])
	assert.Equal(t, "  0.00", lines[0][60:66])
	assert.Equal(t, "  1.00", lines[4][60:66])
	assert.Equal(t, "   1.000", lines[0][30:38], "frame 0 is the final step")

	raw, err := os.ReadFile(arts.Metadata)
	require.NoError(t, err)
	rec, err := DecodeRecord("msgpack", raw)
	require.NoError(t, err)
	assert.Equal(t, "cpu", rec["device"])
	assert.Equal(t, "run-1", rec["run_id"])
	assert.Contains(t, rec, "config")
	assert.Contains(t, rec, "plddt")
	assert.Contains(t, rec, "time")
	assert.Contains(t, rec, "hal_idx0")

	require.Len(t, arts.Trajectories, 2)
	for _, p := range arts.Trajectories {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, 4, strings.Count(string(data), "ENDMDL"))
	}
	assert.Contains(t, arts.Trajectories[0], "_Xt-1_traj.pdb")
	assert.Contains(t, arts.Trajectories[1], "_pX0_traj.pdb")
}

func TestWriter_NoTrajectory(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	prefix := DesignPrefix(filepath.Join(dir, "design"), 0)
	w := &Writer{Format: "json"}

	arts, err := w.Write(ctx, Design{Prefix: prefix, Trajectory: testTrajectory(t, 2), Metadata: testMetadata()})
	require.NoError(t, err)
	assert.Empty(t, arts.Trajectories)
	assert.NoDirExists(t, filepath.Join(dir, "traj"))

	raw, err := os.ReadFile(arts.Metadata)
	require.NoError(t, err)
	rec, err := DecodeRecord("json", raw)
	require.NoError(t, err)
	assert.Equal(t, float64(42), rec["seed"])
}

func TestWriter_ZstdTrajectories(t *testing.T) {
	ctx, _ := testutil.Context(t)
	prefix := DesignPrefix(filepath.Join(t.TempDir(), "design"), 1)
	w := &Writer{WriteTrajectory: true, Format: "msgpack", Compression: "zstd"}

	arts, err := w.Write(ctx, Design{Prefix: prefix, Trajectory: testTrajectory(t, 3), Metadata: testMetadata()})
	require.NoError(t, err)
	require.Len(t, arts.Trajectories, 2)
	assert.True(t, strings.HasSuffix(arts.Trajectories[0], ".pdb.zst"))

	f, err := os.Open(arts.Trajectories[0])
	require.NoError(t, err)
	defer f.Close()
	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()
	var sb strings.Builder
	_, err = dec.WriteTo(&sb)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(sb.String(), "ENDMDL"))
}

func TestWriter_IOFailure(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	w := &Writer{Format: "msgpack"}
	_, err := w.Write(ctx, Design{
		Prefix:     DesignPrefix(filepath.Join(blocker, "design"), 0),
		Trajectory: testTrajectory(t, 2),
		Metadata:   testMetadata(),
	})
	assert.Error(t, err)
}

func TestWriter_TrajectoryFailureLeavesNoStructure(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	// A plain file where the trajectory directory should go.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "traj"), nil, 0o644))
	prefix := DesignPrefix(filepath.Join(dir, "design"), 0)
	w := &Writer{WriteTrajectory: true, Format: "msgpack", Compression: "none"}

	// --- Act ---
	_, err := w.Write(ctx, Design{Prefix: prefix, Trajectory: testTrajectory(t, 2), Metadata: testMetadata()})

	// --- Assert ---
	require.Error(t, err)
	assert.NoFileExists(t, StructurePath(prefix), "a cautious rerun must not skip this design")
}

func TestMetadata_UnknownFormat(t *testing.T) {
	_, err := testMetadata().Encode("pickle")
	assert.Error(t, err)
}
