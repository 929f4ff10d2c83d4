package hcl

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/proteindiff/internal/config"
	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_ProfileInheritance(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeProfile(t, dir, "base.hcl", `
inference {
  num_designs   = 2
  seed          = 7
  deterministic = true
}

contigmap {
  contigs = ["40-60"]
}
`)
	writeProfile(t, dir, "binder.hcl", `
defaults = ["base"]

inference {
  num_designs   = 5
  output_prefix = "out/binder"
}

diffuser {
  T = 25
}
`)
	r := &config.Resolver{SearchPaths: []string{dir}, Loaders: []config.Loader{NewLoader()}}

	// --- Act ---
	m, err := r.Resolve(testContext(), "binder")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 5, m.Inference.NumDesigns)
	assert.Equal(t, "out/binder", m.Inference.OutputPrefix)
	assert.Equal(t, int64(7), m.Inference.Seed, "inherited from base")
	assert.True(t, m.Inference.Deterministic, "inherited from base")
	assert.Equal(t, []string{"40-60"}, m.ContigMap.Contigs)
	assert.Equal(t, 25, m.Diffuser.T)
	assert.Equal(t, "msgpack", m.Inference.TrbFormat, "built-in default kept")
	assert.True(t, m.Inference.Cautious, "built-in default kept")
	require.NoError(t, m.Validate())
}

func TestLoader_BaseProfileIsUsedByDefault(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "base.hcl", `
sampler {
  noise_scale = 0.25
}
`)
	r := &config.Resolver{SearchPaths: []string{dir}, Loaders: []config.Loader{NewLoader()}}

	m, err := r.Resolve(testContext(), "")
	require.NoError(t, err)
	assert.Equal(t, 0.25, m.Sampler.NoiseScale)
	assert.Equal(t, "linear", m.Sampler.Kind)
}

func TestLoader_Errors(t *testing.T) {
	tests := map[string]string{
		"syntax error":      "inference {",
		"unknown block":     "engine {}\n",
		"unknown field":     "inference {\n  warp = 9\n}\n",
		"wrong type":        "inference {\n  num_designs = \"many\"\n}\n",
		"duplicate block":   "inference {}\ninference {}\n",
		"defaults not list": "defaults = 3\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeProfile(t, dir, "bad.hcl", content)
			r := &config.Resolver{SearchPaths: []string{dir}, Loaders: []config.Loader{NewLoader()}}

			_, err := r.Resolve(testContext(), "bad")
			assert.Error(t, err)
		})
	}
}

func TestLoader_Inherits(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "multi.hcl", `defaults = ["base", "symmetry"]`)

	p, err := NewLoader().Load(testContext(), filepath.Join(dir, "multi.hcl"))
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "symmetry"}, p.Inherits())
}
