package sampler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/proteindiff/internal/sampler"
	"github.com/specialistvlad/proteindiff/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct{ kind string }

func (m *fakeModule) Register(r *sampler.Registry) {
	r.Register(m.kind, func(ctx context.Context, deps sampler.Deps) (sampler.Sampler, error) {
		return &testutil.FakeSampler{Residues: 3, TInput: 5}, nil
	})
}

func TestRegistry_NewByKind(t *testing.T) {
	ctx, _ := testutil.Context(t)
	r := sampler.NewRegistry()
	(&fakeModule{kind: "fake"}).Register(r)
	(&fakeModule{kind: "another"}).Register(r)

	s, err := r.New(ctx, "fake", sampler.Deps{})
	require.NoError(t, err)
	assert.Equal(t, 5, s.TimestepInput())
	assert.Equal(t, []string{"another", "fake"}, r.Kinds())
}

func TestRegistry_UnknownKind(t *testing.T) {
	ctx, _ := testutil.Context(t)
	r := sampler.NewRegistry()
	_, err := r.New(ctx, "missing", sampler.Deps{})
	assert.ErrorContains(t, err, `unknown sampler kind "missing"`)
}

func TestRegistry_FactoryError(t *testing.T) {
	ctx, _ := testutil.Context(t)
	r := sampler.NewRegistry()
	boom := errors.New("boom")
	r.Register("broken", func(context.Context, sampler.Deps) (sampler.Sampler, error) { return nil, boom })

	_, err := r.New(ctx, "broken", sampler.Deps{})
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := sampler.NewRegistry()
	(&fakeModule{kind: "fake"}).Register(r)
	assert.Panics(t, func() { (&fakeModule{kind: "fake"}).Register(r) })
}

type bareSampler struct{ testutil.FakeSampler }

// Device shadows the fake's answer with nothing.
func (b *bareSampler) Device() string { return "" }

func TestResolveDevice(t *testing.T) {
	gpu := &testutil.FakeSampler{DeviceName: "cuda:0"}

	assert.Equal(t, "cuda:0", sampler.ResolveDevice("auto", gpu))
	assert.Equal(t, "cuda:0", sampler.ResolveDevice("", gpu))
	assert.Equal(t, "cuda:1", sampler.ResolveDevice("cuda:1", gpu), "explicit names pass through")
	assert.Equal(t, "cpu", sampler.ResolveDevice("auto", &bareSampler{}))
}
