// Package determinism owns the pseudo-random state used while sampling.
//
// There is no package-level generator. A Source is created once per process
// (or per test) and handed to every component that draws random numbers, so
// independent sequences never interfere with each other.
package determinism

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/specialistvlad/proteindiff/internal/ctxlog"
)

// streamSalt selects the PCG stream; any fixed odd constant works.
const streamSalt uint64 = 0x9e3779b97f4a7c15

// Source is a reseedable generator context.
type Source struct {
	mu   sync.Mutex
	pcg  *rand.PCG
	rng  *rand.Rand
	seed int64
}

// New returns a Source seeded with seed.
func New(seed int64) *Source {
	pcg := rand.NewPCG(uint64(seed), streamSalt)
	return &Source{pcg: pcg, rng: rand.New(pcg), seed: seed}
}

// NewFromClock returns a Source seeded from the wall clock, for
// non-deterministic runs.
func NewFromClock() *Source {
	return New(time.Now().UnixNano())
}

// Reseed resets the generator state. Equal seeds yield equal subsequent draws.
func (s *Source) Reseed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pcg.Seed(uint64(seed), streamSalt)
	s.seed = seed
}

// Current returns the last seed applied.
func (s *Source) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed
}

// Rand exposes the underlying generator. It is not safe for concurrent use,
// matching the single-threaded sampling loop.
func (s *Source) Rand() *rand.Rand {
	return s.rng
}

// Controller applies the batch seeding policy to a Source.
type Controller struct {
	Source  *Source
	Enabled bool
	Base    int64
}

// SeedGlobal seeds the source with the base seed before a batch starts.
func (c *Controller) SeedGlobal(ctx context.Context) {
	if !c.Enabled {
		return
	}
	ctxlog.FromContext(ctx).Info("Setting random seed generator.", "seed", c.Base)
	c.Source.Reseed(c.Base)
}

// SeedDesign seeds the source with base+index so every design is
// reproducible on its own, independent of batch size or start offset. When
// disabled, each design gets a fresh seed drawn from the running generator,
// so Current always names the seed the design actually used.
func (c *Controller) SeedDesign(ctx context.Context, index int) {
	if !c.Enabled {
		c.Source.Reseed(c.Source.Rand().Int64())
		return
	}
	seed := c.Base + int64(index)
	ctxlog.FromContext(ctx).Info("Setting random seed generator.", "seed", seed)
	c.Source.Reseed(seed)
}
