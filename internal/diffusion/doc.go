// Package diffusion runs the reverse-diffusion loop for a single design and
// turns what it collected into the artifacts written to disk.
//
// A Runner steps a structure from TInitial down to FinalStep, one timestep at
// a time, asking a sampler.Sampler for each step. The per-step tensors are
// kept in generation order in a Result. Assemble reverses the structure
// stacks for trajectory playback and derives the final sequence and motif
// mask from the initial sequence alone.
package diffusion
