// Package app wires the sampler, the batch controller and their supporting
// services together and owns the lifecycle of a single sampling run,
// independent of the entrypoint that starts it.
package app
