package config

import "context"

// Profile is one parsed configuration file.
type Profile interface {
	// Inherits lists the profiles to apply before this one, in order.
	Inherits() []string
	// ApplyTo writes every value set in the file onto m, leaving the rest
	// untouched.
	ApplyTo(ctx context.Context, m *Model) error
}

// Loader is the interface for a format-specific profile loader.
type Loader interface {
	// Extensions lists the file extensions (with the dot) this loader reads.
	Extensions() []string
	// Load parses a profile file without applying it.
	Load(ctx context.Context, path string) (Profile, error)
}
