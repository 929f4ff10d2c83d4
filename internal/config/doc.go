// Package config defines the format-agnostic configuration model for the
// application, along with the interfaces (Loader, Profile) that format
// specific packages implement to fill it.
//
// A run is configured by a named profile. Profiles are found on a search
// path, may inherit from other profiles through a `defaults` list, and are
// applied onto the built-in defaults in order. Command-line overrides of the
// form `block.attribute=value` are applied last. The resolved `config.Model`
// is the single source of truth for the sampler, the batch controller and the
// metadata record.
package config
