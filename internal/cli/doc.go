// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates flags and positional key.path=value overrides into the
// application's startup configuration.
package cli
