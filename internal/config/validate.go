package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Known values for enumerated settings.
var (
	SamplerKinds = []string{"linear", "remote"}
	TrbFormats   = []string{"msgpack", "json"}
	Compressions = []string{"none", "zstd"}
	LedgerKinds  = []string{"memory", "sqlite"}
	LogLevels    = []string{"debug", "info", "warn", "error"}
	LogFormats   = []string{"text", "json"}
)

// StartnumSentinel as design_startnum asks for the next free index on disk.
const StartnumSentinel = -1

// Validate checks the resolved model and returns every problem found, joined.
func (m *Model) Validate() error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}
	oneOf := func(field, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			fail(field, "%q is not one of %v", value, allowed)
		}
	}

	in := m.Inference
	if in.NumDesigns < 0 {
		fail("inference.num_designs", "must be >= 0, got %d", in.NumDesigns)
	}
	if in.DesignStartnum < StartnumSentinel {
		fail("inference.design_startnum", "must be >= 0 or -1 for auto-resume, got %d", in.DesignStartnum)
	}
	if in.OutputPrefix == "" {
		fail("inference.output_prefix", "is required")
	}
	if in.FinalStep < 0 {
		fail("inference.final_step", "must be >= 0, got %d", in.FinalStep)
	}
	if in.DeviceName == "" {
		fail("inference.device_name", "is required, use \"auto\" to let the sampler decide")
	}
	oneOf("inference.trb_format", in.TrbFormat, TrbFormats)
	oneOf("inference.trajectory_compression", in.TrajectoryCompression, Compressions)

	if m.Diffuser.T < 1 {
		fail("diffuser.T", "must be >= 1, got %d", m.Diffuser.T)
	}
	if m.Diffuser.PartialT < 0 || m.Diffuser.PartialT > m.Diffuser.T {
		fail("diffuser.partial_T", "must be between 0 and T (%d), got %d", m.Diffuser.T, m.Diffuser.PartialT)
	}
	if in.FinalStep > m.TimestepInput() {
		fail("inference.final_step", "must not exceed the starting timestep %d, got %d", m.TimestepInput(), in.FinalStep)
	}

	oneOf("sampler.kind", m.Sampler.Kind, SamplerKinds)
	if _, err := time.ParseDuration(m.Sampler.Timeout); err != nil {
		fail("sampler.timeout", "%v", err)
	}
	if m.Sampler.NoiseScale < 0 {
		fail("sampler.noise_scale", "must be >= 0, got %g", m.Sampler.NoiseScale)
	}
	switch m.Sampler.Kind {
	case "linear":
		if len(m.ContigMap.Contigs) == 0 {
			fail("contigmap.contigs", "is required for the linear sampler")
		}
	case "remote":
		if m.Sampler.URL == "" {
			fail("sampler.url", "is required for the remote sampler")
		}
	}

	oneOf("logging.level", m.Logging.Level, LogLevels)
	oneOf("logging.format", m.Logging.Format, LogFormats)

	oneOf("ledger.kind", m.Ledger.Kind, LedgerKinds)
	if m.Ledger.Kind == "sqlite" && m.Ledger.Path == "" {
		fail("ledger.path", "is required for the sqlite ledger")
	}

	if m.Healthcheck.Port < 0 || m.Healthcheck.Port > 65535 {
		fail("healthcheck.port", "must be between 0 and 65535, got %d", m.Healthcheck.Port)
	}

	return errors.Join(errs...)
}
