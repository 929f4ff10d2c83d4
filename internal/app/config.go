package app

import (
	"errors"

	"github.com/specialistvlad/proteindiff/internal/config"
)

// PortFromProfile leaves the health check port to the resolved profile.
const PortFromProfile = -1

// Config holds what the entrypoint knows before any profile is read.
type Config struct {
	ConfigName string // profile to resolve, "base" when empty
	ConfigPath string // extra directory searched first

	Overrides []config.Override

	// Empty values defer to the profile's logging block.
	LogFormat string
	LogLevel  string
	// HealthcheckPort is PortFromProfile to use the profile's value.
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.HealthcheckPort < PortFromProfile || cfg.HealthcheckPort > 65535 {
		return nil, errors.New("healthcheck-port must be between 0 and 65535")
	}
	return &cfg, nil
}

// apply writes the command line settings over the resolved model.
func (c *Config) apply(m *config.Model) error {
	if err := m.ApplyOverrides(c.Overrides); err != nil {
		return err
	}
	if c.LogLevel != "" {
		m.Logging.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		m.Logging.Format = c.LogFormat
	}
	if c.HealthcheckPort != PortFromProfile {
		m.Healthcheck.Port = c.HealthcheckPort
	}
	return nil
}
