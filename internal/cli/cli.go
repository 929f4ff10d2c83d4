package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/proteindiff/internal/app"
	"github.com/specialistvlad/proteindiff/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("proteindiff", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
ProteinDiff - batch driver for diffusion based protein structure sampling.

Usage:
  proteindiff [options] [key.path=value ...]

Arguments:
  key.path=value
    Overrides one configuration attribute after profiles are applied,
    for example inference.num_designs=4 or contigmap.contigs=["10-40/A5-20/10-40"].

Options:
`)
		flagSet.PrintDefaults()
	}

	configNameFlag := flagSet.String("config-name", "base", "Name of the configuration profile to resolve.")
	configPathFlag := flagSet.String("config-path", "", "Directory searched for profiles before the default locations.")
	healthPortFlag := flagSet.Int("healthcheck-port", app.PortFromProfile, "Port for the HTTP health check server. 0 is disabled, -1 uses the profile.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'. Empty uses the profile.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'. Empty uses the profile.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(*logFormatFlag)
	switch logFormat {
	case "", "text", "json":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	overrides := make([]config.Override, 0, flagSet.NArg())
	for _, arg := range flagSet.Args() {
		o, err := config.ParseOverride(arg)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		overrides = append(overrides, o)
	}
	slog.Debug("CLI parameter validation complete.", "overrides", len(overrides))

	cfg, err := app.NewConfig(app.Config{
		ConfigName:      *configNameFlag,
		ConfigPath:      *configPathFlag,
		Overrides:       overrides,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config_name", cfg.ConfigName)
	return cfg, false, nil
}
