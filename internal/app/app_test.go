package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/proteindiff/internal/config"
	"github.com/specialistvlad/proteindiff/internal/output"
	"github.com/specialistvlad/proteindiff/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseProfile = `
inference {
  num_designs = 2
  deterministic = true
  seed = 7
}

diffuser {
  T = 50
}

contigmap {
  contigs = ["10"]
}

healthcheck {
  port = 0
}
`

func overrides(t *testing.T, args ...string) []config.Override {
	t.Helper()
	var out []config.Override
	for _, a := range args {
		o, err := config.ParseOverride(a)
		require.NoError(t, err)
		out = append(out, o)
	}
	return out
}

func TestNewApp_ResolvesProfileAndFlags(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"base.hcl": baseProfile,
		"binder.yaml": `
defaults: [base]
inference:
  num_designs: 5
contigmap:
  contigs: ["20"]
`,
	}
	appConfig := &Config{
		ConfigName:      "binder",
		LogFormat:       "json",
		HealthcheckPort: PortFromProfile,
		Overrides:       overrides(t, "inference.seed=99", "contigmap.contigs=[\"30\"]"),
	}

	// --- Act ---
	testApp, _, err := SetupAppTest(t, files, appConfig)

	// --- Assert ---
	require.NoError(t, err)
	cfg := testApp.Config()
	assert.Equal(t, 5, cfg.Inference.NumDesigns, "yaml profile overrides base")
	assert.Equal(t, int64(99), cfg.Inference.Seed, "command line overrides profiles")
	assert.Equal(t, []string{"30"}, cfg.ContigMap.Contigs)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"linear", "remote"}, testApp.Registry().Kinds())
}

func TestNewApp_InvalidProfilePanics(t *testing.T) {
	files := map[string]string{"base.hcl": "inference {"}

	_, _, err := SetupAppTest(t, files, &Config{HealthcheckPort: PortFromProfile})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "application startup panicked")
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestNewApp_InvalidOverridePanics(t *testing.T) {
	files := map[string]string{"base.hcl": baseProfile}
	appConfig := &Config{
		HealthcheckPort: PortFromProfile,
		Overrides:       overrides(t, "inference.num_designs=-3"),
	}

	_, _, err := SetupAppTest(t, files, appConfig)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "inference.num_designs")
}

func TestNewConfig_RejectsBadPort(t *testing.T) {
	_, err := NewConfig(Config{HealthcheckPort: 70000})
	require.Error(t, err)

	cfg, err := NewConfig(Config{HealthcheckPort: PortFromProfile})
	require.NoError(t, err)
	assert.Equal(t, PortFromProfile, cfg.HealthcheckPort)
}

func TestRun_EndToEnd(t *testing.T) {
	// --- Arrange ---
	outDir := t.TempDir()
	prefix := filepath.Join(outDir, "design")
	appConfig := &Config{
		HealthcheckPort: PortFromProfile,
		Overrides: overrides(t,
			"inference.output_prefix="+prefix,
			"inference.num_designs=1",
			"inference.final_step=0",
			"inference.write_trajectory=true",
		),
	}
	testApp, logs, err := SetupAppTest(t, map[string]string{"base.hcl": baseProfile}, appConfig)
	require.NoError(t, err)

	// --- Act ---
	summary, err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Contains(t, logs.String(), "Batch finished.")

	assert.FileExists(t, prefix+"_00000.pdb")
	data, err := os.ReadFile(prefix + "_00000.trb")
	require.NoError(t, err)
	record, err := output.DecodeRecord("msgpack", data)
	require.NoError(t, err)
	assert.Len(t, record["plddt"], 51)
	assert.Equal(t, "cpu", record["device"])

	traj, err := os.ReadFile(filepath.Join(outDir, "traj", "design_00000_Xt-1_traj.pdb"))
	require.NoError(t, err)
	assert.Equal(t, 51, strings.Count(string(traj), "ENDMDL"))
}

func TestRun_UnknownSamplerKindFailsValidation(t *testing.T) {
	appConfig := &Config{
		HealthcheckPort: PortFromProfile,
		Overrides:       overrides(t, "sampler.kind=quantum"),
	}
	_, _, err := SetupAppTest(t, map[string]string{"base.hcl": baseProfile}, appConfig)
	require.ErrorContains(t, err, "sampler.kind")
}

func TestHealthEndpoints(t *testing.T) {
	// --- Arrange ---
	testApp, _, err := SetupAppTest(t, map[string]string{"base.hcl": baseProfile}, &Config{HealthcheckPort: PortFromProfile})
	require.NoError(t, err)
	testApp.tracker.Report(context.Background(), progress.Event{Kind: progress.DesignFinished, DesignIndex: 0})
	mux := testApp.healthMux()

	// --- Act ---
	health := httptest.NewRecorder()
	mux.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	status := httptest.NewRecorder()
	mux.ServeHTTP(status, httptest.NewRequest(http.MethodGet, "/status", nil))

	// --- Assert ---
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "OK\n", health.Body.String())

	require.Equal(t, http.StatusOK, status.Code)
	var got progress.Status
	require.NoError(t, json.NewDecoder(bytes.NewReader(status.Body.Bytes())).Decode(&got))
	assert.Equal(t, testApp.tracker.Snapshot(), got)
}

func TestShippedProfilesResolve(t *testing.T) {
	for _, name := range []string{"base", "motif", "binder"} {
		t.Run(name, func(t *testing.T) {
			appConfig := &Config{
				ConfigName:      name,
				ConfigPath:      filepath.Join("..", "..", "config", "inference"),
				HealthcheckPort: PortFromProfile,
			}

			var testApp *App
			require.NotPanics(t, func() {
				testApp = NewApp(&bytes.Buffer{}, appConfig, DefaultLoaders())
			})
			assert.NotEmpty(t, testApp.Config().ContigMap.Contigs)
		})
	}
}
