package app

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/proteindiff/internal/sampler"
	"github.com/specialistvlad/proteindiff/internal/testutil"
)

// SetupAppTest writes the given profile files into a temporary directory and
// builds an app against it. Startup panics are returned as errors.
func SetupAppTest(t *testing.T, files map[string]string, appConfig *Config, modules ...sampler.Module) (testApp *App, logs *testutil.SafeBuffer, err error) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	appConfig.ConfigPath = dir
	if appConfig.LogLevel == "" {
		appConfig.LogLevel = "debug"
	}

	logs = &testutil.SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("PROTEINDIFF_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked | %v", r)
		}
	}()
	testApp = NewApp(logs, appConfig, DefaultLoaders(), modules...)
	return testApp, logs, nil
}
