package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"radiosync/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "radiosync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "#manual-map-toggle", cfg.Toggle.ContainerSelector)
	assert.Equal(t, 50*time.Millisecond, cfg.Toggle.DebounceDelay)
	assert.Equal(t, 2*time.Second, cfg.Toggle.WatchInterval)
	assert.Equal(t, "#2DBE6C", cfg.Style.Checked["yes"].Background)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
toggle:
  container_selector: "#layer-toggle"
  group: layer-toggle
  debounce_delay: 80ms
  watch_interval: 5s
  max_locate_attempts: 200
browser:
  debugger_url: ws://127.0.0.1:9222/devtools/browser/abc
  headless: true
logging:
  level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "#layer-toggle", cfg.Toggle.ContainerSelector)
	assert.Equal(t, "layer-toggle", cfg.Toggle.Group)
	assert.Equal(t, 80*time.Millisecond, cfg.Toggle.DebounceDelay)
	assert.Equal(t, 5*time.Second, cfg.Toggle.WatchInterval)
	assert.Equal(t, 200, cfg.Toggle.MaxLocateAttempts)
	// Untouched fields keep their defaults.
	assert.Equal(t, 100*time.Millisecond, cfg.Toggle.LocateInterval)

	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", cfg.Browser.DebuggerURL)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadPartialStyleMerge(t *testing.T) {
	path := writeConfig(t, `
style:
  checked:
    "yes":
      background: "#00AA00"
      border: "#00AA00"
      text: "#FFFFFF"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "#00AA00", cfg.Style.Checked["yes"].Background)
	assert.Equal(t, "#FFB020", cfg.Style.Checked["no"].Background, "unnamed palettes keep defaults")
	assert.Equal(t, "#1A2332", cfg.Style.Base.Background)
	assert.Equal(t, "#2196F3", cfg.Style.Fallback.Background)
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "toggle:\n  debounce_delay: soon\n")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debounce_delay")
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "toggle: [unclosed\n")

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidToggle(t *testing.T) {
	path := writeConfig(t, "toggle:\n  container_selector: \"\"\n  group: g\n")

	cfg, err := config.Load(path)
	// Selector override is skipped when empty, so the default survives and
	// validation passes.
	require.NoError(t, err)
	assert.Equal(t, "#manual-map-toggle", cfg.Toggle.ContainerSelector)

	path = writeConfig(t, "toggle:\n  watch_interval: -1s\n")
	_, err = config.Load(path)
	require.Error(t, err)
}

func TestWatcherReloads(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	var mu sync.Mutex
	var got []config.Config
	w, err := config.NewWatcher(path, zap.NewNop(), func(c config.Config) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].Logging.Level == "warn"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcherKeepsPreviousOnBadReload(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	var mu sync.Mutex
	reloads := 0
	w, err := config.NewWatcher(path, zap.NewNop(), func(config.Config) {
		mu.Lock()
		reloads++
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("toggle:\n  debounce_delay: soon\n"), 0o644))

	// Give the debounce window time to pass; the bad file must not reach the
	// callback.
	time.Sleep(time.Second)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, reloads)
}

func TestWatcherStopAfterFailedStart(t *testing.T) {
	// The watched directory does not exist, so Start fails before its run
	// loop launches; Stop must still return.
	path := filepath.Join(t.TempDir(), "missing", "radiosync.yaml")

	w, err := config.NewWatcher(path, zap.NewNop(), func(config.Config) {})
	require.NoError(t, err)
	require.Error(t, w.Start())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after a failed Start")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	w, err := config.NewWatcher(path, zap.NewNop(), func(config.Config) {})
	require.NoError(t, err)
	require.NoError(t, w.Start())

	w.Stop()
	w.Stop()
}
