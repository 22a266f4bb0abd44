package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.Fuzziness != 4 || cfg.FillMaxIterations != 100 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.AutosaveInterval != 30*time.Second {
		t.Errorf("AutosaveInterval = %v", cfg.AutosaveInterval)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SNAP_TO_GRID", "true")
	t.Setenv("GRID_SIZE", "8")
	t.Setenv("AUTOSAVE_INTERVAL", "5s")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9000 || !cfg.SnapToGrid || cfg.GridSize != 8 || cfg.AutosaveInterval != 5*time.Second {
		t.Errorf("environment not applied: %+v", cfg)
	}

	t.Setenv("FUZZINESS", "wide")
	if _, err := Load(); err == nil {
		t.Error("Load accepted a malformed float")
	}
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: " http://a.test, ,http://b.test "}
	if d := cmp.Diff([]string{"http://a.test", "http://b.test"}, cfg.Origins()); d != "" {
		t.Error(d)
	}
}
