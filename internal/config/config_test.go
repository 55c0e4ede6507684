package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spectral/internal/physics2d"
)

func TestMissingFileMeansDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectral.yaml")
	src := `
window:
  title: Sandbox
physics2d:
  backend: box2d-lite
  gravity: [0, -9.8]
  velocityIterations: 8
physics3d:
  workers: 2
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Title != "Sandbox" || cfg.Window.Width != 1280 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.LogLevel())
	}

	p2 := cfg.Physics2DSettings()
	if p2.Backend != physics2d.BackendBox2DLite || p2.Gravity.Y != -9.8 || p2.VelocityIterations != 8 || p2.PositionIterations != 2 {
		t.Errorf("physics2d = %+v", p2)
	}
	p3 := cfg.Physics3DSettings()
	if p3.Workers != 2 || p3.Gravity.Y != -9.81 || p3.MaxBodies != 65536 {
		t.Errorf("physics3d = %+v", p3)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"backend":    "physics2d:\n  backend: havok\n",
		"iterations": "physics2d:\n  velocityIterations: 0\n",
		"window":     "window:\n  width: -1\n",
		"workers":    "physics3d:\n  workers: -3\n",
		"log level":  "log:\n  level: loud\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(src)); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestUnknownKeysRejected(t *testing.T) {
	if _, err := Read(strings.NewReader("physics4d:\n  enabled: true\n")); err == nil {
		t.Error("unknown section accepted")
	}
	if _, err := Read(strings.NewReader("physics2d:\n  gravity: [1, 2, 3]\n")); err == nil {
		t.Error("3-component 2D gravity accepted")
	}
}

func TestEmptyInputIsDefaults(t *testing.T) {
	cfg, err := Read(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v", cfg)
	}
}
