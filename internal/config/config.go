// Package config loads the runtime settings for the spectral binaries.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"spectral/internal/logging"
	"spectral/internal/physics"
	"spectral/internal/physics2d"
)

var ErrInvalid = errors.New("config: invalid")

type Window struct {
	Width     int32  `yaml:"width"`
	Height    int32  `yaml:"height"`
	Title     string `yaml:"title"`
	TargetFPS int32  `yaml:"targetFPS"`
}

type Physics2D struct {
	Backend            string     `yaml:"backend"`
	Gravity            [2]float32 `yaml:"gravity,flow"`
	VelocityIterations int        `yaml:"velocityIterations"`
	PositionIterations int        `yaml:"positionIterations"`
}

type Physics3D struct {
	Gravity        [3]float32 `yaml:"gravity,flow"`
	Workers        int        `yaml:"workers"`
	MaxBodies      int        `yaml:"maxBodies"`
	CollisionSteps int        `yaml:"collisionSteps"`
}

type Scripting struct {
	// PackagePath is where Lua require looks for modules.
	PackagePath string `yaml:"packagePath"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Scene struct {
	Path string `yaml:"path"`
}

type Config struct {
	Window    Window    `yaml:"window"`
	Physics2D Physics2D `yaml:"physics2d"`
	Physics3D Physics3D `yaml:"physics3d"`
	Scripting Scripting `yaml:"scripting"`
	Log       Log       `yaml:"log"`
	Scene     Scene     `yaml:"scene"`
}

func Default() Config {
	p2 := physics2d.DefaultSettings()
	p3 := physics.DefaultSettings()
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "Spectral", TargetFPS: 60},
		Physics2D: Physics2D{
			Backend:            string(p2.Backend),
			Gravity:            [2]float32{p2.Gravity.X, p2.Gravity.Y},
			VelocityIterations: p2.VelocityIterations,
			PositionIterations: p2.PositionIterations,
		},
		Physics3D: Physics3D{
			Gravity:        [3]float32{p3.Gravity.X, p3.Gravity.Y, p3.Gravity.Z},
			MaxBodies:      p3.MaxBodies,
			CollisionSteps: p3.CollisionSteps,
		},
		Scripting: Scripting{PackagePath: "assets/scripts"},
		Log:       Log{Level: "info"},
		Scene:     Scene{Path: "assets/scenes/sandbox.scene"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Logger().Info("config: no config file, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes YAML from r over the defaults and validates the result.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.TargetFPS < 0 {
		bad("targetFPS %d", c.Window.TargetFPS)
	}
	if _, err := physics2d.ParseBackend(c.Physics2D.Backend); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if c.Physics2D.VelocityIterations <= 0 || c.Physics2D.PositionIterations <= 0 {
		bad("physics2d iterations must be positive")
	}
	if c.Physics3D.Workers < 0 {
		bad("physics3d workers %d", c.Physics3D.Workers)
	}
	if c.Physics3D.MaxBodies <= 0 {
		bad("physics3d maxBodies %d", c.Physics3D.MaxBodies)
	}
	if c.Physics3D.CollisionSteps <= 0 {
		bad("physics3d collisionSteps %d", c.Physics3D.CollisionSteps)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		bad("log level %q", c.Log.Level)
	}
	return errors.Join(errs...)
}

// Physics2DSettings converts the section to world settings. Call Validate
// first.
func (c Config) Physics2DSettings() physics2d.Settings {
	backend, _ := physics2d.ParseBackend(c.Physics2D.Backend)
	return physics2d.Settings{
		Backend:            backend,
		Gravity:            rl.Vector2{X: c.Physics2D.Gravity[0], Y: c.Physics2D.Gravity[1]},
		VelocityIterations: c.Physics2D.VelocityIterations,
		PositionIterations: c.Physics2D.PositionIterations,
	}
}

func (c Config) Physics3DSettings() physics.Settings {
	s := physics.DefaultSettings()
	s.Gravity = rl.Vector3{X: c.Physics3D.Gravity[0], Y: c.Physics3D.Gravity[1], Z: c.Physics3D.Gravity[2]}
	s.Workers = c.Physics3D.Workers
	s.MaxBodies = c.Physics3D.MaxBodies
	s.CollisionSteps = c.Physics3D.CollisionSteps
	return s
}

// LogLevel is the configured slog level.
func (c Config) LogLevel() slog.Level {
	return logging.ParseLevel(c.Log.Level)
}
