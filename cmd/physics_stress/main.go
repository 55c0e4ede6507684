// Headless physics benchmark: drops piles of 2D and 3D bodies through a
// scene in Play mode and reports the time per step.
//
// Profiling:
// go run ./cmd/physics_stress -profile cpu
// go tool pprof -http=":8000" cpu.pprof
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/profile"

	"spectral/internal/components"
	"spectral/internal/config"
	"spectral/internal/engine"
)

func main() {
	counts := []int{100, 500, 1000, 2000, 5000}
	frames := flag.Int("frames", 240, "steps per run")
	backend := flag.String("backend", "chipmunk", "2D back-end: chipmunk or box2d-lite")
	workers := flag.Int("workers", 0, "3D job pool size, 0 for GOMAXPROCS")
	profileMode := flag.String("profile", "", "cpu or mem")
	flag.Parse()

	cfg := config.Default()
	cfg.Physics2D.Backend = *backend
	cfg.Physics3D.Workers = *workers
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var p interface{ Stop() }
	switch *profileMode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	}

	for _, n := range counts {
		if err := run(cfg, n, *frames); err != nil {
			fmt.Fprintf(os.Stderr, "%5d bodies: %v\n", n, err)
			break
		}
	}
	if p != nil {
		p.Stop()
	}
}

func run(cfg config.Config, count, frames int) error {
	s := engine.NewScene(fmt.Sprintf("stress-%d", count),
		engine.WithPhysics2D(cfg.Physics2DSettings()),
		engine.WithPhysics3D(cfg.Physics3DSettings()),
	)
	if err := populate(s, count); err != nil {
		return err
	}
	if err := s.EnterPlay(); err != nil {
		return err
	}
	defer s.ExitPlay()

	const dt = float32(1.0 / 60)
	var slowest time.Duration
	start := time.Now()
	for range frames {
		stepStart := time.Now()
		if err := s.UpdateRuntime(dt); err != nil {
			return err
		}
		slowest = max(slowest, time.Since(stepStart))
	}
	avg := time.Since(start) / time.Duration(frames)

	st := s.Stats()
	fmt.Printf("%5d bodies: avg %9v  worst %9v  | 2D %5d  3D %5d (%5d awake)\n",
		count, avg.Round(time.Microsecond), slowest.Round(time.Microsecond),
		st.Bodies2D, st.Bodies3D, st.ActiveBodies3D)
	return nil
}

// populate adds a static floor per dimension and count bodies split evenly
// between 2D circles and 3D boxes, spawned in a column above the floor.
func populate(s *engine.Scene, count int) error {
	rng := rand.New(rand.NewPCG(42, 42))
	spawn := float32(20) + float32(count)/100

	floor3D, err := s.CreateEntity("floor3d")
	if err != nil {
		return err
	}
	floor3D.Identity().Layer = 0
	floor3D.Transform().Translation.Y = -0.5
	if _, err := engine.AddComponent(floor3D, components.NewRigidBody3D(components.Static)); err != nil {
		return err
	}
	box := components.NewBoxCollider3D()
	box.Size = rl.Vector3{X: spawn * 2, Y: 1, Z: spawn * 2}
	if _, err := engine.AddComponent(floor3D, box); err != nil {
		return err
	}

	floor2D, err := s.CreateEntity("floor2d")
	if err != nil {
		return err
	}
	floor2D.Transform().Translation.Y = -0.5
	if _, err := engine.AddComponent(floor2D, components.NewRigidBody2D(components.Static)); err != nil {
		return err
	}
	edge := components.NewBoxCollider2D()
	edge.Size = rl.Vector2{X: spawn * 2, Y: 1}
	if _, err := engine.AddComponent(floor2D, edge); err != nil {
		return err
	}

	for i := range count {
		e, err := s.CreateEntity(fmt.Sprintf("body-%d", i))
		if err != nil {
			return err
		}
		tr := e.Transform()
		tr.Translation = rl.Vector3{
			X: rng.Float32()*spawn - spawn/2,
			Y: 1 + rng.Float32()*spawn,
			Z: rng.Float32()*spawn - spawn/2,
		}
		if i%2 == 0 {
			tr.Translation.Z = 0
			_, err = engine.AddComponent(e, components.NewRigidBody2D(components.Dynamic))
			if err == nil {
				_, err = engine.AddComponent(e, components.NewCircleCollider2D())
			}
		} else {
			_, err = engine.AddComponent(e, components.NewRigidBody3D(components.Dynamic))
			if err == nil {
				_, err = engine.AddComponent(e, components.NewBoxCollider3D())
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
