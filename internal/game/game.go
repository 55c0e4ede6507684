// Package game is the windowed sandbox: it loads a scene, lets the user fly
// around it in Edit mode and toggles Play from a toolbar.
package game

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/assets"
	"spectral/internal/camera"
	"spectral/internal/config"
	"spectral/internal/engine"
	"spectral/internal/logging"
	"spectral/internal/render"
	"spectral/internal/scripting"
	"spectral/internal/serializer"
)

type Game struct {
	Config    config.Config
	Scene     *engine.Scene
	ShowStats bool

	assets    *assets.Manager
	renderer  *render.Raylib
	editorCam *camera.FreeCamera
	scripts   scripting.Mux

	// Scene document captured on Play and restored on Stop.
	snapshot bytes.Buffer

	status     string
	statusTime float64

	// Debug timing (ms)
	updateMs float64
	drawMs   float64
}

func New(cfg config.Config) *Game {
	native := scripting.NewRegistry()
	scripting.RegisterBuiltins(native)
	lua := scripting.NewLuaRuntime(cfg.Scripting.PackagePath)
	lua.Input = raylibKeys{}

	return &Game{
		Config:    cfg,
		renderer:  render.NewRaylib(),
		editorCam: camera.New(rl.Vector3{X: 10, Y: 10, Z: 10}),
		scripts:   scripting.Mux{Lua: lua, Native: native},
	}
}

// Run opens the window and blocks until it is closed.
func (g *Game) Run() error {
	rl.SetConfigFlags(rl.FlagWindowHighdpi)
	rl.InitWindow(g.Config.Window.Width, g.Config.Window.Height, g.Config.Window.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(g.Config.Window.TargetFPS)

	// Textures and models need the GL context.
	g.assets = assets.NewManager(assets.RaylibLoader{})
	defer g.assets.UnloadAll()

	g.Scene = g.newScene()
	if err := g.load(); err != nil {
		return err
	}
	g.renderer.Grid = 20
	initRayguiStyle()

	for !rl.WindowShouldClose() {
		g.Update(rl.GetFrameTime())
		g.Draw()
	}
	return g.Scene.ExitPlay()
}

func (g *Game) newScene() *engine.Scene {
	return engine.NewScene("Untitled",
		engine.WithAssets(g.assets),
		engine.WithScriptRuntime(g.scripts),
		engine.WithPhysics2D(g.Config.Physics2DSettings()),
		engine.WithPhysics3D(g.Config.Physics3DSettings()),
	)
}

func (g *Game) load() error {
	path := g.Config.Scene.Path
	err := serializer.DeserializeFile(path, g.Scene)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Logger().Warn("game: scene file missing, starting empty", "path", path)
		return nil
	}
	return err
}

func (g *Game) Update(dt float32) {
	start := time.Now()
	defer func() { g.updateMs = float64(time.Since(start).Microseconds()) / 1000.0 }()

	if rl.IsKeyPressed(rl.KeyF1) {
		g.ShowStats = !g.ShowStats
	}
	if rl.IsKeyPressed(rl.KeyF5) {
		g.TogglePlay()
	}
	g.handleFileDrop()

	if !g.Scene.IsPlaying() {
		g.editorCam.Update(dt, camera.RaylibInput{})
		g.Scene.UpdateEditor(dt)
		return
	}
	if err := g.Scene.UpdateRuntime(dt); err != nil {
		g.setStatus(fmt.Sprintf("Update failed: %v", err))
	}
}

// TogglePlay enters Play from a snapshot of the current scene, or leaves Play
// and restores that snapshot.
func (g *Game) TogglePlay() {
	if g.Scene.IsPlaying() {
		g.stop()
		return
	}
	g.snapshot.Reset()
	if err := serializer.Serialize(g.Scene, &g.snapshot); err != nil {
		g.setStatus(fmt.Sprintf("Snapshot failed: %v", err))
		return
	}
	if err := g.Scene.EnterPlay(); err != nil {
		g.setStatus(fmt.Sprintf("Play failed: %v", err))
		return
	}
	g.setStatus("Playing")
}

func (g *Game) stop() {
	if err := g.Scene.ExitPlay(); err != nil {
		g.setStatus(fmt.Sprintf("Stop failed: %v", err))
		return
	}
	if err := g.Scene.Clear(); err != nil {
		g.setStatus(fmt.Sprintf("Restore failed: %v", err))
		return
	}
	if err := serializer.Deserialize(bytes.NewReader(g.snapshot.Bytes()), g.Scene); err != nil {
		g.setStatus(fmt.Sprintf("Restore failed: %v", err))
		return
	}
	g.renderer.Forget()
	g.setStatus("Stopped")
}

// Save writes the scene back to its file. Saving is an Edit-mode action.
func (g *Game) Save() {
	if g.Scene.IsPlaying() {
		g.setStatus("Stop before saving")
		return
	}
	if err := serializer.SerializeFile(g.Scene, g.Config.Scene.Path); err != nil {
		g.setStatus(fmt.Sprintf("Save failed: %v", err))
		return
	}
	g.setStatus("Saved " + g.Config.Scene.Path)
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusTime = rl.GetTime()
	logging.Logger().Info("game: " + msg)
}

func (g *Game) Draw() {
	start := time.Now()
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	if g.Scene.IsPlaying() {
		if !g.Scene.RenderRuntime(g.renderer) {
			drawCentered("No active camera", 24, rl.Gray)
		}
	} else {
		g.Scene.RenderEditor(g.renderer, g.editorCam.View())
	}
	g.drawMs = float64(time.Since(start).Microseconds()) / 1000.0

	g.DrawUI()
	rl.EndDrawing()
}

type raylibKeys struct{}

func (raylibKeys) IsKeyDown(key int32) bool    { return rl.IsKeyDown(key) }
func (raylibKeys) IsKeyPressed(key int32) bool { return rl.IsKeyPressed(key) }
