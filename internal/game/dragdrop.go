package game

import (
	"fmt"
	"path/filepath"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/components"
	"spectral/internal/engine"
	"spectral/internal/serializer"
)

type dropKind uint8

const (
	dropUnsupported dropKind = iota
	dropScene
	dropModel
	dropTexture
)

func classifyDrop(path string) dropKind {
	if _, err := serializer.FormatFor(path); err == nil {
		return dropScene
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb", ".obj", ".iqm":
		return dropModel
	case ".png", ".jpg", ".jpeg", ".bmp", ".tga":
		return dropTexture
	}
	return dropUnsupported
}

// handleFileDrop opens dropped scene files and spawns entities for dropped
// models and textures. Only active in Edit mode.
func (g *Game) handleFileDrop() {
	if !rl.IsFileDropped() {
		return
	}
	files := rl.LoadDroppedFiles()
	defer rl.UnloadDroppedFiles()

	if g.Scene.IsPlaying() {
		g.setStatus("Stop before dropping files")
		return
	}
	for _, file := range files {
		if err := g.importFile(file); err != nil {
			g.setStatus(err.Error())
		}
	}
}

func (g *Game) importFile(path string) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch classifyDrop(path) {
	case dropScene:
		next := g.newScene()
		if err := serializer.DeserializeFile(path, next); err != nil {
			return fmt.Errorf("open %s: %w", filepath.Base(path), err)
		}
		if err := g.Scene.Clear(); err != nil {
			return err
		}
		g.Scene = next
		g.Config.Scene.Path = path
		g.renderer.Forget()
		g.setStatus("Opened " + path)
	case dropModel:
		e, err := g.spawnInFront(name)
		if err != nil {
			return err
		}
		if _, err := engine.AddComponent(e, components.NewModel(g.assets.Model(path))); err != nil {
			return err
		}
		g.setStatus("Added model " + name)
	case dropTexture:
		e, err := g.spawnInFront(name)
		if err != nil {
			return err
		}
		if _, err := engine.AddComponent(e, components.NewSprite(g.assets.Texture(path))); err != nil {
			return err
		}
		g.setStatus("Added sprite " + name)
	default:
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	return nil
}

// spawnInFront creates an entity a few units ahead of the editor camera.
func (g *Game) spawnInFront(name string) (engine.Entity, error) {
	e, err := g.Scene.CreateEntity(name)
	if err != nil {
		return engine.Entity{}, err
	}
	cam := g.editorCam.Camera3D()
	dir := rl.Vector3Normalize(rl.Vector3Subtract(cam.Target, cam.Position))
	e.Transform().Translation = rl.Vector3Add(cam.Position, rl.Vector3Scale(dir, 5))
	return e, nil
}
