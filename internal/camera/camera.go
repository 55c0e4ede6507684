// Package camera is the editor's free-fly camera. It only exists in Edit
// mode; Play renders from the scene's active camera entity.
package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spectral/internal/engine"
)

// Input is the slice of raylib input the camera reads.
type Input interface {
	MouseDelta() rl.Vector2
	IsMouseButtonDown(button rl.MouseButton) bool
	IsKeyDown(key int32) bool
}

// RaylibInput reads the live window.
type RaylibInput struct{}

func (RaylibInput) MouseDelta() rl.Vector2                  { return rl.GetMouseDelta() }
func (RaylibInput) IsMouseButtonDown(b rl.MouseButton) bool { return rl.IsMouseButtonDown(b) }
func (RaylibInput) IsKeyDown(key int32) bool                { return rl.IsKeyDown(key) }

type FreeCamera struct {
	Position  rl.Vector3
	Yaw       float32 // degrees
	Pitch     float32 // degrees
	MoveSpeed float32 // units per second
	LookSpeed float32 // degrees per pixel
	Boost     float32 // speed multiplier while shift is held
	Fovy      float32
	Near      float32
	Far       float32
}

func New(pos rl.Vector3) *FreeCamera {
	return &FreeCamera{
		Position:  pos,
		Yaw:       -135.0,
		Pitch:     -30.0,
		MoveSpeed: 8.0,
		LookSpeed: 0.1,
		Boost:     3.0,
		Fovy:      45,
		Near:      0.1,
		Far:       1000,
	}
}

// Update looks around while the right mouse button is held and flies with
// WASD, plus Q/E for down and up.
func (c *FreeCamera) Update(dt float32, in Input) {
	if in.IsMouseButtonDown(rl.MouseRightButton) {
		d := in.MouseDelta()
		c.Yaw += d.X * c.LookSpeed
		c.Pitch -= d.Y * c.LookSpeed
		c.Pitch = max(-89, min(89, c.Pitch))
	}

	forward, right := c.directions()
	var move rl.Vector3
	if in.IsKeyDown(rl.KeyW) {
		move = rl.Vector3Add(move, forward)
	}
	if in.IsKeyDown(rl.KeyS) {
		move = rl.Vector3Subtract(move, forward)
	}
	if in.IsKeyDown(rl.KeyD) {
		move = rl.Vector3Add(move, right)
	}
	if in.IsKeyDown(rl.KeyA) {
		move = rl.Vector3Subtract(move, right)
	}
	if in.IsKeyDown(rl.KeyE) {
		move.Y++
	}
	if in.IsKeyDown(rl.KeyQ) {
		move.Y--
	}
	if rl.Vector3Length(move) == 0 {
		return
	}

	speed := c.MoveSpeed
	if in.IsKeyDown(rl.KeyLeftShift) {
		speed *= c.Boost
	}
	move = rl.Vector3Scale(rl.Vector3Normalize(move), speed*dt)
	c.Position = rl.Vector3Add(c.Position, move)
}

// directions returns the look direction and the horizontal right vector.
func (c *FreeCamera) directions() (forward, right rl.Vector3) {
	yaw := float64(c.Yaw) * math.Pi / 180
	pitch := float64(c.Pitch) * math.Pi / 180
	forward = rl.Vector3{
		X: float32(math.Cos(yaw) * math.Cos(pitch)),
		Y: float32(math.Sin(pitch)),
		Z: float32(math.Sin(yaw) * math.Cos(pitch)),
	}
	right = rl.Vector3{
		X: float32(-math.Sin(yaw)),
		Z: float32(math.Cos(yaw)),
	}
	return forward, right
}

func (c *FreeCamera) Camera3D() rl.Camera3D {
	forward, _ := c.directions()
	return rl.Camera3D{
		Position:   c.Position,
		Target:     rl.Vector3Add(c.Position, forward),
		Up:         rl.Vector3{Y: 1},
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}

// View is what Scene.RenderEditor draws from.
func (c *FreeCamera) View() engine.CameraView {
	return engine.CameraView{Camera: c.Camera3D(), Near: c.Near, Far: c.Far}
}
