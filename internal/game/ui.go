package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Indigo dark theme.
var (
	colorBgDark        = rl.NewColor(10, 10, 15, 255)
	colorBgPanel       = rl.NewColor(18, 18, 24, 245)
	colorBgElement     = rl.NewColor(28, 28, 38, 255)
	colorBgHover       = rl.NewColor(38, 38, 52, 255)
	colorAccent        = rl.NewColor(108, 99, 255, 255)
	colorTextPrimary   = rl.NewColor(255, 255, 255, 255)
	colorTextSecondary = rl.NewColor(200, 200, 208, 255)
	colorTextMuted     = rl.NewColor(119, 119, 119, 255)
)

const (
	toolbarHeight = 36
	statusSeconds = 3.0
)

func initRayguiStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

// DrawUI draws the toolbar, the status line and the F1 statistics overlay.
func (g *Game) DrawUI() {
	w := float32(rl.GetScreenWidth())
	rl.DrawRectangle(0, 0, int32(w), toolbarHeight, colorBgPanel)

	label := "Play"
	if g.Scene.IsPlaying() {
		label = "Stop"
	}
	if gui.Button(rl.Rectangle{X: w/2 - 85, Y: 6, Width: 80, Height: 24}, label) {
		g.TogglePlay()
	}
	if g.Scene.IsPlaying() {
		gui.Disable()
	}
	if gui.Button(rl.Rectangle{X: w/2 + 5, Y: 6, Width: 80, Height: 24}, "Save") {
		g.Save()
	}
	gui.Enable()

	rl.DrawText(fmt.Sprintf("%s  [%s]", g.Scene.Name, g.Scene.Mode()), 10, 10, 16, colorTextSecondary)
	if g.status != "" && rl.GetTime()-g.statusTime < statusSeconds {
		rl.DrawText(g.status, int32(w)-rl.MeasureText(g.status, 16)-10, 10, 16, colorAccent)
	}

	if !g.Scene.IsPlaying() {
		rl.DrawText("RMB + mouse to look, WASD/QE to fly, F5 to play, F1 for stats", 10, int32(rl.GetScreenHeight())-24, 16, colorTextMuted)
	}
	if g.ShowStats {
		g.drawStats()
	}
}

func (g *Game) drawStats() {
	st := g.Scene.Stats()
	rs := g.renderer.Stats()
	as := g.assets.Stats()
	lines := []string{
		fmt.Sprintf("Entities: %d", st.Entities),
		fmt.Sprintf("Bodies 2D: %d", st.Bodies2D),
		fmt.Sprintf("Bodies 3D: %d (%d active)", st.Bodies3D, st.ActiveBodies3D),
		fmt.Sprintf("Scripts: %d (%d errors)", st.Scripts, st.ScriptErrors),
		fmt.Sprintf("Drawn: %d  Culled: %d", rs.Drawn, rs.Culled),
		fmt.Sprintf("Textures: %d  Models: %d", as.Textures, as.Models),
		fmt.Sprintf("Update: %.2f ms", g.updateMs),
		fmt.Sprintf("Draw:   %.2f ms", g.drawMs),
	}
	y := int32(toolbarHeight + 10)
	rl.DrawRectangle(6, y-4, 260, int32(len(lines))*20+28, rl.Fade(colorBgDark, 0.8))
	rl.DrawFPS(10, y)
	for i, line := range lines {
		rl.DrawText(line, 10, y+22+int32(i)*20, 16, rl.Green)
	}
}

func drawCentered(text string, size int32, color rl.Color) {
	x := (int32(rl.GetScreenWidth()) - rl.MeasureText(text, size)) / 2
	y := (int32(rl.GetScreenHeight()) - size) / 2
	rl.DrawText(text, x, y, size, color)
}
