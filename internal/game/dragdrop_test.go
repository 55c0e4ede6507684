package game

import "testing"

func TestClassifyDrop(t *testing.T) {
	cases := map[string]dropKind{
		"levels/one.scene":   dropScene,
		"levels/one.JSON":    dropScene,
		"models/crate.glb":   dropModel,
		"models/Crate.GLTF":  dropModel,
		"textures/ball.png":  dropTexture,
		"scripts/jumper.lua": dropUnsupported,
		"README":             dropUnsupported,
	}
	for path, want := range cases {
		if got := classifyDrop(path); got != want {
			t.Errorf("classifyDrop(%q) = %d, want %d", path, got, want)
		}
	}
}
