package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// CellSize is the edge length of a broad-phase grid cell.
const CellSize = 5.0

type cellKey struct {
	X, Y, Z int
}

func posToCell(pos rl.Vector3) cellKey {
	return cellKey{
		X: int(math.Floor(float64(pos.X) / CellSize)),
		Y: int(math.Floor(float64(pos.Y) / CellSize)),
		Z: int(math.Floor(float64(pos.Z) / CellSize)),
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
