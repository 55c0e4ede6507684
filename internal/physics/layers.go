package physics

import "fmt"

// ObjectLayer groups bodies for collision filtering. Identity.Layer maps onto
// it one to one.
type ObjectLayer uint8

const (
	LayerStatic ObjectLayer = iota
	LayerDefault
	LayerCustom1
	LayerCustom2
	NumLayers
)

func (l ObjectLayer) String() string {
	switch l {
	case LayerStatic:
		return "Static"
	case LayerDefault:
		return "Default"
	case LayerCustom1:
		return "Custom1"
	case LayerCustom2:
		return "Custom2"
	}
	return fmt.Sprintf("ObjectLayer(%d)", uint8(l))
}

// BroadPhaseLayer is the coarse bucket an object layer lives in.
type BroadPhaseLayer uint8

const (
	BroadPhaseStatic BroadPhaseLayer = iota
	BroadPhaseMoving
	numBroadPhaseLayers
)

// BroadPhase maps an object layer to its broad-phase bucket.
func (l ObjectLayer) BroadPhase() BroadPhaseLayer {
	if l == LayerStatic {
		return BroadPhaseStatic
	}
	return BroadPhaseMoving
}

// ShouldCollide is the object-layer pair filter. Static collides with every
// non-static layer; a non-static layer collides with Static and with itself.
func ShouldCollide(a, b ObjectLayer) bool {
	if a >= NumLayers || b >= NumLayers {
		return false
	}
	if a == LayerStatic {
		return b != LayerStatic
	}
	if b == LayerStatic {
		return true
	}
	return a == b
}

// layerTable caches ShouldCollide for the world's lifetime, along with the
// object-vs-broad-phase filter derived from it.
type layerTable struct {
	pairs      [NumLayers][NumLayers]bool
	broadPhase [NumLayers][numBroadPhaseLayers]bool
}

func newLayerTable() layerTable {
	var t layerTable
	for a := ObjectLayer(0); a < NumLayers; a++ {
		for b := ObjectLayer(0); b < NumLayers; b++ {
			ok := ShouldCollide(a, b)
			t.pairs[a][b] = ok
			if ok {
				t.broadPhase[a][b.BroadPhase()] = true
			}
		}
	}
	return t
}

func (t *layerTable) collide(a, b ObjectLayer) bool {
	if a >= NumLayers || b >= NumLayers {
		return false
	}
	return t.pairs[a][b]
}
