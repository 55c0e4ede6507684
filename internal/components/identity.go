// Package components holds the plain data attached to scene entities.
// Behaviour lives in the scene and its collaborators; the only logic here is
// derived values such as Transform.Matrix.
package components

import (
	"math/rand/v2"
	"strconv"
)

// StableID survives save and load. Zero is never a valid id.
type StableID uint64

func (id StableID) String() string { return strconv.FormatUint(uint64(id), 10) }

// NewStableID returns a random non-zero id. Uniqueness within a scene is the
// scene's job.
func NewStableID() StableID {
	for {
		if id := StableID(rand.Uint64()); id != 0 {
			return id
		}
	}
}

// Identity is mandatory on every entity.
type Identity struct {
	ID    StableID
	Name  string
	Layer uint8 // 3D object layer; see physics.ObjectLayer
}
