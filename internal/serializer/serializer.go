// Package serializer saves scenes to YAML or JSON documents and loads them
// back. Loading validates the whole document before touching the scene, so a
// bad file leaves the scene as it was.
package serializer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"spectral/internal/assets"
	"spectral/internal/components"
	"spectral/internal/engine"
	"spectral/internal/logging"
)

var (
	ErrMalformedDocument = errors.New("serializer: malformed document")
	ErrUnknownFormat     = errors.New("serializer: unknown file format")
)

type Format uint8

const (
	YAML Format = iota
	JSON
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".scene":
		return YAML, nil
	case ".json":
		return JSON, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Serialize writes s as YAML.
func Serialize(s *engine.Scene, w io.Writer) error { return Encode(s, w, YAML) }

// Deserialize loads a YAML (or JSON) document into s.
func Deserialize(r io.Reader, s *engine.Scene) error { return Decode(r, s, YAML) }

// Encode writes every entity of s. Runtime handles and script instances are
// never written.
func Encode(s *engine.Scene, w io.Writer, f Format) error {
	doc := encodeScene(s)
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
}

// Decode parses, validates and only then instantiates a document. Entities
// keep their persisted IDs.
func Decode(r io.Reader, s *engine.Scene, f Format) error {
	var doc document
	var err error
	switch f {
	case JSON:
		err = json.NewDecoder(r).Decode(&doc)
	default:
		err = yaml.NewDecoder(r).Decode(&doc)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if s.IsPlaying() {
		return fmt.Errorf("load into %q: %w", s.Name, engine.ErrAlreadyPlaying)
	}
	if err := validate(&doc, s); err != nil {
		return err
	}
	return instantiate(&doc, s)
}

// SerializeFile writes s to path in the format its extension names. The file
// is replaced atomically.
func SerializeFile(s *engine.Scene, path string) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(s, tmp, f); err != nil {
		tmp.Close()
		return fmt.Errorf("save scene: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save scene: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	logging.Logger().Info("serializer: scene saved", "scene", s.Name, "path", path, "entities", s.EntityCount())
	return nil
}

func DeserializeFile(path string, s *engine.Scene) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	defer file.Close()
	if err := Decode(file, s, f); err != nil {
		return fmt.Errorf("load scene %s: %w", path, err)
	}
	logging.Logger().Info("serializer: scene loaded", "scene", s.Name, "path", path, "entities", s.EntityCount())
	return nil
}

func toVec2(v rl.Vector2) vec { return vec{v.X, v.Y} }
func toVec3(v rl.Vector3) vec { return vec{v.X, v.Y, v.Z} }
func toVec4(v rl.Vector4) vec { return vec{v.X, v.Y, v.Z, v.W} }

func (v vec) vector2() rl.Vector2 { return rl.Vector2{X: v[0], Y: v[1]} }
func (v vec) vector3() rl.Vector3 { return rl.Vector3{X: v[0], Y: v[1], Z: v[2]} }
func (v vec) vector4() rl.Vector4 { return rl.Vector4{X: v[0], Y: v[1], Z: v[2], W: v[3]} }

func encodeScene(s *engine.Scene) document {
	name := s.Name
	doc := document{Scene: &name, Entities: []entityDoc{}}
	for e := range s.Entities() {
		doc.Entities = append(doc.Entities, encodeEntity(e))
	}
	return doc
}

func encodeEntity(e engine.Entity) entityDoc {
	ident := e.Identity()
	layer := ident.Layer
	d := entityDoc{ID: uint64(ident.ID), Name: ident.Name, Layer: &layer}

	if tr := e.Transform(); tr != nil {
		d.Transform = &transformDoc{
			Translation: toVec3(tr.Translation),
			Rotation:    toVec3(tr.Rotation),
			Scale:       toVec3(tr.Scale),
		}
	}
	if sp := engine.TryGetComponent[components.Sprite](e); sp != nil {
		d.Sprite = &spriteDoc{Texture: sp.Texture.Path(), Tint: toVec4(sp.Tint)}
	}
	if m := engine.TryGetComponent[components.Model](e); m != nil {
		d.Model = &modelDoc{Model: m.Model.Path(), Tint: toVec4(m.Tint)}
	}
	if rb := engine.TryGetComponent[components.RigidBody2D](e); rb != nil {
		d.RigidBody2D = &rigidBody2DDoc{
			Type:           rb.Type.String(),
			FixedRotation:  rb.FixedRotation,
			AllowSleep:     rb.AllowSleep,
			Awake:          rb.Awake,
			GravityScale:   rb.GravityScale,
			LinearDamping:  rb.LinearDamping,
			AngularDamping: rb.AngularDamping,
		}
	}
	if bc := engine.TryGetComponent[components.BoxCollider2D](e); bc != nil {
		d.BoxCollider2D = &boxCollider2DDoc{
			Offset:   toVec2(bc.Offset),
			Size:     toVec2(bc.Size),
			material: material{bc.Density, bc.Friction, bc.Restitution},
		}
	}
	if cc := engine.TryGetComponent[components.CircleCollider2D](e); cc != nil {
		d.CircleCollider2D = &circleCollider2DDoc{
			Offset:   toVec2(cc.Offset),
			Radius:   cc.Radius,
			material: material{cc.Density, cc.Friction, cc.Restitution},
		}
	}
	if rb := engine.TryGetComponent[components.RigidBody3D](e); rb != nil {
		d.RigidBody3D = &rigidBody3DDoc{
			Type:           rb.Type.String(),
			AllowSleep:     rb.AllowSleep,
			Awake:          rb.Awake,
			GravityScale:   rb.GravityScale,
			LinearDamping:  rb.LinearDamping,
			AngularDamping: rb.AngularDamping,
			Mass:           rb.Mass,
		}
	}
	if bc := engine.TryGetComponent[components.BoxCollider3D](e); bc != nil {
		d.BoxCollider3D = &boxCollider3DDoc{
			Offset:   toVec3(bc.Offset),
			Size:     toVec3(bc.Size),
			material: material{bc.Density, bc.Friction, bc.Restitution},
		}
	}
	if sc := engine.TryGetComponent[components.SphereCollider3D](e); sc != nil {
		d.SphereCollider3D = &sphereCollider3DDoc{
			Offset:   toVec3(sc.Offset),
			Radius:   sc.Radius,
			material: material{sc.Density, sc.Friction, sc.Restitution},
		}
	}
	if cam := engine.TryGetComponent[components.Camera](e); cam != nil {
		rc := cam.Camera
		if rc == nil {
			rc = components.NewRuntimeCamera()
		}
		d.Camera = &cameraDoc{
			Active:     cam.Active,
			Debug:      cam.Debug,
			Projection: components.ProjectionName(rc.Projection),
			FOV:        rc.Fovy,
			Near:       rc.Near,
			Far:        rc.Far,
		}
	}
	if sc := engine.TryGetComponent[engine.Script](e); sc != nil {
		d.Script = &scriptDoc{Path: sc.Path}
	}
	return d
}

func malformed(i int, format string, args ...any) error {
	return fmt.Errorf("%w: entity %d: %s", ErrMalformedDocument, i, fmt.Sprintf(format, args...))
}

func checkLen(i int, field string, v vec, n int, optional bool) error {
	if optional && len(v) == 0 {
		return nil
	}
	if len(v) != n {
		return malformed(i, "%s has %d components, want %d", field, len(v), n)
	}
	return nil
}

// validate checks everything instantiate relies on.
func validate(doc *document, s *engine.Scene) error {
	if doc.Scene == nil {
		return fmt.Errorf("%w: missing Scene key", ErrMalformedDocument)
	}
	seen := make(map[uint64]bool, len(doc.Entities))
	for i := range doc.Entities {
		d := &doc.Entities[i]
		if d.ID == 0 {
			return malformed(i, "ID must be non-zero")
		}
		if seen[d.ID] {
			return malformed(i, "duplicate ID %d", d.ID)
		}
		seen[d.ID] = true
		if _, exists := s.FindByID(components.StableID(d.ID)); exists {
			return fmt.Errorf("entity %d: %w: %d already in scene", i, engine.ErrDuplicateID, d.ID)
		}
		if d.Layer != nil && *d.Layer >= 32 {
			return malformed(i, "layer %d out of range", *d.Layer)
		}

		var errs []error
		if t := d.Transform; t != nil {
			errs = append(errs,
				checkLen(i, "Translation", t.Translation, 3, true),
				checkLen(i, "Rotation", t.Rotation, 3, true),
				checkLen(i, "Scale", t.Scale, 3, true))
		}
		if sp := d.Sprite; sp != nil {
			errs = append(errs, checkLen(i, "Sprite Tint", sp.Tint, 4, true))
		}
		if m := d.Model; m != nil {
			errs = append(errs, checkLen(i, "Model Tint", m.Tint, 4, true))
		}
		if bc := d.BoxCollider2D; bc != nil {
			errs = append(errs, checkLen(i, "BoxCollider2D Offset", bc.Offset, 2, true),
				checkLen(i, "BoxCollider2D Size", bc.Size, 2, false))
		}
		if cc := d.CircleCollider2D; cc != nil {
			errs = append(errs, checkLen(i, "CircleCollider2D Offset", cc.Offset, 2, true))
		}
		if bc := d.BoxCollider3D; bc != nil {
			errs = append(errs, checkLen(i, "BoxCollider3D Offset", bc.Offset, 3, true),
				checkLen(i, "BoxCollider3D Size", bc.Size, 3, false))
		}
		if sc := d.SphereCollider3D; sc != nil {
			errs = append(errs, checkLen(i, "SphereCollider3D Offset", sc.Offset, 3, true))
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}
	return nil
}

func instantiate(doc *document, s *engine.Scene) error {
	created := make([]engine.Entity, 0, len(doc.Entities))
	for i := range doc.Entities {
		e, err := instantiateEntity(&doc.Entities[i], s)
		if err != nil {
			for _, c := range created {
				s.DestroyEntity(c)
			}
			return fmt.Errorf("entity %d: %w", i, err)
		}
		created = append(created, e)
	}
	if doc.Scene != nil && *doc.Scene != "" {
		s.Name = *doc.Scene
	}
	return nil
}

func optVec2(v vec) rl.Vector2 {
	if len(v) == 0 {
		return rl.Vector2{}
	}
	return v.vector2()
}

func optVec3(v vec) rl.Vector3 {
	if len(v) == 0 {
		return rl.Vector3{}
	}
	return v.vector3()
}

func tint(v vec) rl.Vector4 {
	if len(v) == 0 {
		return rl.Vector4{X: 1, Y: 1, Z: 1, W: 1}
	}
	return v.vector4()
}

func instantiateEntity(d *entityDoc, s *engine.Scene) (engine.Entity, error) {
	e, err := s.CreateEntityWithID(components.StableID(d.ID), d.Name)
	if err != nil {
		return engine.Entity{}, err
	}
	if d.Layer != nil {
		e.Identity().Layer = *d.Layer
	}
	if t := d.Transform; t != nil {
		// missing vectors keep the identity transform
		tr := e.Transform()
		if len(t.Translation) > 0 {
			tr.Translation = t.Translation.vector3()
		}
		if len(t.Rotation) > 0 {
			tr.Rotation = t.Rotation.vector3()
		}
		if len(t.Scale) > 0 {
			tr.Scale = t.Scale.vector3()
		}
	}

	var add []func() error
	if sp := d.Sprite; sp != nil {
		add = append(add, func() error {
			_, err := engine.AddComponent(e, components.Sprite{Texture: loadTexture(s.Assets(), sp.Texture), Tint: tint(sp.Tint)})
			return err
		})
	}
	if m := d.Model; m != nil {
		add = append(add, func() error {
			_, err := engine.AddComponent(e, components.Model{Model: loadModel(s.Assets(), m.Model), Tint: tint(m.Tint)})
			return err
		})
	}
	if rb := d.RigidBody2D; rb != nil {
		add = append(add, func() error {
			_, err := engine.AddComponent(e, components.RigidBody2D{
				Type:           components.ParseBodyType(rb.Type),
				FixedRotation:  rb.FixedRotation,
				AllowSleep:     rb.AllowSleep,
				Awake:          rb.Awake,
				GravityScale:   rb.GravityScale,
				LinearDamping:  rb.LinearDamping,
				AngularDamping: rb.AngularDamping,
			})
			return err
		})
	}
	if bc := d.BoxCollider2D; bc != nil {
		add = append(add, func() error {
			_, err := engine.AddComponent(e, components.BoxCollider2D{
				Offset: optVec2(bc.Offset), Size: bc.Size.vector2(),
				Density: bc.Density, Friction: bc.Friction, Restitution: bc.Restitution,
			})
			return err
		})
	}
	if cc := d.CircleCollider2D; cc != nil {
		add = append(add, func() error {
			_, err := engine.AddComponent(e, components.CircleCollider2D{
				Offset: optVec2(cc.Offset), Radius: cc.Radius,
				Density: cc.Density, Friction: cc.Friction, Restitution: cc.Restitution,
			})
			return err
		})
	}
	if rb := d.RigidBody3D; rb != nil {
		add = append(add, func() error {
			_, err := engine.AddComponent(e, components.RigidBody3D{
				Type:           components.ParseBodyType(rb.Type),
				AllowSleep:     rb.AllowSleep,
				Awake:          rb.Awake,
				GravityScale:   rb.GravityScale,
				LinearDamping:  rb.LinearDamping,
				AngularDamping: rb.AngularDamping,
				Mass:           rb.Mass,
			})
			return err
		})
	}
	if bc := d.BoxCollider3D; bc != nil {
		add = append(add, func() error {
			_, err := engine.AddComponent(e, components.BoxCollider3D{
				Offset: optVec3(bc.Offset), Size: bc.Size.vector3(),
				Density: bc.Density, Friction: bc.Friction, Restitution: bc.Restitution,
			})
			return err
		})
	}
	if sc := d.SphereCollider3D; sc != nil {
		add = append(add, func() error {
			_, err := engine.AddComponent(e, components.SphereCollider3D{
				Offset: optVec3(sc.Offset), Radius: sc.Radius,
				Density: sc.Density, Friction: sc.Friction, Restitution: sc.Restitution,
			})
			return err
		})
	}
	if c := d.Camera; c != nil {
		add = append(add, func() error {
			cam := components.NewCamera()
			cam.Active, cam.Debug = c.Active, c.Debug
			cam.Camera.Projection = components.ParseProjection(c.Projection)
			if c.FOV > 0 {
				cam.Camera.Fovy = c.FOV
			}
			if c.Near > 0 {
				cam.Camera.Near = c.Near
			}
			if c.Far > 0 {
				cam.Camera.Far = c.Far
			}
			_, err := engine.AddComponent(e, cam)
			return err
		})
	}
	if sc := d.Script; sc != nil {
		add = append(add, func() error {
			_, err := engine.AddComponent(e, engine.NewScript(sc.Path))
			return err
		})
	}

	for _, fn := range add {
		if err := fn(); err != nil {
			s.DestroyEntity(e)
			return engine.Entity{}, err
		}
	}
	return e, nil
}

func loadTexture(m *assets.Manager, path string) *assets.Texture {
	if path == "" {
		return nil
	}
	if m == nil {
		return assets.EmptyTexture(path)
	}
	return m.Texture(path)
}

func loadModel(m *assets.Manager, path string) *assets.Model {
	if path == "" {
		return nil
	}
	if m == nil {
		return assets.EmptyModel(path)
	}
	return m.Model(path)
}
