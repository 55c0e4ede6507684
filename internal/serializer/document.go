package serializer

// The document types are shared by the YAML and JSON encodings. Blocks are
// pointers so an absent block means an absent component.

type document struct {
	Scene    *string     `yaml:"Scene" json:"Scene"`
	Entities []entityDoc `yaml:"Entities" json:"Entities"`
}

type entityDoc struct {
	ID    uint64 `yaml:"ID" json:"ID"`
	Name  string `yaml:"Name" json:"Name"`
	Layer *uint8 `yaml:"Layer,omitempty" json:"Layer,omitempty"`

	Transform        *transformDoc        `yaml:"TransformComponent,omitempty" json:"TransformComponent,omitempty"`
	Sprite           *spriteDoc           `yaml:"SpriteComponent,omitempty" json:"SpriteComponent,omitempty"`
	Model            *modelDoc            `yaml:"ModelComponent,omitempty" json:"ModelComponent,omitempty"`
	RigidBody2D      *rigidBody2DDoc      `yaml:"RigidBody2DComponent,omitempty" json:"RigidBody2DComponent,omitempty"`
	BoxCollider2D    *boxCollider2DDoc    `yaml:"BoxCollider2DComponent,omitempty" json:"BoxCollider2DComponent,omitempty"`
	CircleCollider2D *circleCollider2DDoc `yaml:"CircleCollider2DComponent,omitempty" json:"CircleCollider2DComponent,omitempty"`
	RigidBody3D      *rigidBody3DDoc      `yaml:"RigidBody3DComponent,omitempty" json:"RigidBody3DComponent,omitempty"`
	BoxCollider3D    *boxCollider3DDoc    `yaml:"BoxCollider3DComponent,omitempty" json:"BoxCollider3DComponent,omitempty"`
	SphereCollider3D *sphereCollider3DDoc `yaml:"SphereCollider3DComponent,omitempty" json:"SphereCollider3DComponent,omitempty"`
	Camera           *cameraDoc           `yaml:"CameraComponent,omitempty" json:"CameraComponent,omitempty"`
	Script           *scriptDoc           `yaml:"ScriptComponent,omitempty" json:"ScriptComponent,omitempty"`
}

// vec is a flow sequence of floats; its length is checked on load.
type vec []float32

type transformDoc struct {
	Translation vec `yaml:"Translation,flow" json:"Translation"`
	Rotation    vec `yaml:"Rotation,flow" json:"Rotation"`
	Scale       vec `yaml:"Scale,flow" json:"Scale"`
}

type spriteDoc struct {
	Texture string `yaml:"Texture" json:"Texture"`
	Tint    vec    `yaml:"Tint,flow" json:"Tint"`
}

type modelDoc struct {
	Model string `yaml:"Model" json:"Model"`
	Tint  vec    `yaml:"Tint,flow" json:"Tint"`
}

type rigidBody2DDoc struct {
	Type           string  `yaml:"Type" json:"Type"`
	FixedRotation  bool    `yaml:"FixedRotation" json:"FixedRotation"`
	AllowSleep     bool    `yaml:"AllowSleep" json:"AllowSleep"`
	Awake          bool    `yaml:"Awake" json:"Awake"`
	GravityScale   float32 `yaml:"GravityScale" json:"GravityScale"`
	LinearDamping  float32 `yaml:"LinearDamping" json:"LinearDamping"`
	AngularDamping float32 `yaml:"AngularDamping" json:"AngularDamping"`
}

type rigidBody3DDoc struct {
	Type           string  `yaml:"Type" json:"Type"`
	AllowSleep     bool    `yaml:"AllowSleep" json:"AllowSleep"`
	Awake          bool    `yaml:"Awake" json:"Awake"`
	GravityScale   float32 `yaml:"GravityScale" json:"GravityScale"`
	LinearDamping  float32 `yaml:"LinearDamping" json:"LinearDamping"`
	AngularDamping float32 `yaml:"AngularDamping" json:"AngularDamping"`
	Mass           float32 `yaml:"Mass" json:"Mass"`
}

type material struct {
	Density     float32 `yaml:"Density" json:"Density"`
	Friction    float32 `yaml:"Friction" json:"Friction"`
	Restitution float32 `yaml:"Restitution" json:"Restitution"`
}

type boxCollider2DDoc struct {
	Offset   vec `yaml:"Offset,flow" json:"Offset"`
	Size     vec `yaml:"Size,flow" json:"Size"`
	material `yaml:",inline"`
}

type circleCollider2DDoc struct {
	Offset   vec     `yaml:"Offset,flow" json:"Offset"`
	Radius   float32 `yaml:"Radius" json:"Radius"`
	material `yaml:",inline"`
}

type boxCollider3DDoc struct {
	Offset   vec `yaml:"Offset,flow" json:"Offset"`
	Size     vec `yaml:"Size,flow" json:"Size"`
	material `yaml:",inline"`
}

type sphereCollider3DDoc struct {
	Offset   vec     `yaml:"Offset,flow" json:"Offset"`
	Radius   float32 `yaml:"Radius" json:"Radius"`
	material `yaml:",inline"`
}

type cameraDoc struct {
	Active     bool    `yaml:"Active" json:"Active"`
	Debug      bool    `yaml:"Debug" json:"Debug"`
	Projection string  `yaml:"Projection" json:"Projection"`
	FOV        float32 `yaml:"FOV" json:"FOV"`
	Near       float32 `yaml:"Near" json:"Near"`
	Far        float32 `yaml:"Far" json:"Far"`
}

type scriptDoc struct {
	Path string `yaml:"Path" json:"Path"`
}
