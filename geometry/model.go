package geometry

// Vec3 is an integer vector in model space.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type Quat struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
	W int `json:"w"`
}

// Model is the generated box model of a frame.
type Model struct {
	Nodes  []Node `json:"nodes"`
	Format string `json:"format"`
	LOD    string `json:"lod"`
}

type Node struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Position    Vec3   `json:"position"`
	Orientation Quat   `json:"orientation"`
	Shape       Shape  `json:"shape"`
}

type Shape struct {
	Type          string          `json:"type"`
	Offset        Vec3            `json:"offset"`
	Stretch       Vec3            `json:"stretch"`
	Settings      ShapeSettings   `json:"settings"`
	TextureLayout map[string]Face `json:"textureLayout"`
	UnwrapMode    string          `json:"unwrapMode"`
	Visible       bool            `json:"visible"`
	DoubleSided   bool            `json:"doubleSided"`
	ShadingMode   string          `json:"shadingMode"`
}

type ShapeSettings struct {
	IsPiece     bool `json:"isPiece"`
	Size        Vec3 `json:"size"`
	IsStaticBox bool `json:"isStaticBox"`
}

type Face struct {
	Angle int `json:"angle"`
}

// ModelDepth is the thickness of every generated frame, in pixels.
const ModelDepth = 2

// Model builds the box model: a single static box the size of the texture,
// positioned by the computed y/z positions and shifted by the alignment offsets.
func (g Geometry) Model() Model {
	return Model{
		Nodes: []Node{{
			ID:   "1",
			Name: "cube",
			Position: Vec3{
				X: 0,
				Y: int(g.YPosition),
				Z: int(g.ZPosition),
			},
			Orientation: Quat{W: 1},
			Shape: Shape{
				Type:    "box",
				Offset:  Vec3{X: g.OffsetX, Y: g.OffsetY, Z: g.OffsetZ},
				Stretch: Vec3{X: 1, Y: 1, Z: 1},
				Settings: ShapeSettings{
					Size:        Vec3{X: g.SizeX, Y: g.SizeY, Z: ModelDepth},
					IsStaticBox: true,
				},
				TextureLayout: map[string]Face{
					"back":  {},
					"right": {},
					"front": {},
					"left":  {},
					"top":   {},
				},
				UnwrapMode:  "custom",
				Visible:     true,
				DoubleSided: false,
				ShadingMode: "flat",
			},
		}},
		Format: "prop",
		LOD:    "auto",
	}
}
