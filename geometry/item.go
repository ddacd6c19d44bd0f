package geometry

import "github.com/eak1mov/go-libframes/frame"

// UseInteraction is the interaction bound to the "Use" action of every frame.
const UseInteraction = "Frames_UseFrameInteraction"

// Item is the placeable item descriptor of a generated frame.
// Generated items carry no crafting recipe.
type Item struct {
	TranslationProperties TranslationProperties `json:"TranslationProperties"`
	Categories            []string              `json:"Categories"`
	BlockType             ItemBlockType         `json:"BlockType"`
	PlayerAnimationsID    string                `json:"PlayerAnimationsId"`
	IconProperties        IconProperties        `json:"IconProperties"`
	ResourceTypes         []string              `json:"ResourceTypes"`
	Tags                  map[string]string     `json:"Tags"`
	Icon                  string                `json:"Icon,omitempty"`
	DropOnBreak           string                `json:"DropOnBreak,omitempty"`
}

type TranslationProperties struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

type ItemBlockType struct {
	InteractionHint    string                     `json:"InteractionHint"`
	Material           string                     `json:"Material"`
	DrawType           string                     `json:"DrawType"`
	Opacity            string                     `json:"Opacity"`
	CustomModel        string                     `json:"CustomModel"`
	Flags              BlockFlags                 `json:"Flags"`
	CustomModelTexture []TextureRef               `json:"CustomModelTexture"`
	HitboxType         string                     `json:"HitboxType"`
	VariantRotation    string                     `json:"VariantRotation"`
	BlockParticleSetID string                     `json:"BlockParticleSetId"`
	BlockSoundSetID    string                     `json:"BlockSoundSetId"`
	ParticleColor      string                     `json:"ParticleColor"`
	Interactions       map[string]InteractionList `json:"Interactions"`
	CustomModelScale   float32                    `json:"CustomModelScale"`
}

type BlockFlags struct {
	IsUsable bool `json:"IsUsable"`
}

// TextureRef points at a texture file relative to the layout root.
type TextureRef struct {
	Texture string `json:"Texture"`
}

type InteractionList struct {
	Interactions []Interaction `json:"Interactions"`
}

type Interaction struct {
	Type string `json:"Type"`
}

type IconProperties struct {
	Scale       float64    `json:"Scale"`
	Rotation    [3]float64 `json:"Rotation"`
	Translation [2]float64 `json:"Translation"`
}

// ItemParams carries the references an item descriptor points at.
type ItemParams struct {
	Name          string
	ModelRef      string
	TextureRef    string
	ParticleColor string
	Icon          string
	DropOnBreak   string
}

// Item builds the item descriptor. The model is rendered at ScaleFactor so
// the pixel-sized geometry covers the requested block footprint.
func (g Geometry) Item(p ItemParams) Item {
	return Item{
		TranslationProperties: TranslationProperties{
			Name:        "frames." + p.Name + ".name",
			Description: "frames." + p.Name + ".description",
		},
		Categories: []string{"Blocks.Deco"},
		BlockType: ItemBlockType{
			InteractionHint:    frame.InteractionHint,
			Material:           "Solid",
			DrawType:           "Model",
			Opacity:            "Transparent",
			CustomModel:        p.ModelRef,
			Flags:              BlockFlags{IsUsable: true},
			CustomModelTexture: []TextureRef{{Texture: p.TextureRef}},
			HitboxType:         "Painting",
			VariantRotation:    "NESW",
			BlockParticleSetID: "Wood",
			BlockSoundSetID:    "Wood",
			ParticleColor:      p.ParticleColor,
			Interactions: map[string]InteractionList{
				"Use": {Interactions: []Interaction{{Type: UseInteraction}}},
			},
			CustomModelScale: g.ScaleFactor,
		},
		PlayerAnimationsID: "Block",
		IconProperties: IconProperties{
			Scale:       0.68,
			Rotation:    [3]float64{22.5, 45, 22.5},
			Translation: [2]float64{8.5, -19.7},
		},
		ResourceTypes: []string{},
		Tags:          map[string]string{},
		Icon:          p.Icon,
		DropOnBreak:   p.DropOnBreak,
	}
}
