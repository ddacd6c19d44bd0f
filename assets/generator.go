// Package assets generates placeable frame assets from images: the padded
// texture, the model descriptor and the item descriptor.
package assets

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/eak1mov/go-libframes/definitions"
	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/geometry"
	"github.com/eak1mov/go-libframes/layout"
	"github.com/eak1mov/go-libframes/raster"
)

// DefaultAssetPrefix prefixes every asset id.
const DefaultAssetPrefix = "Frame"

const (
	stateSuffixLength = 4
	maxKeyAttempts    = 64
)

// Asset describes the files written for one generated asset.
type Asset struct {
	ID          string
	Name        string
	SizeClass   frame.SizeClass
	Geometry    geometry.Geometry
	TexturePath string
	ModelPath   string
	ItemPath    string
}

type Generator struct {
	layout        layout.Layout
	definitions   *definitions.Manager
	rand          io.Reader
	paletteMethod raster.PaletteMethod
	assetPrefix   string
	gridStep      int
	icon          string
	dropOnBreak   string
	logger        *slog.Logger
}

type generatorConfig struct {
	Rand          io.Reader
	PaletteMethod raster.PaletteMethod
	AssetPrefix   string
	GridStep      int
	Icon          string
	DropOnBreak   string
	Logger        *slog.Logger
}

type Option func(*generatorConfig)

// WithRand sets the source of random names. Defaults to crypto/rand.
func WithRand(r io.Reader) Option {
	return func(c *generatorConfig) { c.Rand = r }
}

func WithPaletteMethod(m raster.PaletteMethod) Option {
	return func(c *generatorConfig) { c.PaletteMethod = m }
}

func WithAssetPrefix(prefix string) Option {
	return func(c *generatorConfig) { c.AssetPrefix = prefix }
}

func WithGridStep(step int) Option {
	return func(c *generatorConfig) { c.GridStep = step }
}

// WithIcon sets the inventory icon of generated items.
func WithIcon(icon string) Option {
	return func(c *generatorConfig) { c.Icon = icon }
}

// WithDropOnBreak sets the item dropped when a generated frame is broken.
func WithDropOnBreak(itemID string) Option {
	return func(c *generatorConfig) { c.DropOnBreak = itemID }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *generatorConfig) { c.Logger = logger }
}

// NewGenerator creates a generator writing below l. defs is only used by
// CreateState and may be nil otherwise.
func NewGenerator(l layout.Layout, defs *definitions.Manager, opts ...Option) *Generator {
	config := generatorConfig{
		PaletteMethod: raster.PaletteDominantColor,
		AssetPrefix:   DefaultAssetPrefix,
		GridStep:      frame.GridStep,
		Logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.GridStep <= 0 {
		config.GridStep = frame.GridStep
	}
	return &Generator{
		layout:        l,
		definitions:   defs,
		rand:          config.Rand,
		paletteMethod: config.PaletteMethod,
		assetPrefix:   config.AssetPrefix,
		gridStep:      config.GridStep,
		icon:          config.Icon,
		dropOnBreak:   config.DropOnBreak,
		logger:        config.Logger,
	}
}

// AssetID returns the id of the asset generated under name.
func (g *Generator) AssetID(name string) string {
	return g.assetPrefix + "_" + name
}

func (g *Generator) name(providedName string) (string, error) {
	if name := NormalizeName(providedName); name != "" {
		return name, nil
	}
	name, err := RandomName(g.rand, RandomNameLength)
	if err != nil {
		return "", fmt.Errorf("%w: random name: %w", frame.ErrIO, err)
	}
	return name, nil
}

// CreateAsset pads img to the grid, saves it as the texture of its size class
// and writes the model and item descriptors. Files written before a failure
// are left in place.
func (g *Generator) CreateAsset(img *image.NRGBA, providedName string, blocksX int, alignment frame.Alignment) (Asset, error) {
	padded := raster.PadToGrid(img, g.gridStep)
	b := padded.Bounds()

	geom, err := geometry.Compute(b.Dx(), b.Dy(), blocksX, alignment)
	if err != nil {
		return Asset{}, err
	}

	name, err := g.name(providedName)
	if err != nil {
		return Asset{}, err
	}
	size := frame.SizeClassOf(b.Dx(), b.Dy(), g.gridStep)

	texturePath := g.layout.Texture(size, name)
	if _, err := raster.Save(padded, filepath.Dir(texturePath), filepath.Base(texturePath)); err != nil {
		return Asset{}, err
	}

	modelPath := g.layout.Model(name)
	if err := writeDocument(modelPath, geom.Model()); err != nil {
		return Asset{}, err
	}

	itemPath := g.layout.Item(name)
	item := geom.Item(geometry.ItemParams{
		Name:          name,
		ModelRef:      g.layout.ModelRef(name),
		TextureRef:    g.layout.TextureRef(size, name),
		ParticleColor: raster.ParticleColor(padded, g.paletteMethod),
		Icon:          g.icon,
		DropOnBreak:   g.dropOnBreak,
	})
	if err := writeDocument(itemPath, item); err != nil {
		return Asset{}, err
	}

	asset := Asset{
		ID:          g.AssetID(name),
		Name:        name,
		SizeClass:   size,
		Geometry:    geom,
		TexturePath: texturePath,
		ModelPath:   modelPath,
		ItemPath:    itemPath,
	}
	g.logger.Info("libframes: asset created",
		"asset", asset.ID, "size", size.String(), "blocks_x", blocksX, "alignment", alignment.String())
	return asset, nil
}

// CreateState resizes img to the footprint of size, saves it as a texture of
// that size class and registers it as a new state. The state key is the
// normalized name with a random suffix that is unique within the document.
func (g *Generator) CreateState(img image.Image, size frame.SizeClass, providedName string) (string, error) {
	if g.definitions == nil {
		return "", fmt.Errorf("libframes: generator has no definitions manager")
	}
	if !size.Valid() {
		return "", fmt.Errorf("%w: %v", frame.ErrInvalidSizeClass, size)
	}

	doc, err := g.definitions.LoadOrCreate(size)
	if err != nil {
		return "", err
	}

	base, err := g.name(providedName)
	if err != nil {
		return "", err
	}
	key, err := g.uniqueKey(doc, base)
	if err != nil {
		return "", err
	}

	w, h := size.Pixels(g.gridStep)
	texturePath := g.layout.Texture(size, key)
	if _, err := raster.Save(raster.Resize(img, w, h), filepath.Dir(texturePath), filepath.Base(texturePath)); err != nil {
		return "", err
	}

	doc.AddState(key, g.layout.TextureRef(size, key))
	if err := g.definitions.Save(doc, size); err != nil {
		return "", err
	}
	g.logger.Info("libframes: state created", "size", size.String(), "key", key)
	return key, nil
}

func (g *Generator) uniqueKey(doc *definitions.Document, base string) (string, error) {
	for range maxKeyAttempts {
		suffix, err := RandomName(g.rand, stateSuffixLength)
		if err != nil {
			return "", fmt.Errorf("%w: random name: %w", frame.ErrIO, err)
		}
		key := base + "_" + suffix
		if _, exists := doc.State(key); !exists {
			return key, nil
		}
	}
	return "", fmt.Errorf("libframes: no free state key for %q", base)
}

func writeDocument(filePath string, v any) error {
	data, err := frame.MarshalDocument(v)
	if err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	return layout.WriteFile(filePath, data)
}
