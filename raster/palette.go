package raster

import (
	"cmp"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
)

// DefaultParticleColor is used when no colour can be extracted.
const DefaultParticleColor = "#684127"

type PaletteMethod int

const (
	PaletteDominantColor PaletteMethod = iota
	PaletteKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod returns false for unknown names.
func ParsePaletteMethod(s string) (PaletteMethod, bool) {
	switch s {
	case "", "dominantcolor":
		return PaletteDominantColor, true
	case "kmeans":
		return PaletteKMeans, true
	}
	return PaletteDominantColor, false
}

// ParticleColor returns the dominant opaque colour of img as "#rrggbb".
// Transparent padding is ignored.
func ParticleColor(img image.Image, method PaletteMethod) string {
	var c color.Color
	var ok bool
	switch method {
	case PaletteKMeans:
		c, ok = kmeansColor(img)
	default:
		c, ok = dominantColor(img)
	}
	if !ok {
		return DefaultParticleColor
	}
	col, ok := colorful.MakeColor(c)
	if !ok {
		return DefaultParticleColor
	}
	return col.Clamped().Hex()
}

func dominantColor(img image.Image) (color.Color, bool) {
	candidates := dominantcolor.FindWeight(img, paletteClusters)
	if len(candidates) == 0 {
		return nil, false
	}
	best := slices.MaxFunc(candidates, func(a, b dominantcolor.Color) int {
		return cmp.Compare(a.Weight, b.Weight)
	})
	c := best.RGBA
	c.A = 255
	return c, true
}

// kmeansColor runs k-means over the opaque pixels, seeded from the
// dominantcolor candidates in order of weight. Both the seeds and the
// iterations are deterministic, so the same image always yields the same
// colour.
func kmeansColor(img image.Image) (color.Color, bool) {
	dataset := samplePixels(img)
	if len(dataset) == 0 {
		return nil, false
	}

	cc := seedClusters(img, dataset)
	assigned := make([]int, len(dataset))
	for i := range maxKMeansIterations {
		cc.Reset()
		changes := 0
		for p, point := range dataset {
			ci := cc.Nearest(point)
			cc[ci].Append(point)
			if assigned[p] != ci {
				assigned[p] = ci
				changes++
			}
		}
		if i > 0 && changes == 0 {
			break
		}
		cc.Recenter()
	}

	// MaxFunc keeps the first of equally populated clusters.
	best := slices.MaxFunc(cc, func(a, b clusters.Cluster) int {
		return cmp.Compare(len(a.Observations), len(b.Observations))
	})
	if len(best.Observations) == 0 || len(best.Center) < 3 {
		return nil, false
	}
	return colorful.Color{R: best.Center[0], G: best.Center[1], B: best.Center[2]}.Clamped(), true
}

const (
	paletteClusters     = 4
	maxKMeansIterations = 96
)

// samplePixels returns the opaque pixels of img as RGB coordinates in [0, 1],
// subsampled on a regular grid for large images.
func samplePixels(img image.Image) clusters.Observations {
	b := img.Bounds()

	const maxSamples = 12000
	step := 1
	if b.Dx()*b.Dy() > maxSamples {
		step = int(math.Sqrt(float64(b.Dx()*b.Dy())/maxSamples)) + 1
	}

	var dataset clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 65535.0,
				float64(g) / 65535.0,
				float64(bl) / 65535.0,
			})
		}
	}
	return dataset
}

// seedClusters places the initial centers on the dominantcolor candidates,
// heaviest first. Without candidates, points spread evenly over the dataset
// are used instead.
func seedClusters(img image.Image, dataset clusters.Observations) clusters.Clusters {
	candidates := dominantcolor.FindWeight(img, paletteClusters)
	slices.SortStableFunc(candidates, func(a, b dominantcolor.Color) int {
		return cmp.Or(
			cmp.Compare(b.Weight, a.Weight),
			cmp.Compare(dominantcolor.Hex(a.RGBA), dominantcolor.Hex(b.RGBA)),
		)
	})

	var cc clusters.Clusters
	for _, c := range candidates {
		cc = append(cc, clusters.Cluster{Center: clusters.Coordinates{
			float64(c.R) / 255.0,
			float64(c.G) / 255.0,
			float64(c.B) / 255.0,
		}})
	}
	if len(cc) > 0 {
		return cc
	}

	k := min(paletteClusters, len(dataset))
	for i := range k {
		cc = append(cc, clusters.Cluster{Center: dataset[i*len(dataset)/k].Coordinates()})
	}
	return cc
}
