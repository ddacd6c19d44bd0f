// Package geometry computes the model placement of a frame from its texture
// size and requested block width, and builds the model and item descriptors.
//
// Everything here is pure: identical inputs produce byte-identical documents.
package geometry

import (
	"fmt"
	"math"

	"github.com/eak1mov/go-libframes/frame"
)

// Geometry holds the derived placement parameters of one asset.
type Geometry struct {
	PixelsX   int
	PixelsY   int
	BlocksX   int
	Alignment frame.Alignment

	SizeX           int
	SizeY           int
	ZPosition       float32
	YPosition       float32
	ComputedBlocksY int
	ScaleFactor     float32

	OffsetX int
	OffsetY int
	OffsetZ int
}

// Compute derives the geometry of a model sized pixelsX x pixelsY (the padded
// texture) rendered blocksX blocks wide. The vertical block count follows
// from the aspect ratio.
func Compute(pixelsX, pixelsY, blocksX int, alignment frame.Alignment) (Geometry, error) {
	if blocksX < 1 {
		return Geometry{}, fmt.Errorf("%w: blocksX = %d", frame.ErrInvalidBlocks, blocksX)
	}
	if pixelsX < 1 || pixelsY < 1 {
		return Geometry{}, fmt.Errorf("%w: image is %dx%d pixels", frame.ErrInvalidBlocks, pixelsX, pixelsY)
	}

	g := Geometry{
		PixelsX:   pixelsX,
		PixelsY:   pixelsY,
		BlocksX:   blocksX,
		Alignment: alignment,
		SizeX:     max(1, pixelsX),
		SizeY:     max(1, pixelsY),
	}

	g.ZPosition = float32(g.SizeX) / float32(-2*blocksX)
	g.ComputedBlocksY = max(1, round(float32(blocksX)*float32(pixelsY)/float32(pixelsX)))
	g.YPosition = float32(g.SizeY) / (float32(g.ComputedBlocksY) * 2)
	g.ScaleFactor = float32(max(1, blocksX)*frame.GridStep) / float32(pixelsX)

	g.OffsetX, g.OffsetY, g.OffsetZ = offsets(g)
	return g, nil
}

func offsets(g Geometry) (x, y, z int) {
	halfX := float32(g.SizeX) / 2
	halfY := float32(g.SizeY) / 2
	absZ := abs(g.ZPosition)
	absY := abs(g.YPosition)

	left := round(halfX - absZ)
	right := round(-halfX + absZ)
	bottom := round(halfY - absY)
	top := round(-halfY + absY)

	switch g.Alignment {
	case frame.AlignBottomLeft:
		return left, bottom, 0
	case frame.AlignBottomRight:
		return right, bottom, 0
	case frame.AlignBottomCenter:
		return 0, bottom, 0
	case frame.AlignTopLeft:
		return left, top, 0
	case frame.AlignTopCenter:
		return 0, top, 0
	case frame.AlignTopRight:
		return right, top, 0
	default:
		return 0, 0, 0
	}
}

// round rounds half up, so -2.5 becomes -2 rather than -3.
func round(v float32) int {
	return int(math.Floor(float64(v) + 0.5))
}

func abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
