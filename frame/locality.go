package frame

import (
	"cmp"
	"math/bits"
	"slices"

	"github.com/google/hilbert"
)

// SortByLocality orders coordinates along a Hilbert curve laid over the X/Z
// plane of their bounding box, so placements that are close in the world are
// listed together. Y breaks ties. The sort is stable.
func SortByLocality(coords []Coords) {
	if len(coords) < 2 {
		return
	}

	minX, maxX := coords[0].X, coords[0].X
	minZ, maxZ := coords[0].Z, coords[0].Z
	for _, c := range coords[1:] {
		minX, maxX = min(minX, c.X), max(maxX, c.X)
		minZ, maxZ = min(minZ, c.Z), max(maxZ, c.Z)
	}

	extent := uint64(max(maxX-minX, maxZ-minZ)) + 1
	side := 1 << bits.Len64(extent-1) // next power of two >= extent
	h, err := hilbert.NewHilbert(max(side, 2))
	if err != nil {
		slices.SortStableFunc(coords, compareXZY)
		return
	}

	codes := make(map[Coords]int, len(coords))
	for _, c := range coords {
		t, err := h.MapInverse(c.X-minX, c.Z-minZ)
		if err != nil {
			t = -1
		}
		codes[c] = t
	}

	slices.SortStableFunc(coords, func(a, b Coords) int {
		return cmp.Or(cmp.Compare(codes[a], codes[b]), cmp.Compare(a.Y, b.Y))
	})
}

func compareXZY(a, b Coords) int {
	return cmp.Or(cmp.Compare(a.X, b.X), cmp.Compare(a.Z, b.Z), cmp.Compare(a.Y, b.Y))
}
