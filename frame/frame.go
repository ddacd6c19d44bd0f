// Package frame provides common frame types, errors and collaborator interfaces.
package frame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// GridStep is the pixel size of one block edge. Textures are padded to it and
// size classes are measured in it.
const GridStep = 32

var (
	ErrDecode           = errors.New("libframes: cannot decode image")
	ErrIO               = errors.New("libframes: i/o failure")
	ErrNotFound         = errors.New("libframes: not found")
	ErrParse            = errors.New("libframes: malformed document")
	ErrInvalidSizeClass = errors.New("libframes: invalid size class")
	ErrInvalidBlocks    = errors.New("libframes: invalid block count")
	ErrPermissionDenied = errors.New("libframes: permission denied")
)

// Coords is a block position in world space.
type Coords struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (c Coords) String() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}

// ParseCoords parses the "x,y,z" form produced by Coords.String.
func ParseCoords(s string) (Coords, error) {
	var c Coords
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &c.X, &c.Y, &c.Z); err != nil {
		return Coords{}, fmt.Errorf("libframes: invalid coords %q: %w", s, err)
	}
	return c, nil
}

// SizeClass groups frame definitions and textures by their footprint in grid steps.
type SizeClass struct {
	W int
	H int
}

// SizeClassOf floor-divides pixel dimensions by step, with a minimum of 1 on each axis.
func SizeClassOf(pixelsW, pixelsH, step int) SizeClass {
	return SizeClass{W: max(1, pixelsW/step), H: max(1, pixelsH/step)}
}

func (s SizeClass) String() string {
	return strconv.Itoa(s.W) + "x" + strconv.Itoa(s.H)
}

func (s SizeClass) Valid() bool {
	return s.W > 0 && s.H > 0
}

// Pixels returns the texture footprint of the size class for the given grid step.
func (s SizeClass) Pixels(step int) (int, int) {
	return s.W * step, s.H * step
}

var sizeClassRegexp = regexp.MustCompile(`(\d+)x(\d+)`)

// ParseSizeClass extracts the first "WxH" group from s, so both "2x3" and
// block ids such as "Frame_2x3" are accepted.
func ParseSizeClass(s string) (SizeClass, error) {
	m := sizeClassRegexp.FindStringSubmatch(s)
	if m == nil {
		return SizeClass{}, fmt.Errorf("%w: %q", ErrInvalidSizeClass, s)
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	size := SizeClass{W: w, H: h}
	if errW != nil || errH != nil || !size.Valid() {
		return SizeClass{}, fmt.Errorf("%w: %q", ErrInvalidSizeClass, s)
	}
	return size, nil
}

// Permissions gates mutating operations on behalf of an actor.
// Implementations live in the host application.
type Permissions interface {
	CanUpload(actor string) bool
	CanDelete(actor string) bool
}

// Applier reloads a freshly generated asset and applies it to a live placement.
// It is implemented by the host; the library only calls it.
type Applier interface {
	Apply(ctx context.Context, assetID string, at Coords) error
}

// Instance is a placement of an asset as seen by visitors.
type Instance struct {
	AssetID string
	Coords  Coords
	BlocksX int
}

type InstanceVisitor interface {
	// VisitInstances calls visitor for every known placement.
	// Order is implementation-defined.
	VisitInstances(visitor func(Instance) error) error
}

// InteractionHint is the hint shown for every generated frame and state.
const InteractionHint = "frames.use_hint"

// MarshalDocument is the stable, human-readable encoding shared by every
// document the library writes: two-space indentation, sorted map keys and a
// trailing newline.
func MarshalDocument(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
