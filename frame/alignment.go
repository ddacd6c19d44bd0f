package frame

import "strings"

// Alignment anchors a generated model relative to the block it is placed on.
type Alignment int

const (
	AlignCenter Alignment = iota // unset: anchored at the geometric center
	AlignBottomLeft
	AlignBottomRight
	AlignBottomCenter
	AlignTopLeft
	AlignTopCenter
	AlignTopRight
)

var alignmentNames = map[Alignment]string{
	AlignCenter:       "",
	AlignBottomLeft:   "BOTTOM_LEFT",
	AlignBottomRight:  "BOTTOM_RIGHT",
	AlignBottomCenter: "BOTTOM_CENTER",
	AlignTopLeft:      "TOP_LEFT",
	AlignTopCenter:    "TOP_CENTER",
	AlignTopRight:     "TOP_RIGHT",
}

// ParseAlignment is case-insensitive. Unknown or empty values yield AlignCenter.
func ParseAlignment(s string) Alignment {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return AlignCenter
	}
	for a, name := range alignmentNames {
		if name == s {
			return a
		}
	}
	return AlignCenter
}

func (a Alignment) String() string {
	return alignmentNames[a]
}

func (a Alignment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Alignment) UnmarshalText(text []byte) error {
	*a = ParseAlignment(string(text))
	return nil
}
