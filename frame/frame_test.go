package frame_test

import (
	"errors"
	"testing"

	"github.com/eak1mov/go-libframes/frame"
	"github.com/google/go-cmp/cmp"
)

func TestSizeClassOf(t *testing.T) {
	for _, tc := range []struct {
		w, h int
		want string
	}{
		{128, 64, "4x2"},
		{100, 50, "3x1"},
		{10, 10, "1x1"},
		{0, 0, "1x1"},
		{1024, 512, "32x16"},
	} {
		if got := frame.SizeClassOf(tc.w, tc.h, frame.GridStep).String(); got != tc.want {
			t.Errorf("SizeClassOf(%d, %d) = %q, want = %q", tc.w, tc.h, got, tc.want)
		}
	}
}

func TestParseSizeClass(t *testing.T) {
	for input, want := range map[string]frame.SizeClass{
		"4x2":           {W: 4, H: 2},
		"Frame_2x3":     {W: 2, H: 3},
		"Frame_10x1_v2": {W: 10, H: 1},
	} {
		got, err := frame.ParseSizeClass(input)
		if err != nil {
			t.Errorf("ParseSizeClass(%q) failed: %v", input, err)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ParseSizeClass(%q) mismatch (-want +got):\n%v", input, diff)
		}
	}

	for _, input := range []string{"", "big", "0x3", "x2"} {
		if _, err := frame.ParseSizeClass(input); !errors.Is(err, frame.ErrInvalidSizeClass) {
			t.Errorf("ParseSizeClass(%q) error = %v, want ErrInvalidSizeClass", input, err)
		}
	}
}

func TestParseCoords(t *testing.T) {
	c := frame.Coords{X: 10, Y: -20, Z: 30}
	got, err := frame.ParseCoords(c.String())
	if err != nil {
		t.Fatalf("ParseCoords failed: %v", err)
	}
	if got != c {
		t.Errorf("ParseCoords(%q) = %v, want = %v", c.String(), got, c)
	}
	if _, err := frame.ParseCoords("1,2"); err == nil {
		t.Errorf("ParseCoords(\"1,2\") expected error")
	}
}

func TestParseAlignment(t *testing.T) {
	for input, want := range map[string]frame.Alignment{
		"":              frame.AlignCenter,
		"bottom_left":   frame.AlignBottomLeft,
		"BOTTOM_RIGHT":  frame.AlignBottomRight,
		" top_center ":  frame.AlignTopCenter,
		"Top_Right":     frame.AlignTopRight,
		"sideways":      frame.AlignCenter,
		"BOTTOM_CENTER": frame.AlignBottomCenter,
	} {
		if got := frame.ParseAlignment(input); got != want {
			t.Errorf("ParseAlignment(%q) = %v, want = %v", input, got, want)
		}
	}

	text, err := frame.AlignTopLeft.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if got, want := string(text), "TOP_LEFT"; got != want {
		t.Errorf("MarshalText = %q, want = %q", got, want)
	}
}

func TestSortByLocality(t *testing.T) {
	coords := []frame.Coords{
		{X: 100, Y: 0, Z: 100},
		{X: 0, Y: 5, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 101, Y: 0, Z: 100},
	}
	frame.SortByLocality(coords)

	want := []frame.Coords{
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 5, Z: 0},
		{X: 1, Y: 0, Z: 0},
	}
	if diff := cmp.Diff(want, coords[:3]); diff != "" {
		t.Errorf("SortByLocality head mismatch (-want +got):\n%v", diff)
	}

	// Far points stay adjacent to each other.
	tail := map[frame.Coords]bool{coords[3]: true, coords[4]: true}
	if !tail[frame.Coords{X: 100, Y: 0, Z: 100}] || !tail[frame.Coords{X: 101, Y: 0, Z: 100}] {
		t.Errorf("SortByLocality tail = %v", coords[3:])
	}
}
