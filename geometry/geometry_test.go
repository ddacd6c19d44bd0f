package geometry_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/geometry"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	g, err := geometry.Compute(1024, 512, 4, frame.AlignBottomLeft)
	require.NoError(t, err)

	want := geometry.Geometry{
		PixelsX:         1024,
		PixelsY:         512,
		BlocksX:         4,
		Alignment:       frame.AlignBottomLeft,
		SizeX:           1024,
		SizeY:           512,
		ZPosition:       -128,
		YPosition:       128,
		ComputedBlocksY: 2,
		ScaleFactor:     0.125,
		OffsetX:         384,
		OffsetY:         128,
		OffsetZ:         0,
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("Compute mismatch (-want +got):\n%v", diff)
	}
}

func TestComputeAlignments(t *testing.T) {
	type offsets struct{ X, Y, Z int }
	for alignment, want := range map[frame.Alignment]offsets{
		frame.AlignCenter:       {0, 0, 0},
		frame.AlignBottomLeft:   {384, 128, 0},
		frame.AlignBottomRight:  {-384, 128, 0},
		frame.AlignBottomCenter: {0, 128, 0},
		frame.AlignTopLeft:      {384, -128, 0},
		frame.AlignTopCenter:    {0, -128, 0},
		frame.AlignTopRight:     {-384, -128, 0},
	} {
		g, err := geometry.Compute(1024, 512, 4, alignment)
		require.NoError(t, err)
		if diff := cmp.Diff(want, offsets{g.OffsetX, g.OffsetY, g.OffsetZ}); diff != "" {
			t.Errorf("Compute(%v) offsets mismatch (-want +got):\n%v", alignment, diff)
		}
	}
}

func TestComputePaddedScenario(t *testing.T) {
	g, err := geometry.Compute(128, 64, 3, frame.AlignCenter)
	require.NoError(t, err)

	if got, want := g.ComputedBlocksY, 2; got != want {
		t.Errorf("ComputedBlocksY = %v, want = %v", got, want)
	}
	if got, want := g.ScaleFactor, float32(0.75); got != want {
		t.Errorf("ScaleFactor = %v, want = %v", got, want)
	}
	if got, want := g.YPosition, float32(16); got != want {
		t.Errorf("YPosition = %v, want = %v", got, want)
	}
}

func TestComputeInvalid(t *testing.T) {
	for _, tc := range []struct{ px, py, blocks int }{
		{128, 64, 0},
		{128, 64, -1},
		{0, 64, 2},
	} {
		if _, err := geometry.Compute(tc.px, tc.py, tc.blocks, frame.AlignCenter); !errors.Is(err, frame.ErrInvalidBlocks) {
			t.Errorf("Compute(%v) error = %v, want ErrInvalidBlocks", tc, err)
		}
	}
}

func TestDocumentsDeterministic(t *testing.T) {
	params := geometry.ItemParams{
		Name:          "Cat",
		ModelRef:      "models/Cat.model.json",
		TextureRef:    "textures/32x16/Cat.png",
		ParticleColor: "#684127",
	}

	encode := func() ([]byte, []byte) {
		g, err := geometry.Compute(1024, 512, 4, frame.AlignBottomLeft)
		require.NoError(t, err)
		model, err := frame.MarshalDocument(g.Model())
		require.NoError(t, err)
		item, err := frame.MarshalDocument(g.Item(params))
		require.NoError(t, err)
		return model, item
	}

	model1, item1 := encode()
	model2, item2 := encode()
	if !bytes.Equal(model1, model2) {
		t.Errorf("model documents differ between runs")
	}
	if !bytes.Equal(item1, item2) {
		t.Errorf("item documents differ between runs")
	}

	var model geometry.Model
	require.NoError(t, json.Unmarshal(model1, &model))
	require.Len(t, model.Nodes, 1)
	node := model.Nodes[0]
	if diff := cmp.Diff(geometry.Vec3{X: 0, Y: 128, Z: -128}, node.Position); diff != "" {
		t.Errorf("model position mismatch (-want +got):\n%v", diff)
	}
	if diff := cmp.Diff(geometry.Vec3{X: 384, Y: 128, Z: 0}, node.Shape.Offset); diff != "" {
		t.Errorf("model offset mismatch (-want +got):\n%v", diff)
	}
	if diff := cmp.Diff(geometry.Vec3{X: 1024, Y: 512, Z: geometry.ModelDepth}, node.Shape.Settings.Size); diff != "" {
		t.Errorf("model size mismatch (-want +got):\n%v", diff)
	}
	if got, want := node.Shape.UnwrapMode, "custom"; got != want {
		t.Errorf("UnwrapMode = %q, want = %q", got, want)
	}

	var item geometry.Item
	require.NoError(t, json.Unmarshal(item1, &item))
	if got, want := item.BlockType.CustomModelScale, float32(0.125); got != want {
		t.Errorf("CustomModelScale = %v, want = %v", got, want)
	}
	if diff := cmp.Diff([]geometry.TextureRef{{Texture: params.TextureRef}}, item.BlockType.CustomModelTexture); diff != "" {
		t.Errorf("CustomModelTexture mismatch (-want +got):\n%v", diff)
	}
	if got, want := item.BlockType.CustomModel, params.ModelRef; got != want {
		t.Errorf("CustomModel = %q, want = %q", got, want)
	}
	if bytes.Contains(item1, []byte("Recipe")) {
		t.Errorf("item descriptor must not embed a recipe")
	}
}
