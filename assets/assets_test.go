package assets_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/eak1mov/go-libframes/assets"
	"github.com/eak1mov/go-libframes/definitions"
	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/geometry"
	"github.com/eak1mov/go-libframes/internal"
	"github.com/eak1mov/go-libframes/layout"
	"github.com/eak1mov/go-libframes/raster"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var green = color.NRGBA{G: 200, A: 255}

func TestNormalizeName(t *testing.T) {
	for _, tc := range []struct{ input, want string }{
		{"sunset", "Sunset"},
		{"  my   old photo ", "My_old_photo"},
		{"fancy-name", "Fancy"},
		{"42-river", "River"},
		{"already_Capital", "Already_Capital"},
		{"x", "X"},
		{"", ""},
		{"   ", ""},
		{"!!! 123", ""},
		{"über alles", "Ber_alles"},
	} {
		if got := assets.NormalizeName(tc.input); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want = %q", tc.input, got, tc.want)
		}
	}
}

func TestRandomName(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z][a-z0-9]{7}$`)
	for range 20 {
		name, err := assets.RandomName(nil, assets.RandomNameLength)
		require.NoError(t, err)
		if !re.MatchString(name) {
			t.Errorf("RandomName() = %q, want match of %v", name, re)
		}
	}

	name, err := assets.RandomName(bytes.NewReader(make([]byte, 8)), 8)
	require.NoError(t, err)
	if name != "Aaaaaaaa" {
		t.Errorf("RandomName(zeros) = %q, want = %q", name, "Aaaaaaaa")
	}
}

func TestRandomNameRejectsBiasedBytes(t *testing.T) {
	// 240 and 255 fall in the incomplete last round of the alphabets and are skipped.
	name, err := assets.RandomName(bytes.NewReader([]byte{240, 27, 255, 1, 35}), 3)
	require.NoError(t, err)
	if name != "Bb9" {
		t.Errorf("RandomName() = %q, want = %q", name, "Bb9")
	}

	_, err = assets.RandomName(bytes.NewReader([]byte{255, 255, 255}), 2)
	require.Error(t, err)
}

func newGenerator(t *testing.T, opts ...assets.Option) (*assets.Generator, layout.Layout) {
	t.Helper()
	l := layout.Default(t.TempDir())
	return assets.NewGenerator(l, definitions.NewManager(l), opts...), l
}

func TestCreateAssetScenario(t *testing.T) {
	g, l := newGenerator(t)

	asset, err := g.CreateAsset(internal.NewImage(100, 50, green), "Sunset over sea", 3, frame.AlignBottomLeft)
	require.NoError(t, err)

	if asset.ID != "Frame_Sunset_over_sea" {
		t.Errorf("ID = %v, want = %v", asset.ID, "Frame_Sunset_over_sea")
	}
	if asset.SizeClass.String() != "4x2" {
		t.Errorf("SizeClass = %v, want = 4x2", asset.SizeClass)
	}
	if asset.Geometry.PixelsX != 128 || asset.Geometry.PixelsY != 64 {
		t.Errorf("pixels = %vx%v, want = 128x64", asset.Geometry.PixelsX, asset.Geometry.PixelsY)
	}
	if asset.Geometry.ComputedBlocksY != 2 {
		t.Errorf("ComputedBlocksY = %v, want = 2", asset.Geometry.ComputedBlocksY)
	}

	require.Equal(t, l.Texture(asset.SizeClass, asset.Name), asset.TexturePath)
	require.FileExists(t, asset.TexturePath)
	require.FileExists(t, asset.ModelPath)
	require.FileExists(t, asset.ItemPath)

	data, err := os.ReadFile(asset.TexturePath)
	require.NoError(t, err)
	texture, err := raster.Decode(data)
	require.NoError(t, err)
	require.Equal(t, 128, texture.Bounds().Dx())
	require.Equal(t, 64, texture.Bounds().Dy())

	data, err = os.ReadFile(asset.ItemPath)
	require.NoError(t, err)
	var item geometry.Item
	require.NoError(t, json.Unmarshal(data, &item))
	want := []geometry.TextureRef{{Texture: "textures/4x2/Sunset_over_sea.png"}}
	if diff := cmp.Diff(want, item.BlockType.CustomModelTexture); diff != "" {
		t.Errorf("CustomModelTexture mismatch (-want +got):\n%s", diff)
	}
	if item.BlockType.CustomModel != "models/Sunset_over_sea.model.json" {
		t.Errorf("CustomModel = %v", item.BlockType.CustomModel)
	}
	if item.BlockType.CustomModelScale != asset.Geometry.ScaleFactor {
		t.Errorf("CustomModelScale = %v, want = %v", item.BlockType.CustomModelScale, asset.Geometry.ScaleFactor)
	}
	require.Regexp(t, `^#[0-9a-f]{6}$`, item.BlockType.ParticleColor)
}

func TestCreateAssetOptions(t *testing.T) {
	g, _ := newGenerator(t,
		assets.WithAssetPrefix("Boff_Frame"),
		assets.WithPaletteMethod(raster.PaletteKMeans),
		assets.WithIcon("Icons/Frame.png"),
		assets.WithDropOnBreak("Boff_Frame_1x1"),
	)

	asset, err := g.CreateAsset(internal.NewImage(32, 32, green), "---", 1, frame.AlignCenter)
	require.NoError(t, err)
	require.Regexp(t, `^Boff_Frame_[A-Z][a-z0-9]{7}$`, asset.ID)

	data, err := os.ReadFile(asset.ItemPath)
	require.NoError(t, err)
	var item geometry.Item
	require.NoError(t, json.Unmarshal(data, &item))
	require.Equal(t, "Icons/Frame.png", item.Icon)
	require.Equal(t, "Boff_Frame_1x1", item.DropOnBreak)
	require.Equal(t, "#00c800", item.BlockType.ParticleColor)
}

func TestCreateAssetDeterministic(t *testing.T) {
	img := internal.NewCheckerImage(100, 50, 7, green, color.NRGBA{R: 180, G: 40, B: 90, A: 255})
	img.SetNRGBA(5, 5, color.NRGBA{B: 255, A: 255})

	for _, method := range []raster.PaletteMethod{raster.PaletteDominantColor, raster.PaletteKMeans} {
		var items, models [][]byte
		for range 4 {
			g, _ := newGenerator(t, assets.WithPaletteMethod(method))
			asset, err := g.CreateAsset(img, "same", 3, frame.AlignBottomLeft)
			require.NoError(t, err)

			item, err := os.ReadFile(asset.ItemPath)
			require.NoError(t, err)
			model, err := os.ReadFile(asset.ModelPath)
			require.NoError(t, err)
			items = append(items, item)
			models = append(models, model)
		}
		for i := 1; i < len(items); i++ {
			if diff := cmp.Diff(string(items[0]), string(items[i])); diff != "" {
				t.Errorf("%v: item document %d differs (-first +got):\n%s", method, i, diff)
			}
			if !bytes.Equal(models[0], models[i]) {
				t.Errorf("%v: model document %d differs", method, i)
			}
		}
	}
}

func TestCreateAssetInvalidBlocks(t *testing.T) {
	g, l := newGenerator(t)

	_, err := g.CreateAsset(internal.NewImage(32, 32, green), "Bad", 0, frame.AlignCenter)
	if !errors.Is(err, frame.ErrInvalidBlocks) {
		t.Errorf("CreateAsset() error = %v, want ErrInvalidBlocks", err)
	}
	require.NoFileExists(t, l.Texture(frame.SizeClass{W: 1, H: 1}, "Bad"))
}

func TestCreateAssetWriteFailure(t *testing.T) {
	g, l := newGenerator(t)
	// A file where the models directory should be.
	require.NoError(t, os.WriteFile(filepath.Dir(l.Model("x")), nil, 0644))

	_, err := g.CreateAsset(internal.NewImage(32, 32, green), "Broken", 1, frame.AlignCenter)
	if !errors.Is(err, frame.ErrIO) {
		t.Errorf("CreateAsset() error = %v, want ErrIO", err)
	}
}

func TestCreateState(t *testing.T) {
	g, l := newGenerator(t)
	size := frame.SizeClass{W: 2, H: 1}

	key, err := g.CreateState(internal.NewImage(10, 10, green), size, "Cat")
	require.NoError(t, err)
	require.Regexp(t, `^Cat_[A-Z][a-z0-9]{3}$`, key)

	data, err := os.ReadFile(l.Texture(size, key))
	require.NoError(t, err)
	texture, err := raster.Decode(data)
	require.NoError(t, err)
	require.Equal(t, 64, texture.Bounds().Dx())
	require.Equal(t, 32, texture.Bounds().Dy())

	states, err := definitions.NewManager(l).States(size)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{key}, states); diff != "" {
		t.Errorf("States() mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateStateUniqueKeys(t *testing.T) {
	g, l := newGenerator(t)
	size := frame.SizeClass{W: 1, H: 1}

	seen := map[string]bool{}
	for range 5 {
		key, err := g.CreateState(internal.NewImage(32, 32, green), size, "Same")
		require.NoError(t, err)
		require.False(t, seen[key], "duplicate key %v", key)
		seen[key] = true
	}
	states, err := definitions.NewManager(l).States(size)
	require.NoError(t, err)
	require.Len(t, states, 5)
}
