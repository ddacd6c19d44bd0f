package definitions_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/eak1mov/go-libframes/definitions"
	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/layout"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var size2x1 = frame.SizeClass{W: 2, H: 1}

func newManager(t *testing.T, opts ...definitions.Option) (*definitions.Manager, layout.Layout) {
	t.Helper()
	l := layout.Default(t.TempDir())
	return definitions.NewManager(l, opts...), l
}

func TestLoadOrCreateSeedsTemplate(t *testing.T) {
	m, l := newManager(t)

	doc, err := m.LoadOrCreate(size2x1)
	require.NoError(t, err)
	require.FileExists(t, l.Definition(size2x1))
	if got := len(doc.Definitions()); got != 0 {
		t.Errorf("len(Definitions()) = %v, want = 0", got)
	}
}

func TestLoadMissing(t *testing.T) {
	m, _ := newManager(t)

	if _, err := m.Load(size2x1); !errors.Is(err, frame.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	m, l := newManager(t)
	require.NoError(t, layout.WriteFile(l.Definition(size2x1), []byte("{not json")))

	if _, err := m.LoadOrCreate(size2x1); !errors.Is(err, frame.ErrParse) {
		t.Errorf("LoadOrCreate() error = %v, want ErrParse", err)
	}
}

func TestTemplateLookup(t *testing.T) {
	templates := fstest.MapFS{
		"1x1.json":     {Data: []byte(`{"Kind":"small","BlockType":{}}`)},
		"default.json": {Data: []byte(`{"Kind":"default"}`)},
	}
	m, l := newManager(t, definitions.WithTemplates(templates))

	for size, want := range map[frame.SizeClass]string{
		{W: 1, H: 1}: "small",
		{W: 3, H: 2}: "default",
	} {
		_, err := m.LoadOrCreate(size)
		require.NoError(t, err)

		data, err := os.ReadFile(l.Definition(size))
		require.NoError(t, err)
		var got struct{ Kind string }
		require.NoError(t, json.Unmarshal(data, &got))
		if got.Kind != want {
			t.Errorf("template for %v = %v, want = %v", size, got.Kind, want)
		}
	}
}

func TestTemplateMissing(t *testing.T) {
	m, l := newManager(t, definitions.WithTemplates(fstest.MapFS{}))

	if _, err := m.LoadOrCreate(size2x1); !errors.Is(err, frame.ErrIO) {
		t.Errorf("LoadOrCreate() error = %v, want ErrIO", err)
	}
	require.NoFileExists(t, l.Definition(size2x1))
}

func TestAddRemoveRoundTrip(t *testing.T) {
	m, l := newManager(t)
	texture := l.TextureRef(size2x1, "Sunset")
	require.NoError(t, os.MkdirAll(l.TextureDir(size2x1), 0755))
	require.NoError(t, os.WriteFile(l.Texture(size2x1, "Sunset"), []byte("png"), 0644))

	require.NoError(t, m.AddState(size2x1, "Sunset", texture))
	doc, err := m.Load(size2x1)
	require.NoError(t, err)
	original, ok := doc.State("Sunset")
	require.True(t, ok)

	removed, err := m.RemoveState(size2x1, "Sunset")
	require.NoError(t, err)
	require.True(t, removed)
	require.NoFileExists(t, l.Texture(size2x1, "Sunset"))

	require.NoError(t, m.AddState(size2x1, "Sunset", texture))
	doc, err = m.Load(size2x1)
	require.NoError(t, err)
	restored, ok := doc.State("Sunset")
	require.True(t, ok)

	want, err := json.Marshal(original)
	require.NoError(t, err)
	got, err := json.Marshal(restored)
	require.NoError(t, err)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveUnknownKey(t *testing.T) {
	m, l := newManager(t)
	require.NoError(t, m.AddState(size2x1, "Known", l.TextureRef(size2x1, "Known")))

	filePath := l.Definition(size2x1)
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(filePath, past, past))
	before, err := os.ReadFile(filePath)
	require.NoError(t, err)

	removed, err := m.RemoveState(size2x1, "nonexistent")
	require.NoError(t, err)
	require.False(t, removed)

	after, err := os.ReadFile(filePath)
	require.NoError(t, err)
	if diff := cmp.Diff(string(before), string(after)); diff != "" {
		t.Errorf("document changed (-want +got):\n%s", diff)
	}
	info, err := os.Stat(filePath)
	require.NoError(t, err)
	if !info.ModTime().Equal(past) {
		t.Errorf("ModTime() = %v, want = %v", info.ModTime(), past)
	}
}

func TestRemoveStateWithoutDocument(t *testing.T) {
	m, l := newManager(t)

	removed, err := m.RemoveState(size2x1, "Any")
	require.NoError(t, err)
	require.False(t, removed)
	require.NoFileExists(t, l.Definition(size2x1))
}

func TestRemoveStateKeepsForeignTexture(t *testing.T) {
	m, l := newManager(t)
	foreign := filepath.Join(l.Root, "keep.png")
	require.NoError(t, os.WriteFile(foreign, []byte("png"), 0644))

	require.NoError(t, m.AddState(size2x1, "Foreign", "keep.png"))
	removed, err := m.RemoveState(size2x1, "Foreign")
	require.NoError(t, err)
	require.True(t, removed)
	require.FileExists(t, foreign)
}

func TestUnknownFieldsPreserved(t *testing.T) {
	m, l := newManager(t)
	input := `{
  "BlockType": {
    "Material": "Solid",
    "State": {
      "Definitions": {
        "Old": {"CustomModelTexture": [{"Texture": "textures/2x1/Old.png"}], "InteractionHint": "x", "Weight": 3}
      },
      "Default": "Old"
    }
  },
  "Recipe": {"Input": []}
}`
	require.NoError(t, layout.WriteFile(l.Definition(size2x1), []byte(input)))

	require.NoError(t, m.AddState(size2x1, "New", l.TextureRef(size2x1, "New")))

	data, err := os.ReadFile(l.Definition(size2x1))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	want := map[string]any{
		"BlockType": map[string]any{
			"Material": "Solid",
			"State": map[string]any{
				"Default": "Old",
				"Definitions": map[string]any{
					"Old": map[string]any{
						"CustomModelTexture": []any{map[string]any{"Texture": "textures/2x1/Old.png"}},
						"InteractionHint":    "x",
						"Weight":             float64(3),
					},
					"New": map[string]any{
						"CustomModelTexture": []any{map[string]any{"Texture": "textures/2x1/New.png"}},
						"InteractionHint":    frame.InteractionHint,
					},
				},
			},
		},
		"Recipe": map[string]any{"Input": []any{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestStatesAndSeed(t *testing.T) {
	m, l := newManager(t)

	states, err := m.States(size2x1)
	require.NoError(t, err)
	require.Empty(t, states)

	require.NoError(t, m.Seed(definitions.DefaultSizeClasses...))
	for _, size := range definitions.DefaultSizeClasses {
		require.FileExists(t, l.Definition(size))
	}

	require.NoError(t, m.AddState(size2x1, "B", "textures/2x1/B.png"))
	require.NoError(t, m.AddState(size2x1, "A", "textures/2x1/A.png"))
	states, err = m.States(size2x1)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"A", "B"}, states); diff != "" {
		t.Errorf("States() mismatch (-want +got):\n%s", diff)
	}
}
