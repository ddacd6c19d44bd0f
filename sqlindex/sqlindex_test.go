package sqlindex_test

import (
	"path/filepath"
	"testing"

	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/index"
	"github.com/eak1mov/go-libframes/sqlindex"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func openStore(t *testing.T, filePath string) *sqlindex.Store {
	t.Helper()
	store, err := sqlindex.Open(filePath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveLoad(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "index.sqlite")
	store := openStore(t, filePath)

	empty, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, empty.Items)

	ix, err := index.Decode([]byte(`{"items": {
		"Frame_A": [{"metaFile": "Frame_A.json", "coords": {"x": 1, "y": 2, "z": 3}, "blocks": {"x": 2}, "createdAt": "t1"}],
		"Frame_B": [
			{"metaFile": "Frame_B.json", "coords": {"x": 4, "y": 5, "z": 6}, "blocks": {"x": 1}, "createdAt": "t2"},
			{"broken": true}
		]
	}}`))
	require.NoError(t, err)
	require.NoError(t, store.Save(ix))
	// Saving twice replaces the content.
	require.NoError(t, store.Save(ix))
	require.NoError(t, store.Close())

	loaded, err := openStore(t, filePath).Load()
	require.NoError(t, err)

	want, err := ix.Encode()
	require.NoError(t, err)
	got, err := loaded.Encode()
	require.NoError(t, err)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("loaded index mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAt(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "index.sqlite"))

	ix := index.New()
	ix.Add("Frame_A", index.Instance{MetaFile: "Frame_A.json", Coords: frame.Coords{X: 1, Y: 2, Z: 3}, Blocks: index.Blocks{X: 4}})
	require.NoError(t, store.Save(ix))

	assetID, inst, ok, err := store.FindAt(frame.Coords{X: 1, Y: 2, Z: 3})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Frame_A", assetID)
	require.Equal(t, index.Blocks{X: 4}, inst.Blocks)
	require.Equal(t, "Frame_A.json", inst.MetaFile)

	_, _, ok, err = store.FindAt(frame.Coords{X: 9, Y: 9, Z: 9})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConvertFromFileStore(t *testing.T) {
	dir := t.TempDir()
	src := index.NewFileStore(filepath.Join(dir, "index.json"))
	ix := index.New()
	ix.Add("Frame_A", index.Instance{MetaFile: "Frame_A.json", Coords: frame.Coords{X: 7, Y: 8, Z: 9}})
	require.NoError(t, src.Save(ix))

	dst := openStore(t, filepath.Join(dir, "index.sqlite"))
	loaded, err := src.Load()
	require.NoError(t, err)
	require.NoError(t, dst.Save(loaded))

	assetID, _, ok, err := dst.FindAt(frame.Coords{X: 7, Y: 8, Z: 9})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Frame_A", assetID)
}
