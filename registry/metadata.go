package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/index"
	"github.com/eak1mov/go-libframes/layout"
)

// Metadata is the per-asset metadata document.
type Metadata struct {
	ItemID    string  `json:"itemId"`
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Alignment string  `json:"alignment,omitempty"`
	CreatedAt string  `json:"createdAt"`
	Frames    []Frame `json:"frames"`
}

// Frame is one placement listed in a metadata document. Entries that cannot
// be decoded keep their raw JSON and never match any coordinates.
type Frame struct {
	Coords    frame.Coords `json:"coords"`
	Blocks    index.Blocks `json:"blocks"`
	CreatedAt string       `json:"createdAt"`
	raw       json.RawMessage
}

func (f Frame) Valid() bool {
	return f.raw == nil
}

func (f Frame) MarshalJSON() ([]byte, error) {
	if f.raw != nil {
		return f.raw, nil
	}
	type plain Frame
	return json.Marshal(plain(f))
}

func (f *Frame) UnmarshalJSON(data []byte) error {
	var rec index.Record
	if err := rec.UnmarshalJSON(data); err != nil {
		return err
	}
	if !rec.Valid() {
		*f = Frame{raw: slices.Clone(json.RawMessage(data))}
		return nil
	}
	*f = Frame{Coords: rec.Coords, Blocks: rec.Blocks, CreatedAt: rec.CreatedAt}
	return nil
}

// removeAt drops the frames at c and reports whether any were dropped.
func (m *Metadata) removeAt(c frame.Coords) bool {
	n := len(m.Frames)
	m.Frames = slices.DeleteFunc(m.Frames, func(f Frame) bool {
		return f.Valid() && f.Coords == c
	})
	return len(m.Frames) != n
}

func readMetadata(filePath string) (*Metadata, error) {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", frame.ErrNotFound, filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}

	m := &Metadata{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: metadata %v: %w", frame.ErrParse, filePath, err)
	}
	return m, nil
}

func writeMetadata(filePath string, m *Metadata) error {
	data, err := frame.MarshalDocument(m)
	if err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	return layout.WriteFile(filePath, data)
}
