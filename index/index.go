// Package index provides the global instance index: which asset is placed at
// which coordinates, with the metadata file describing each placement.
package index

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/eak1mov/go-libframes/frame"
)

// Blocks is the requested footprint of a placement.
type Blocks struct {
	X int `json:"x"`
}

// Instance is one placement of an asset.
type Instance struct {
	MetaFile  string       `json:"metaFile"`
	Coords    frame.Coords `json:"coords"`
	Blocks    Blocks       `json:"blocks"`
	CreatedAt string       `json:"createdAt"`
}

// Record is an element of an asset's instance list. Elements that cannot be
// decoded as an Instance keep their raw JSON and are written back unchanged;
// they never match any coordinates.
type Record struct {
	Instance
	raw json.RawMessage
}

// NewRecord wraps a well-formed instance.
func NewRecord(inst Instance) Record {
	return Record{Instance: inst}
}

// Valid reports whether the record was decoded as an Instance.
func (r Record) Valid() bool {
	return r.raw == nil
}

// At reports whether the record is a valid placement at c.
func (r Record) At(c frame.Coords) bool {
	return r.Valid() && r.Coords == c
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return json.Marshal(r.Instance)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var v struct {
		MetaFile *string `json:"metaFile"`
		Coords   *struct {
			X *int `json:"x"`
			Y *int `json:"y"`
			Z *int `json:"z"`
		} `json:"coords"`
		Blocks    *Blocks `json:"blocks"`
		CreatedAt *string `json:"createdAt"`
	}
	err := json.Unmarshal(data, &v)
	if err != nil || v.Coords == nil || v.Coords.X == nil || v.Coords.Y == nil || v.Coords.Z == nil {
		*r = Record{raw: slices.Clone(json.RawMessage(data))}
		return nil
	}

	*r = Record{Instance: Instance{
		Coords: frame.Coords{X: *v.Coords.X, Y: *v.Coords.Y, Z: *v.Coords.Z},
	}}
	if v.MetaFile != nil {
		r.MetaFile = *v.MetaFile
	}
	if v.Blocks != nil {
		r.Blocks = *v.Blocks
	}
	if v.CreatedAt != nil {
		r.CreatedAt = *v.CreatedAt
	}
	return nil
}

// Index is the GlobalIndex document: {"items": {<assetId>: [Record...]}}.
type Index struct {
	Items map[string][]Record `json:"items"`
}

func New() *Index {
	return &Index{Items: make(map[string][]Record)}
}

// Decode parses an index document.
func Decode(data []byte) (*Index, error) {
	ix := New()
	if err := json.Unmarshal(data, ix); err != nil {
		return nil, err
	}
	if ix.Items == nil {
		ix.Items = make(map[string][]Record)
	}
	return ix, nil
}

// Encode formats the index the way every library document is formatted.
func (ix *Index) Encode() ([]byte, error) {
	if ix.Items == nil {
		return frame.MarshalDocument(New())
	}
	return frame.MarshalDocument(ix)
}

// Add appends a placement to the instance list of assetID.
func (ix *Index) Add(assetID string, inst Instance) {
	if ix.Items == nil {
		ix.Items = make(map[string][]Record)
	}
	ix.Items[assetID] = append(ix.Items[assetID], NewRecord(inst))
}

// RemoveAt drops every placement at c and returns the removed placements.
// Assets left without records are removed from the index.
func (ix *Index) RemoveAt(c frame.Coords) []Instance {
	var removed []Instance
	for _, assetID := range ix.Assets() {
		var kept []Record
		for _, rec := range ix.Items[assetID] {
			if rec.At(c) {
				removed = append(removed, rec.Instance)
			} else {
				kept = append(kept, rec)
			}
		}
		if len(kept) == 0 {
			delete(ix.Items, assetID)
		} else {
			ix.Items[assetID] = kept
		}
	}
	return removed
}

// RemoveAsset drops all placements of assetID and returns them.
func (ix *Index) RemoveAsset(assetID string) []Record {
	records := ix.Items[assetID]
	delete(ix.Items, assetID)
	return records
}

// Find returns the first placement at c, scanning assets in sorted order.
func (ix *Index) Find(c frame.Coords) (string, Instance, bool) {
	for _, assetID := range ix.Assets() {
		for _, rec := range ix.Items[assetID] {
			if rec.At(c) {
				return assetID, rec.Instance, true
			}
		}
	}
	return "", Instance{}, false
}

// Instances returns the valid placements of assetID.
func (ix *Index) Instances(assetID string) []Instance {
	var instances []Instance
	for _, rec := range ix.Items[assetID] {
		if rec.Valid() {
			instances = append(instances, rec.Instance)
		}
	}
	return instances
}

// Assets returns the indexed asset ids in sorted order.
func (ix *Index) Assets() []string {
	return slices.Sorted(maps.Keys(ix.Items))
}

// VisitInstances calls visitor for every valid placement, assets in sorted order.
func (ix *Index) VisitInstances(visitor func(frame.Instance) error) error {
	for _, assetID := range ix.Assets() {
		for _, inst := range ix.Instances(assetID) {
			err := visitor(frame.Instance{AssetID: assetID, Coords: inst.Coords, BlocksX: inst.Blocks.X})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
