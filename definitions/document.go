package definitions

import (
	"encoding/json"

	"github.com/eak1mov/go-libframes/frame"
)

// Document is the frame definition document of one size class:
// {"BlockType": {"State": {"Definitions": {<key>: StateDefinition}}}}.
// Fields the library does not model are kept and written back untouched.
type Document struct {
	BlockType *BlockType
	extra     map[string]json.RawMessage
}

type BlockType struct {
	State *State
	extra map[string]json.RawMessage
}

type State struct {
	Definitions map[string]StateDefinition
	extra       map[string]json.RawMessage
}

// StateDefinition is one named texture variant.
type StateDefinition struct {
	InteractionHint    string
	CustomModelTexture []TextureRef
	extra              map[string]json.RawMessage
}

type TextureRef struct {
	Texture string `json:"Texture"`
}

// NewStateDefinition returns the definition stored for a texture reference.
func NewStateDefinition(texturePath string) StateDefinition {
	return StateDefinition{
		InteractionHint:    frame.InteractionHint,
		CustomModelTexture: []TextureRef{{Texture: texturePath}},
	}
}

// Texture returns the first texture reference, if any.
func (s StateDefinition) Texture() string {
	if len(s.CustomModelTexture) == 0 {
		return ""
	}
	return s.CustomModelTexture[0].Texture
}

// Definitions returns the definitions map, creating the BlockType, State and
// Definitions sections on first use.
func (d *Document) Definitions() map[string]StateDefinition {
	if d.BlockType == nil {
		d.BlockType = &BlockType{}
	}
	if d.BlockType.State == nil {
		d.BlockType.State = &State{}
	}
	if d.BlockType.State.Definitions == nil {
		d.BlockType.State.Definitions = make(map[string]StateDefinition)
	}
	return d.BlockType.State.Definitions
}

// lookup returns the definitions map without creating missing sections.
func (d *Document) lookup() (map[string]StateDefinition, bool) {
	if d.BlockType == nil || d.BlockType.State == nil || d.BlockType.State.Definitions == nil {
		return nil, false
	}
	return d.BlockType.State.Definitions, true
}

// AddState inserts or overwrites key with a definition referencing texturePath.
// The rest of the document is left as is.
func (d *Document) AddState(key, texturePath string) {
	d.Definitions()[key] = NewStateDefinition(texturePath)
}

// State returns the definition stored under key.
func (d *Document) State(key string) (StateDefinition, bool) {
	defs, ok := d.lookup()
	if !ok {
		return StateDefinition{}, false
	}
	def, ok := defs[key]
	return def, ok
}

func (d Document) MarshalJSON() ([]byte, error) {
	return joinObject(d.extra, map[string]any{"BlockType": d.BlockType})
}

func (d *Document) UnmarshalJSON(data []byte) error {
	known, extra, err := splitObject(data, "BlockType")
	if err != nil {
		return err
	}
	d.extra = extra
	d.BlockType = nil
	return decodeKnown(known, "BlockType", &d.BlockType)
}

func (b BlockType) MarshalJSON() ([]byte, error) {
	return joinObject(b.extra, map[string]any{"State": b.State})
}

func (b *BlockType) UnmarshalJSON(data []byte) error {
	known, extra, err := splitObject(data, "State")
	if err != nil {
		return err
	}
	b.extra = extra
	b.State = nil
	return decodeKnown(known, "State", &b.State)
}

func (s State) MarshalJSON() ([]byte, error) {
	return joinObject(s.extra, map[string]any{"Definitions": s.Definitions})
}

func (s *State) UnmarshalJSON(data []byte) error {
	known, extra, err := splitObject(data, "Definitions")
	if err != nil {
		return err
	}
	s.extra = extra
	s.Definitions = nil
	return decodeKnown(known, "Definitions", &s.Definitions)
}

func (s StateDefinition) MarshalJSON() ([]byte, error) {
	return joinObject(s.extra, map[string]any{
		"InteractionHint":    s.InteractionHint,
		"CustomModelTexture": s.CustomModelTexture,
	})
}

// UnmarshalJSON never fails on a malformed known field: the raw value is
// kept and written back verbatim.
func (s *StateDefinition) UnmarshalJSON(data []byte) error {
	known, extra, err := splitObject(data, "InteractionHint", "CustomModelTexture")
	if err != nil {
		return err
	}
	*s = StateDefinition{extra: extra}
	if raw, ok := known["InteractionHint"]; ok {
		if json.Unmarshal(raw, &s.InteractionHint) != nil {
			s.keepRaw("InteractionHint", raw)
		}
	}
	if raw, ok := known["CustomModelTexture"]; ok {
		if json.Unmarshal(raw, &s.CustomModelTexture) != nil {
			s.CustomModelTexture = nil
			s.keepRaw("CustomModelTexture", raw)
		}
	}
	return nil
}

func (s *StateDefinition) keepRaw(key string, raw json.RawMessage) {
	if s.extra == nil {
		s.extra = make(map[string]json.RawMessage)
	}
	s.extra[key] = raw
}

// splitObject separates the known keys of a JSON object from the others.
func splitObject(data []byte, known ...string) (map[string]json.RawMessage, map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, nil, err
	}
	found := make(map[string]json.RawMessage)
	for _, k := range known {
		if raw, ok := all[k]; ok {
			found[k] = raw
			delete(all, k)
		}
	}
	if len(all) == 0 {
		all = nil
	}
	return found, all, nil
}

func decodeKnown(known map[string]json.RawMessage, key string, v any) error {
	raw, ok := known[key]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// joinObject merges typed fields over the preserved ones. Nil typed fields
// are omitted unless a preserved raw value exists for the same key.
func joinObject(extra map[string]json.RawMessage, fields map[string]any) ([]byte, error) {
	out := make(map[string]any, len(extra)+len(fields))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range fields {
		if _, preserved := extra[k]; preserved {
			continue
		}
		if isNil(v) {
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

func isNil(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case *BlockType:
		return v == nil
	case *State:
		return v == nil
	case map[string]StateDefinition:
		return v == nil
	case []TextureRef:
		return v == nil
	}
	return false
}
