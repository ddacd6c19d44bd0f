// Package definitions manages frame definition documents: one JSON document
// per size class holding the named texture states of that size.
//
// Documents are created from a bundled template the first time a size class
// is used, then edited in place with a read-modify-write of the whole file.
// There is no locking: the last writer wins.
package definitions

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/layout"
)

//go:embed templates/*.json
var bundled embed.FS

// FallbackTemplate is used when no template exists for a size class.
const FallbackTemplate = "default.json"

// DefaultSizeClasses are the size classes seeded by Manager.Seed.
var DefaultSizeClasses = []frame.SizeClass{
	{W: 1, H: 1}, {W: 1, H: 2}, {W: 1, H: 3},
	{W: 2, H: 1}, {W: 2, H: 2}, {W: 2, H: 3},
	{W: 3, H: 1}, {W: 3, H: 2}, {W: 3, H: 3},
}

// BundledTemplates returns the templates shipped with the library.
func BundledTemplates() fs.FS {
	sub, err := fs.Sub(bundled, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

type Manager struct {
	layout    layout.Layout
	templates fs.FS
	logger    *slog.Logger
}

type managerConfig struct {
	Templates fs.FS
	Logger    *slog.Logger
}

type Option func(*managerConfig)

// WithTemplates replaces the bundled templates. Templates are looked up as
// "<size>.json", then FallbackTemplate.
func WithTemplates(templates fs.FS) Option {
	return func(c *managerConfig) { c.Templates = templates }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) { c.Logger = logger }
}

func NewManager(l layout.Layout, opts ...Option) *Manager {
	config := managerConfig{
		Templates: BundledTemplates(),
		Logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &Manager{layout: l, templates: config.Templates, logger: config.Logger}
}

// Load reads the document of a size class. It fails with frame.ErrNotFound
// if the document does not exist and frame.ErrParse if it is malformed.
func (m *Manager) Load(size frame.SizeClass) (*Document, error) {
	data, err := os.ReadFile(m.layout.Definition(size))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: definitions for %v", frame.ErrNotFound, size)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: definitions for %v: %w", frame.ErrParse, size, err)
	}
	return doc, nil
}

// LoadOrCreate reads the document of a size class, seeding it from the
// templates first if it does not exist yet.
func (m *Manager) LoadOrCreate(size frame.SizeClass) (*Document, error) {
	if err := m.ensure(size); err != nil {
		return nil, err
	}
	return m.Load(size)
}

// Seed makes sure documents exist for all given size classes.
func (m *Manager) Seed(sizes ...frame.SizeClass) error {
	var errs []error
	for _, size := range sizes {
		errs = append(errs, m.ensure(size))
	}
	return errors.Join(errs...)
}

func (m *Manager) ensure(size frame.SizeClass) error {
	filePath := m.layout.Definition(size)
	if _, err := os.Stat(filePath); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}

	template, err := m.template(size)
	if err != nil {
		return err
	}
	if err := layout.WriteFile(filePath, template); err != nil {
		return err
	}
	m.logger.Info("libframes: seeded definitions", "size", size.String(), "path", filePath)
	return nil
}

func (m *Manager) template(size frame.SizeClass) ([]byte, error) {
	data, err := fs.ReadFile(m.templates, size.String()+".json")
	if err == nil {
		return data, nil
	}
	data, err = fs.ReadFile(m.templates, FallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: no template for %v: %w", frame.ErrIO, size, err)
	}
	return data, nil
}

// Save writes doc as the document of a size class.
func (m *Manager) Save(doc *Document, size frame.SizeClass) error {
	data, err := frame.MarshalDocument(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	return layout.WriteFile(m.layout.Definition(size), data)
}

// AddState stores key in the document of a size class, creating the document
// if needed.
func (m *Manager) AddState(size frame.SizeClass, key, texturePath string) error {
	doc, err := m.LoadOrCreate(size)
	if err != nil {
		return err
	}
	doc.AddState(key, texturePath)
	if err := m.Save(doc, size); err != nil {
		return err
	}
	m.logger.Debug("libframes: state added", "size", size.String(), "key", key, "texture", texturePath)
	return nil
}

// RemoveState deletes key from the document of a size class and then deletes
// its texture. It returns false, without touching any file, if the document,
// its definitions section or the key does not exist.
//
// A texture that cannot be deleted is only logged: the document has already
// been saved.
func (m *Manager) RemoveState(size frame.SizeClass, key string) (bool, error) {
	doc, err := m.Load(size)
	if errors.Is(err, frame.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	defs, ok := doc.lookup()
	if !ok {
		return false, nil
	}
	def, ok := defs[key]
	if !ok {
		return false, nil
	}
	texture := def.Texture()

	delete(defs, key)
	if err := m.Save(doc, size); err != nil {
		return false, err
	}
	m.logger.Debug("libframes: state removed", "size", size.String(), "key", key)

	if texture != "" {
		m.deleteTexture(texture)
	}
	return true, nil
}

func (m *Manager) deleteTexture(ref string) {
	if !m.layout.IsTextureRef(ref) {
		m.logger.Warn("libframes: texture outside the texture tree kept", "texture", ref)
		return
	}
	filePath, err := m.layout.Resolve(ref)
	if err != nil {
		m.logger.Warn("libframes: texture not deleted", "texture", ref, "error", err)
		return
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("libframes: texture not deleted", "path", filePath, "error", err)
		return
	}
	m.logger.Info("libframes: texture deleted", "path", filePath)
}

// States returns the sorted state keys of a size class. A size class without
// a document has no states.
func (m *Manager) States(size frame.SizeClass) ([]string, error) {
	doc, err := m.Load(size)
	if errors.Is(err, frame.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defs, _ := doc.lookup()
	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}
