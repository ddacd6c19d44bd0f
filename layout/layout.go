package layout

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/eak1mov/go-libframes/frame"
)

// Layout maps artifacts to files below Root.
type Layout struct {
	Root     string
	Patterns Patterns
}

// New creates a Layout for root. Empty patterns take their defaults.
func New(root string, patterns Patterns) (Layout, error) {
	patterns = patterns.WithDefaults()
	if err := patterns.Validate(); err != nil {
		return Layout{}, err
	}
	return Layout{Root: root, Patterns: patterns}, nil
}

// Default returns the default layout for root.
func Default(root string) Layout {
	return Layout{Root: root, Patterns: DefaultPatterns()}
}

func (l Layout) abs(ref string) string {
	return filepath.Join(l.Root, filepath.FromSlash(ref))
}

func (l Layout) Definition(size frame.SizeClass) string {
	return l.abs(formatPattern(l.Patterns.Definitions, map[string]string{Size: size.String()}))
}

// TextureRef is the logical texture reference stored inside documents.
func (l Layout) TextureRef(size frame.SizeClass, name string) string {
	return formatPattern(l.Patterns.Textures, map[string]string{Size: size.String(), Name: name})
}

func (l Layout) Texture(size frame.SizeClass, name string) string {
	return l.abs(l.TextureRef(size, name))
}

// TextureDir is the directory holding all textures of a size class.
func (l Layout) TextureDir(size frame.SizeClass) string {
	return filepath.Dir(l.Texture(size, "_"))
}

func (l Layout) ModelRef(name string) string {
	return formatPattern(l.Patterns.Models, map[string]string{Name: name})
}

func (l Layout) Model(name string) string {
	return l.abs(l.ModelRef(name))
}

func (l Layout) Item(name string) string {
	return l.abs(formatPattern(l.Patterns.Items, map[string]string{Name: name}))
}

// MetadataFile is the base name of an asset's metadata file, as recorded in the index.
func (l Layout) MetadataFile(assetID string) string {
	return path.Base(formatPattern(l.Patterns.Metadata, map[string]string{Asset: assetID}))
}

func (l Layout) Metadata(assetID string) string {
	return l.abs(formatPattern(l.Patterns.Metadata, map[string]string{Asset: assetID}))
}

// MetadataDir is the directory holding all metadata files.
func (l Layout) MetadataDir() string {
	return filepath.Dir(l.Metadata("_"))
}

func (l Layout) Index() string {
	return l.abs(l.Patterns.Index)
}

// Resolve maps a logical reference back to a path below Root.
// References that would escape Root are rejected.
func (l Layout) Resolve(ref string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(ref, "/"))
	if ref == "" || !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("libframes: reference %q escapes the layout root", ref)
	}
	return l.abs(clean), nil
}

// IsTextureRef reports whether ref points into the texture tree.
func (l Layout) IsTextureRef(ref string) bool {
	re, err := patternRegexp(l.Patterns.Textures)
	if err != nil {
		return false
	}
	return re.MatchString(path.Clean(ref))
}

// VisitMetadata calls visitor with the asset id and path of every metadata file.
// A missing metadata directory yields no calls.
func (l Layout) VisitMetadata(visitor func(assetID, filePath string) error) error {
	re, err := patternRegexp(l.Patterns.Metadata)
	if err != nil {
		return err
	}

	rootDir := l.MetadataDir()
	err = filepath.WalkDir(rootDir, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(l.Root, filePath)
		if err != nil {
			return err
		}
		matches := re.FindStringSubmatch(filepath.ToSlash(rel))
		if matches == nil {
			return nil
		}
		return visitor(matches[re.SubexpIndex("asset")], filePath)
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// WriteFile creates parent directories as needed, then writes the whole file.
func WriteFile(filePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	return nil
}
