// Package layout resolves where frame artifacts live on disk. Every artifact
// kind has a path pattern relative to the root, with placeholders such as
// "{size}" and "{name}" (e.g. "textures/{size}/{name}.png").
package layout

import (
	"cmp"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

var ErrInvalidPattern = errors.New("libframes: invalid layout pattern")

// Placeholders substituted into patterns.
const (
	Size  = "{size}"
	Name  = "{name}"
	Asset = "{asset}"
)

// Patterns holds one slash-separated pattern per artifact kind.
type Patterns struct {
	Definitions string `yaml:"definitions"`
	Textures    string `yaml:"textures"`
	Models      string `yaml:"models"`
	Items       string `yaml:"items"`
	Metadata    string `yaml:"metadata"`
	Index       string `yaml:"index"`
}

func DefaultPatterns() Patterns {
	return Patterns{
		Definitions: "definitions/{size}.json",
		Textures:    "textures/{size}/{name}.png",
		Models:      "models/{name}.model.json",
		Items:       "items/{name}.item.json",
		Metadata:    "metadata/{asset}.json",
		Index:       "index.json",
	}
}

// WithDefaults fills empty patterns from DefaultPatterns.
func (p Patterns) WithDefaults() Patterns {
	d := DefaultPatterns()
	p.Definitions = cmp.Or(p.Definitions, d.Definitions)
	p.Textures = cmp.Or(p.Textures, d.Textures)
	p.Models = cmp.Or(p.Models, d.Models)
	p.Items = cmp.Or(p.Items, d.Items)
	p.Metadata = cmp.Or(p.Metadata, d.Metadata)
	p.Index = cmp.Or(p.Index, d.Index)
	return p
}

func (p Patterns) Validate() error {
	return errors.Join(
		validatePattern("definitions", p.Definitions, Size),
		validatePattern("textures", p.Textures, Size, Name),
		validatePattern("models", p.Models, Name),
		validatePattern("items", p.Items, Name),
		validatePattern("metadata", p.Metadata, Asset),
		validateFlat("metadata", p.Metadata, Asset),
		validatePattern("index", p.Index),
	)
}

// validateFlat requires placeholder to be part of the file name, so that
// the base name alone identifies the file inside its directory.
func validateFlat(kind, pattern, placeholder string) error {
	if strings.Contains(pattern, placeholder) && !strings.Contains(path.Base(pattern), placeholder) {
		return fmt.Errorf("%w: %v placeholder %v must be in the file name", ErrInvalidPattern, kind, placeholder)
	}
	return nil
}

func validatePattern(kind, pattern string, placeholders ...string) error {
	if pattern == "" {
		return fmt.Errorf("%w: %v pattern is empty", ErrInvalidPattern, kind)
	}
	if path.IsAbs(pattern) || strings.Contains(pattern, "..") {
		return fmt.Errorf("%w: %v pattern %q must stay inside the root", ErrInvalidPattern, kind, pattern)
	}
	for _, p := range placeholders {
		if !strings.Contains(pattern, p) {
			return fmt.Errorf("%w: %v placeholder %v not found", ErrInvalidPattern, kind, p)
		}
	}
	return nil
}

func formatPattern(pattern string, vars map[string]string) string {
	result := pattern
	for k, v := range vars {
		result = strings.ReplaceAll(result, k, v)
	}
	return result
}

// patternRegexp turns a pattern into an anchored regexp with one named group
// per placeholder.
func patternRegexp(pattern string) (*regexp.Regexp, error) {
	expr := regexp.QuoteMeta(pattern)
	for _, p := range []string{Size, Name, Asset} {
		group := "(?P<" + strings.Trim(p, "{}") + ">[^/]+)"
		expr = strings.Replace(expr, regexp.QuoteMeta(p), group, 1)
	}
	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return re, nil
}
