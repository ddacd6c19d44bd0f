// Package registry keeps track of placed frames: at most one asset per
// coordinate, recorded both in the global index and in the metadata file of
// each asset.
//
// The global index is authoritative. Metadata files are a projection of it
// and can be rebuilt with Registry.Reconcile.
package registry

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/index"
	"github.com/eak1mov/go-libframes/layout"
)

// Placement describes a request to place an asset at a coordinate.
type Placement struct {
	AssetID   string
	Name      string
	URL       string
	At        frame.Coords
	BlocksX   int
	Alignment frame.Alignment
}

type Registry struct {
	store  index.Store
	layout layout.Layout
	clock  func() time.Time
	logger *slog.Logger
}

type registryConfig struct {
	Clock  func() time.Time
	Logger *slog.Logger
}

type Option func(*registryConfig)

// WithClock sets the time source of createdAt timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *registryConfig) { c.Clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *registryConfig) { c.Logger = logger }
}

// New creates a registry over store, with metadata files placed by l.
func New(store index.Store, l layout.Layout, opts ...Option) *Registry {
	config := registryConfig{
		Clock:  time.Now,
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &Registry{store: store, layout: l, clock: config.Clock, logger: config.Logger}
}

func (r *Registry) now() string {
	return r.clock().UTC().Format(time.RFC3339Nano)
}

// metadataPath resolves a metadata file name as recorded in the index.
func (r *Registry) metadataPath(metaFile string) (string, error) {
	if !filepath.IsLocal(metaFile) {
		return "", fmt.Errorf("libframes: metadata file %q escapes the metadata directory", metaFile)
	}
	return filepath.Join(r.layout.MetadataDir(), metaFile), nil
}

// RemoveAt drops every placement at c from the index, then removes c from
// the metadata files of the dropped placements. The index is written back
// whenever it changed, including when only empty asset lists were dropped.
//
// An unparseable index is left alone. Metadata files that are missing or
// cannot be read, parsed or written are skipped with a warning.
func (r *Registry) RemoveAt(c frame.Coords) error {
	ix, err := r.store.Load()
	if errors.Is(err, frame.ErrParse) {
		r.logger.Warn("libframes: index not cleaned", "coords", c.String(), "error", err)
		return nil
	}
	if err != nil {
		return err
	}

	before := len(ix.Items)
	removed := ix.RemoveAt(c)
	if len(removed) == 0 && len(ix.Items) == before {
		return nil
	}
	if err := r.store.Save(ix); err != nil {
		return err
	}
	r.logger.Debug("libframes: placements removed", "coords", c.String(), "count", len(removed))

	var metaFiles []string
	for _, inst := range removed {
		if inst.MetaFile != "" && !slices.Contains(metaFiles, inst.MetaFile) {
			metaFiles = append(metaFiles, inst.MetaFile)
		}
	}
	for _, metaFile := range metaFiles {
		if err := r.pruneMetadata(metaFile, c); err != nil {
			r.logger.Warn("libframes: metadata not cleaned", "file", metaFile, "coords", c.String(), "error", err)
		}
	}
	return nil
}

func (r *Registry) pruneMetadata(metaFile string, c frame.Coords) error {
	filePath, err := r.metadataPath(metaFile)
	if err != nil {
		return err
	}
	m, err := readMetadata(filePath)
	if errors.Is(err, frame.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !m.removeAt(c) {
		return nil
	}
	return writeMetadata(filePath, m)
}

// Register appends a placement of assetID to the index. It does not remove
// previous occupants of c; WriteMetadata does. An unparseable index is
// replaced by a fresh one.
func (r *Registry) Register(assetID, metaFile string, c frame.Coords, blocksX int) error {
	return r.register(assetID, metaFile, c, blocksX, r.now())
}

func (r *Registry) register(assetID, metaFile string, c frame.Coords, blocksX int, createdAt string) error {
	ix, err := r.store.Load()
	if errors.Is(err, frame.ErrParse) {
		r.logger.Warn("libframes: unparseable index replaced", "error", err)
		ix = index.New()
	} else if err != nil {
		return err
	}

	ix.Add(assetID, index.Instance{
		MetaFile:  metaFile,
		Coords:    c,
		Blocks:    index.Blocks{X: blocksX},
		CreatedAt: createdAt,
	})
	if err := r.store.Save(ix); err != nil {
		return err
	}
	r.logger.Debug("libframes: placement registered", "asset", assetID, "coords", c.String())
	return nil
}

// WriteMetadata places p.AssetID at p.At so that it becomes the only
// occupant of that coordinate:
//
//  1. every previous placement at p.At is removed (failures are logged),
//  2. the asset's metadata file is loaded, or created if missing or unparseable,
//  3. the placement is appended to its frames and the file is saved,
//  4. the placement is registered in the index.
//
// The frame and the index record share one createdAt timestamp.
func (r *Registry) WriteMetadata(p Placement) error {
	if err := r.RemoveAt(p.At); err != nil {
		r.logger.Warn("libframes: previous placements not removed", "coords", p.At.String(), "error", err)
	}

	metaFile := r.layout.MetadataFile(p.AssetID)
	filePath := r.layout.Metadata(p.AssetID)
	m, err := readMetadata(filePath)
	switch {
	case errors.Is(err, frame.ErrNotFound):
		m = &Metadata{}
	case errors.Is(err, frame.ErrParse):
		r.logger.Warn("libframes: unparseable metadata replaced", "asset", p.AssetID, "error", err)
		m = &Metadata{}
	case err != nil:
		return err
	}

	now := r.now()
	if m.ItemID == "" {
		m.ItemID = p.AssetID
	}
	if p.Name != "" {
		m.Name = p.Name
	}
	if p.URL != "" {
		m.URL = p.URL
	}
	if p.Alignment != frame.AlignCenter {
		m.Alignment = p.Alignment.String()
	}
	if m.CreatedAt == "" {
		m.CreatedAt = now
	}
	m.Frames = append(m.Frames, Frame{Coords: p.At, Blocks: index.Blocks{X: p.BlocksX}, CreatedAt: now})
	if err := writeMetadata(filePath, m); err != nil {
		return err
	}

	if err := r.register(p.AssetID, metaFile, p.At, p.BlocksX, now); err != nil {
		return err
	}
	r.logger.Info("libframes: asset placed", "asset", p.AssetID, "coords", p.At.String())
	return nil
}

// InstanceAt returns the asset placed at c.
func (r *Registry) InstanceAt(c frame.Coords) (string, index.Instance, bool, error) {
	if finder, ok := r.store.(index.CoordsFinder); ok {
		return finder.FindAt(c)
	}
	ix, err := r.store.Load()
	if err != nil {
		return "", index.Instance{}, false, err
	}
	assetID, inst, ok := ix.Find(c)
	return assetID, inst, ok, nil
}

// Instances returns every placement, nearby placements next to each other.
func (r *Registry) Instances() ([]frame.Instance, error) {
	ix, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	var instances []frame.Instance
	var coords []frame.Coords
	err = ix.VisitInstances(func(inst frame.Instance) error {
		instances = append(instances, inst)
		coords = append(coords, inst.Coords)
		return nil
	})
	if err != nil {
		return nil, err
	}

	frame.SortByLocality(coords)
	rank := make(map[frame.Coords]int, len(coords))
	for i, c := range coords {
		if _, ok := rank[c]; !ok {
			rank[c] = i
		}
	}
	slices.SortStableFunc(instances, func(a, b frame.Instance) int {
		return rank[a.Coords] - rank[b.Coords]
	})
	return instances, nil
}

// VisitInstances implements frame.InstanceVisitor in locality order.
func (r *Registry) VisitInstances(visitor func(frame.Instance) error) error {
	instances, err := r.Instances()
	if err != nil {
		return err
	}
	for _, inst := range instances {
		if err := visitor(inst); err != nil {
			return err
		}
	}
	return nil
}

// AssetInfo is a metadata file found on disk. Err is set when the file
// could not be read or parsed.
type AssetInfo struct {
	AssetID  string
	Path     string
	Metadata *Metadata
	Err      error
}

// Assets lists the metadata files in asset id order. Broken files are
// reported, not skipped.
func (r *Registry) Assets() ([]AssetInfo, error) {
	var infos []AssetInfo
	err := r.layout.VisitMetadata(func(assetID, filePath string) error {
		m, err := readMetadata(filePath)
		if err != nil {
			r.logger.Warn("libframes: broken metadata file", "path", filePath, "error", err)
		}
		infos = append(infos, AssetInfo{AssetID: assetID, Path: filePath, Metadata: m, Err: err})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	slices.SortFunc(infos, func(a, b AssetInfo) int {
		return cmp.Compare(a.AssetID, b.AssetID)
	})
	return infos, nil
}

// Metadata reads the metadata document of assetID.
func (r *Registry) Metadata(assetID string) (*Metadata, error) {
	return readMetadata(r.layout.Metadata(assetID))
}

// DeleteAsset drops every placement of assetID from the index and deletes
// its metadata file. It fails with frame.ErrNotFound if neither exists.
func (r *Registry) DeleteAsset(assetID string) error {
	ix, err := r.store.Load()
	if err != nil {
		return err
	}

	records := ix.RemoveAsset(assetID)
	if len(records) > 0 {
		if err := r.store.Save(ix); err != nil {
			return err
		}
	}

	err = os.Remove(r.layout.Metadata(assetID))
	if errors.Is(err, os.ErrNotExist) {
		if len(records) == 0 {
			return fmt.Errorf("%w: asset %v", frame.ErrNotFound, assetID)
		}
		err = nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	r.logger.Info("libframes: asset deleted", "asset", assetID, "placements", len(records))
	return nil
}

// Reconcile rewrites the frames of every metadata file from the index.
// Frames that could not be decoded are kept. It returns the number of
// rewritten files.
func (r *Registry) Reconcile() (int, error) {
	ix, err := r.store.Load()
	if err != nil {
		return 0, err
	}

	infos, err := r.Assets()
	if err != nil {
		return 0, err
	}

	rewritten := 0
	for _, info := range infos {
		if info.Err != nil {
			continue
		}
		want := ix.Instances(info.AssetID)
		frames := make([]Frame, 0, len(want))
		for _, f := range info.Metadata.Frames {
			if !f.Valid() {
				frames = append(frames, f)
			}
		}
		for _, inst := range want {
			frames = append(frames, Frame{Coords: inst.Coords, Blocks: inst.Blocks, CreatedAt: inst.CreatedAt})
		}
		if slices.EqualFunc(frames, info.Metadata.Frames, equalFrames) {
			continue
		}

		info.Metadata.Frames = frames
		if err := writeMetadata(info.Path, info.Metadata); err != nil {
			return rewritten, err
		}
		rewritten++
		r.logger.Info("libframes: metadata reconciled", "asset", info.AssetID, "frames", len(frames))
	}
	return rewritten, nil
}

func equalFrames(a, b Frame) bool {
	if !a.Valid() || !b.Valid() {
		return string(a.raw) == string(b.raw)
	}
	return a.Coords == b.Coords && a.Blocks == b.Blocks && a.CreatedAt == b.CreatedAt
}
