// Package service wires the generator, the definition documents and the
// registry into the operations offered to a host application, gated by the
// host's permissions.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/eak1mov/go-libframes/apply"
	"github.com/eak1mov/go-libframes/assets"
	"github.com/eak1mov/go-libframes/config"
	"github.com/eak1mov/go-libframes/definitions"
	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/index"
	"github.com/eak1mov/go-libframes/layout"
	"github.com/eak1mov/go-libframes/raster"
	"github.com/eak1mov/go-libframes/registry"
	"github.com/eak1mov/go-libframes/sqlindex"
)

// AllowAll grants every permission.
type AllowAll struct{}

func (AllowAll) CanUpload(string) bool { return true }
func (AllowAll) CanDelete(string) bool { return true }

type Service struct {
	cfg         *config.Config
	layout      layout.Layout
	generator   *assets.Generator
	definitions *definitions.Manager
	registry    *registry.Registry
	permissions frame.Permissions
	applier     frame.Applier
	closer      io.Closer
	logger      *slog.Logger
}

type serviceConfig struct {
	Permissions frame.Permissions
	Applier     frame.Applier
	Rand        io.Reader
	Clock       func() time.Time
	Logger      *slog.Logger
}

type Option func(*serviceConfig)

// WithPermissions sets the permission checks. Defaults to AllowAll.
func WithPermissions(p frame.Permissions) Option {
	return func(c *serviceConfig) { c.Permissions = p }
}

// WithApplier sets the hook scheduled after every upload.
func WithApplier(a frame.Applier) Option {
	return func(c *serviceConfig) { c.Applier = a }
}

func WithRand(r io.Reader) Option {
	return func(c *serviceConfig) { c.Rand = r }
}

func WithClock(clock func() time.Time) Option {
	return func(c *serviceConfig) { c.Clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.Logger = logger }
}

// New builds a service from cfg.
//
// The returned Service must be closed after use to release the index backend.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	options := serviceConfig{
		Permissions: AllowAll{},
		Clock:       time.Now,
		Logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&options)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l, err := cfg.FileLayout()
	if err != nil {
		return nil, err
	}

	store, closer, err := openStore(cfg, options.Logger)
	if err != nil {
		return nil, err
	}

	defs := definitions.NewManager(l, definitions.WithLogger(options.Logger))
	return &Service{
		cfg:         cfg,
		layout:      l,
		definitions: defs,
		generator: assets.NewGenerator(l, defs,
			assets.WithRand(options.Rand),
			assets.WithPaletteMethod(cfg.Palette()),
			assets.WithAssetPrefix(cfg.AssetPrefix),
			assets.WithGridStep(cfg.GridStep),
			assets.WithIcon(cfg.ItemIcon),
			assets.WithDropOnBreak(cfg.DropOnBreak),
			assets.WithLogger(options.Logger),
		),
		registry: registry.New(store, l,
			registry.WithClock(options.Clock),
			registry.WithLogger(options.Logger),
		),
		permissions: options.Permissions,
		applier:     options.Applier,
		closer:      closer,
		logger:      options.Logger,
	}, nil
}

func openStore(cfg *config.Config, logger *slog.Logger) (index.Store, io.Closer, error) {
	switch cfg.IndexBackend {
	case config.BackendSQLite:
		store, err := sqlindex.Open(cfg.IndexFile(), sqlindex.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return index.NewFileStore(cfg.IndexFile()), nil, nil
	}
}

func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *Service) Layout() layout.Layout             { return s.layout }
func (s *Service) Generator() *assets.Generator      { return s.generator }
func (s *Service) Definitions() *definitions.Manager { return s.definitions }
func (s *Service) Registry() *registry.Registry      { return s.registry }

func (s *Service) checkUpload(actor string) error {
	if !s.permissions.CanUpload(actor) {
		return fmt.Errorf("%w: %v may not upload", frame.ErrPermissionDenied, actor)
	}
	return nil
}

func (s *Service) checkDelete(actor string) error {
	if !s.permissions.CanDelete(actor) {
		return fmt.Errorf("%w: %v may not delete", frame.ErrPermissionDenied, actor)
	}
	return nil
}

// UploadRequest asks for a new asset generated from Image and placed at At.
type UploadRequest struct {
	Image     []byte
	Name      string
	URL       string
	BlocksX   int
	Alignment frame.Alignment
	At        frame.Coords
}

// Upload generates an asset from req.Image, places it at req.At and
// schedules the apply hook. The returned task is nil without an applier;
// it is owned by the caller.
func (s *Service) Upload(ctx context.Context, actor string, req UploadRequest) (assets.Asset, *apply.Task, error) {
	if err := s.checkUpload(actor); err != nil {
		return assets.Asset{}, nil, err
	}

	img, err := raster.Decode(req.Image)
	if err != nil {
		return assets.Asset{}, nil, err
	}
	asset, err := s.generator.CreateAsset(img, req.Name, req.BlocksX, req.Alignment)
	if err != nil {
		return assets.Asset{}, nil, err
	}

	err = s.registry.WriteMetadata(registry.Placement{
		AssetID:   asset.ID,
		Name:      req.Name,
		URL:       req.URL,
		At:        req.At,
		BlocksX:   req.BlocksX,
		Alignment: req.Alignment,
	})
	if err != nil {
		return asset, nil, err
	}

	var task *apply.Task
	if s.applier != nil {
		task = apply.Schedule(ctx, s.applier, asset.ID, req.At, apply.Options{
			Delay:   s.cfg.ApplyDelay,
			Timeout: s.cfg.ApplyTimeout,
			Logger:  s.logger,
		})
	}
	s.logger.Info("libframes: upload done", "actor", actor, "asset", asset.ID, "coords", req.At.String())
	return asset, task, nil
}

// AddState generates a new state of size from image and returns its key.
func (s *Service) AddState(actor string, image []byte, size frame.SizeClass, name string) (string, error) {
	if err := s.checkUpload(actor); err != nil {
		return "", err
	}
	img, err := raster.Decode(image)
	if err != nil {
		return "", err
	}
	return s.generator.CreateState(img, size, name)
}

// RemoveState deletes a state and its texture. It returns false if the
// state does not exist.
func (s *Service) RemoveState(actor string, size frame.SizeClass, key string) (bool, error) {
	if err := s.checkDelete(actor); err != nil {
		return false, err
	}
	return s.definitions.RemoveState(size, key)
}

// DeleteAsset forgets every placement of assetID and deletes its metadata.
func (s *Service) DeleteAsset(actor, assetID string) error {
	if err := s.checkDelete(actor); err != nil {
		return err
	}
	return s.registry.DeleteAsset(assetID)
}

// Unplace removes whatever is placed at c. It returns false if c was free.
func (s *Service) Unplace(actor string, c frame.Coords) (bool, error) {
	if err := s.checkDelete(actor); err != nil {
		return false, err
	}
	_, _, ok, err := s.registry.InstanceAt(c)
	if err != nil || !ok {
		return false, err
	}
	return true, s.registry.RemoveAt(c)
}
