// Package sqlindex stores the instance index in a SQLite database.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package sqlindex

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/index"
)

// Store implements index.Store and index.CoordsFinder on top of SQLite.
// Records that could not be decoded are stored as raw JSON and never match
// any coordinates.
type Store struct {
	db       *sql.DB
	findStmt *sql.Stmt
	logger   *slog.Logger
}

type storeConfig struct {
	Logger *slog.Logger
}

type Option func(*storeConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *storeConfig) { c.Logger = logger }
}

// Open opens or creates the index database at filePath.
//
// The returned Store must be closed after use to release database resources.
func Open(filePath string, opts ...Option) (*Store, error) {
	config := storeConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	var err error
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS instances (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			asset_id TEXT NOT NULL,
			meta_file TEXT,
			x INTEGER,
			y INTEGER,
			z INTEGER,
			blocks_x INTEGER,
			created_at TEXT,
			raw TEXT
		);
		CREATE INDEX IF NOT EXISTS instances_coords ON instances (x, y, z);
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}

	findStmt, err := db.Prepare(`
		SELECT asset_id, meta_file, x, y, z, blocks_x, created_at FROM instances
		WHERE raw IS NULL AND x = ? AND y = ? AND z = ?
		ORDER BY asset_id, seq LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}

	config.Logger.Debug("libframes: index database opened", "path", filePath)
	return &Store{db: db, findStmt: findStmt, logger: config.Logger}, nil
}

func (s *Store) Close() error {
	return errors.Join(s.findStmt.Close(), s.db.Close())
}

func (s *Store) Load() (*index.Index, error) {
	rows, err := s.db.Query(`
		SELECT asset_id, meta_file, x, y, z, blocks_x, created_at, raw
		FROM instances ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	defer rows.Close()

	ix := index.New()
	for rows.Next() {
		var assetID string
		var metaFile, createdAt, raw sql.NullString
		var x, y, z, blocksX sql.NullInt64
		if err := rows.Scan(&assetID, &metaFile, &x, &y, &z, &blocksX, &createdAt, &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
		}

		if raw.Valid {
			var rec index.Record
			if err := rec.UnmarshalJSON([]byte(raw.String)); err != nil {
				return nil, fmt.Errorf("%w: %w", frame.ErrParse, err)
			}
			ix.Items[assetID] = append(ix.Items[assetID], rec)
			continue
		}

		ix.Add(assetID, index.Instance{
			MetaFile:  metaFile.String,
			Coords:    frame.Coords{X: int(x.Int64), Y: int(y.Int64), Z: int(z.Int64)},
			Blocks:    index.Blocks{X: int(blocksX.Int64)},
			CreatedAt: createdAt.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	return ix, nil
}

// Save replaces the stored index inside a single transaction.
func (s *Store) Save(ix *index.Index) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM instances"); err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO instances (asset_id, meta_file, x, y, z, blocks_x, created_at, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	defer stmt.Close()

	count := 0
	for _, assetID := range ix.Assets() {
		for _, rec := range ix.Items[assetID] {
			if rec.Valid() {
				_, err = stmt.Exec(assetID, rec.MetaFile, rec.Coords.X, rec.Coords.Y, rec.Coords.Z,
					rec.Blocks.X, rec.CreatedAt, nil)
			} else {
				var raw []byte
				raw, err = rec.MarshalJSON()
				if err == nil {
					_, err = stmt.Exec(assetID, nil, nil, nil, nil, nil, nil, string(raw))
				}
			}
			if err != nil {
				return fmt.Errorf("%w: %w", frame.ErrIO, err)
			}
			count++
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	s.logger.Debug("libframes: index saved", "records", count)
	return nil
}

func (s *Store) FindAt(c frame.Coords) (string, index.Instance, bool, error) {
	var assetID string
	var metaFile, createdAt sql.NullString
	var blocksX sql.NullInt64
	var inst index.Instance
	err := s.findStmt.QueryRow(c.X, c.Y, c.Z).Scan(
		&assetID, &metaFile, &inst.Coords.X, &inst.Coords.Y, &inst.Coords.Z, &blocksX, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", index.Instance{}, false, nil
	}
	if err != nil {
		return "", index.Instance{}, false, fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	inst.MetaFile = metaFile.String
	inst.CreatedAt = createdAt.String
	inst.Blocks.X = int(blocksX.Int64)
	return assetID, inst, true, nil
}

var (
	_ index.Store        = (*Store)(nil)
	_ index.CoordsFinder = (*Store)(nil)
	_ index.Store        = (*index.FileStore)(nil)
)
