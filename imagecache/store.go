// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gogpu/gallery"
)

// DefaultKey names the collection a store reads and writes unless
// WithKey says otherwise.
const DefaultKey = "gallery-images"

// pragmas are applied to every connection through the DSN.
const pragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)"

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS descriptors (
	collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	id            TEXT NOT NULL,
	thumb_handle  TEXT NOT NULL,
	full_handle   TEXT NOT NULL,
	display_name  TEXT NOT NULL,
	PRIMARY KEY (collection_id, position)
);`

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("imagecache: store closed")

// Option configures a Store.
type Option func(*Store)

// WithKey sets the collection key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithHandleCheck makes Restore drop descriptors for which ok returns
// false, such as files deleted since the collection was stored.
func WithHandleCheck(ok func(gallery.ImageDescriptor) bool) Option {
	return func(s *Store) {
		s.check = ok
	}
}

// Collection describes the stored collection.
type Collection struct {
	ID        uuid.UUID
	Key       string
	CreatedAt time.Time
	Count     int
}

var _ gallery.ImageCache = (*Store)(nil)

// Store is a SQLite-backed gallery.ImageCache.
type Store struct {
	db    *sql.DB
	key   string
	check func(gallery.ImageDescriptor) bool
	now   func() time.Time

	closed atomic.Bool
}

// Open opens or creates the database at path. Use ":memory:" for a
// private in-memory store.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("imagecache: open %s: %w", path, err)
	}
	// One connection: SQLite has a single writer, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	s, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New creates a store on an open database and ensures the schema exists.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, key: DefaultKey, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("imagecache: create schema: %w", err)
	}
	return s, nil
}

// Close closes the database. Later operations return ErrClosed.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Persist replaces the stored collection with descriptors.
func (s *Store) Persist(ctx context.Context, descriptors []gallery.ImageDescriptor) error {
	if s.closed.Load() {
		return ErrClosed
	}
	id := uuid.New()
	err := s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, s.key); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collections (id, name, created_at) VALUES (?, ?, ?)`,
			id.String(), s.key, s.now().UnixMilli()); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO descriptors (collection_id, position, id, thumb_handle, full_handle, display_name)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, d := range descriptors {
			if _, err := stmt.ExecContext(ctx, id.String(), i, d.ID, d.Thumbnail, d.Full, d.DisplayName); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("imagecache: persist: %w", err)
	}
	logger().Debug("collection persisted", "key", s.key, "id", id, "count", len(descriptors))
	return nil
}

// Restore returns the stored descriptors in their original order, or nil
// when nothing is stored.
func (s *Store) Restore(ctx context.Context) ([]gallery.ImageDescriptor, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.thumb_handle, d.full_handle, d.display_name
		FROM descriptors d JOIN collections c ON c.id = d.collection_id
		WHERE c.name = ?
		ORDER BY d.position`, s.key)
	if err != nil {
		return nil, fmt.Errorf("imagecache: restore: %w", err)
	}
	defer rows.Close()

	var out []gallery.ImageDescriptor
	dropped := 0
	for rows.Next() {
		var d gallery.ImageDescriptor
		if err := rows.Scan(&d.ID, &d.Thumbnail, &d.Full, &d.DisplayName); err != nil {
			return nil, fmt.Errorf("imagecache: restore: %w", err)
		}
		if s.check != nil && !s.check(d) {
			dropped++
			continue
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("imagecache: restore: %w", err)
	}
	if dropped > 0 {
		logger().Warn("dropped stale descriptors", "key", s.key, "count", dropped)
	}
	return out, nil
}

// Info describes the stored collection. It reports false when nothing is
// stored.
func (s *Store) Info(ctx context.Context) (Collection, bool, error) {
	if s.closed.Load() {
		return Collection{}, false, ErrClosed
	}
	var (
		c       = Collection{Key: s.key}
		id      string
		created int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.created_at, COUNT(d.position)
		FROM collections c LEFT JOIN descriptors d ON d.collection_id = c.id
		WHERE c.name = ?
		GROUP BY c.id`, s.key).Scan(&id, &created, &c.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return Collection{}, false, nil
	}
	if err != nil {
		return Collection{}, false, fmt.Errorf("imagecache: info: %w", err)
	}
	if c.ID, err = uuid.Parse(id); err != nil {
		return Collection{}, false, fmt.Errorf("imagecache: info: bad collection id %q: %w", id, err)
	}
	c.CreatedAt = time.UnixMilli(created)
	return c, true, nil
}

// Clear deletes the stored collection.
func (s *Store) Clear(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, s.key); err != nil {
		return fmt.Errorf("imagecache: clear: %w", err)
	}
	return nil
}

func (s *Store) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func logger() *slog.Logger {
	return gallery.ComponentLogger("imagecache")
}
