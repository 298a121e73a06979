// Package sqlite persists document state to an embedded SQLite file as JSON
// bucket blobs, snapshotted after every settled mutation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/philharmoniedeparis/metascore-library-sub004/internal/core"
	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// Store is a document store whose state survives restarts in a single
// SQLite `state` table.
type Store struct {
	*core.Store
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at path, hydrates any existing
// snapshot, and wires snapshot persistence into the store.
func NewStore(path string, opts ...core.StoreOption) (*Store, error) {
	if path == "" {
		path = "metascore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}

	persister := &snapshotWriter{db: db}
	inner := core.NewStore(append(opts, core.WithSnapshotter(persister))...)
	s := &Store{Store: inner, db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot domain.Snapshot
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		found = true
		if err := decodeBucket(bucket, payload, &snapshot); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if found {
		s.ImportState(snapshot)
	}
	return nil
}

type snapshotWriter struct {
	db *sql.DB
	mu sync.Mutex
}

// SaveState implements domain.Snapshotter.
func (w *snapshotWriter) SaveState(ctx context.Context, snap domain.Snapshot) (retErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for bucket, value := range map[string]any{
		"entities": snap.Entities,
		"deleted":  snap.Deleted,
		"order":    snap.Order,
	} {
		data, err := json.Marshal(value)
		if err != nil {
			retErr = fmt.Errorf("encode %s: %w", bucket, err)
			return retErr
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
			bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

func decodeBucket(bucket string, payload []byte, snap *domain.Snapshot) error {
	switch bucket {
	case "entities":
		if err := json.Unmarshal(payload, &snap.Entities); err != nil {
			return fmt.Errorf("decode entities: %w", err)
		}
	case "deleted":
		if err := json.Unmarshal(payload, &snap.Deleted); err != nil {
			return fmt.Errorf("decode deleted: %w", err)
		}
	case "order":
		if err := json.Unmarshal(payload, &snap.Order); err != nil {
			return fmt.Errorf("decode order: %w", err)
		}
	}
	return nil
}
