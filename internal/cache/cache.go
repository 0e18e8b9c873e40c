// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cache keeps extracted tags and rendered maps between runs. Each
// cache has an in-memory LRU in front of an optional SQLite database.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	dbName        = "cache.db"
	defaultL1Size = 1000

	// version is mixed into every map key; bump it when the payload
	// format changes.
	version = "1"
)

const schema = `
CREATE TABLE IF NOT EXISTS tags (
	file_path    TEXT PRIMARY KEY,
	mtime_ns     INTEGER NOT NULL,
	content_hash TEXT NOT NULL,
	language     TEXT NOT NULL,
	tags_json    TEXT NOT NULL,
	cached_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS maps (
	cache_key TEXT PRIMARY KEY,
	payload   TEXT NOT NULL,
	cached_at INTEGER NOT NULL
);
`

// Options configures a Manager.
type Options struct {
	Dir    string // Directory for the SQLite file; empty keeps everything in memory
	L1Size int    // Entries per in-memory LRU (default 1000)
	Logger *zap.Logger
}

// Manager owns the tag cache and the map cache and their shared database.
type Manager struct {
	db     *sql.DB
	dbPath string
	tags   *TagCache
	maps   *MapCache
	logger *zap.Logger
}

// Open creates a Manager. With an empty Dir the caches live only in
// memory; otherwise the database is created under Dir if needed.
func Open(opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "cache"))
	size := opts.L1Size
	if size <= 0 {
		size = defaultL1Size
	}

	m := &Manager{logger: logger}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		m.dbPath = filepath.Join(opts.Dir, dbName)
		db, err := openDB(m.dbPath)
		if err != nil {
			return nil, err
		}
		m.db = db
	}

	var err error
	if m.tags, err = newTagCache(m.db, size, logger); err != nil {
		m.Close()
		return nil, err
	}
	if m.maps, err = newMapCache(m.db, size, logger); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// Serialize writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Tags returns the tag cache.
func (m *Manager) Tags() *TagCache { return m.tags }

// Maps returns the rendered-map cache.
func (m *Manager) Maps() *MapCache { return m.maps }

// Persistent reports whether the caches are backed by a database.
func (m *Manager) Persistent() bool { return m.db != nil }

// Path returns the database file path, or "" in memory-only mode.
func (m *Manager) Path() string { return m.dbPath }

// Stats describes cache contents and effectiveness.
type Stats struct {
	Persistent bool    `json:"persistent"`
	Path       string  `json:"path,omitempty"`
	TagEntries int64   `json:"tag_entries"`
	MapEntries int64   `json:"map_entries"`
	TagHits    int64   `json:"tag_hits"`
	TagMisses  int64   `json:"tag_misses"`
	MapHits    int64   `json:"map_hits"`
	MapMisses  int64   `json:"map_misses"`
	HitRate    float64 `json:"hit_rate"`
}

// Stats returns entry counts and the hit counters of this process.
func (m *Manager) Stats() (Stats, error) {
	s := Stats{
		Persistent: m.Persistent(),
		Path:       m.dbPath,
		TagHits:    m.tags.hits.Load(),
		TagMisses:  m.tags.misses.Load(),
		MapHits:    m.maps.hits.Load(),
		MapMisses:  m.maps.misses.Load(),
	}
	if total := s.TagHits + s.TagMisses; total > 0 {
		s.HitRate = float64(s.TagHits) / float64(total)
	}

	if m.db == nil {
		s.TagEntries = int64(m.tags.l1.Len())
		s.MapEntries = int64(m.maps.l1.Len())
		return s, nil
	}
	if err := m.db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&s.TagEntries); err != nil {
		return s, fmt.Errorf("count tags: %w", err)
	}
	if err := m.db.QueryRow("SELECT COUNT(*) FROM maps").Scan(&s.MapEntries); err != nil {
		return s, fmt.Errorf("count maps: %w", err)
	}
	return s, nil
}

// Clear removes every cached entry.
func (m *Manager) Clear() error {
	m.tags.l1.Purge()
	m.maps.l1.Purge()
	if m.db == nil {
		return nil
	}
	if _, err := m.db.Exec("DELETE FROM tags"); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	if _, err := m.db.Exec("DELETE FROM maps"); err != nil {
		return fmt.Errorf("clear maps: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}
