// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/petar-djukic/reporank/pkg/types"
)

type tagEntry struct {
	modTime int64
	hash    string
	tags    []types.Tag
}

// TagCache stores the tags of a file keyed by its path. An entry is
// valid while the content hash matches.
type TagCache struct {
	l1     *lru.Cache[string, tagEntry]
	db     *sql.DB
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

func newTagCache(db *sql.DB, size int, logger *zap.Logger) (*TagCache, error) {
	l1, err := lru.New[string, tagEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create tag lru: %w", err)
	}
	return &TagCache{l1: l1, db: db, logger: logger}, nil
}

// ContentHash returns the hex xxhash of content.
func ContentHash(content []byte) string {
	return strconv.FormatUint(xxhash.Sum64(content), 16)
}

// Get returns the cached tags for path if they were computed from the
// same content.
func (c *TagCache) Get(path string, modTime int64, content []byte) ([]types.Tag, bool) {
	hash := ContentHash(content)

	if e, ok := c.l1.Get(path); ok && e.hash == hash {
		if e.modTime != modTime {
			c.touch(path, e, modTime)
		}
		c.hits.Add(1)
		return e.tags, true
	}

	if c.db != nil {
		e, err := c.load(path)
		switch {
		case err == nil && e.hash == hash:
			if e.modTime != modTime {
				c.touch(path, e, modTime)
			} else {
				c.l1.Add(path, e)
			}
			c.hits.Add(1)
			return e.tags, true
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			c.logger.Warn("reading cached tags", zap.String("path", path), zap.Error(err))
		}
	}

	c.misses.Add(1)
	return nil, false
}

// touch records a new modification time for an entry whose content is
// unchanged.
func (c *TagCache) touch(path string, e tagEntry, modTime int64) {
	e.modTime = modTime
	c.l1.Add(path, e)
	if c.db == nil {
		return
	}
	if _, err := c.db.Exec("UPDATE tags SET mtime_ns = ? WHERE file_path = ?", modTime, path); err != nil {
		c.logger.Warn("refreshing cached mtime", zap.String("path", path), zap.Error(err))
	}
}

func (c *TagCache) load(path string) (tagEntry, error) {
	var (
		e    tagEntry
		blob string
	)
	err := c.db.QueryRow(
		"SELECT mtime_ns, content_hash, tags_json FROM tags WHERE file_path = ?", path,
	).Scan(&e.modTime, &e.hash, &blob)
	if err != nil {
		return tagEntry{}, err
	}
	if err := json.Unmarshal([]byte(blob), &e.tags); err != nil {
		return tagEntry{}, fmt.Errorf("decode tags: %w", err)
	}
	return e, nil
}

// Put stores the tags extracted from content.
func (c *TagCache) Put(path string, modTime int64, content []byte, language string, tags []types.Tag) error {
	e := tagEntry{modTime: modTime, hash: ContentHash(content), tags: tags}
	c.l1.Add(path, e)
	if c.db == nil {
		return nil
	}

	blob, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO tags (file_path, mtime_ns, content_hash, language, tags_json, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		path, modTime, e.hash, language, string(blob), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store tags for %s: %w", path, err)
	}
	return nil
}

// Invalidate drops the entry for path.
func (c *TagCache) Invalidate(path string) error {
	c.l1.Remove(path)
	if c.db == nil {
		return nil
	}
	if _, err := c.db.Exec("DELETE FROM tags WHERE file_path = ?", path); err != nil {
		return fmt.Errorf("invalidate %s: %w", path, err)
	}
	return nil
}
