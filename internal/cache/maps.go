// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/petar-djukic/reporank/pkg/types"
)

// MapKey identifies a rendered map. Files should carry whatever makes a
// file version unique (for example path, size and modification time) so
// that edits produce a new key.
type MapKey struct {
	Focus       types.Focus
	Files       []string
	TokenBudget int
	Options     string // Any other setting that changes the output
}

// Hash returns a stable hex digest of the key. Slice order does not matter.
func (k MapKey) Hash() string {
	d := xxhash.New()
	write := func(label string, items []string) {
		sorted := slices.Clone(items)
		slices.Sort(sorted)
		d.WriteString(label)
		for _, s := range sorted {
			d.WriteString("\x00")
			d.WriteString(s)
		}
		d.WriteString("\x01")
	}

	d.WriteString("v" + version + "\x01")
	write("focus", k.Focus.Files)
	write("mentioned_files", k.Focus.MentionedFiles)
	write("mentioned_idents", k.Focus.MentionedIdents)
	write("files", k.Files)
	d.WriteString("budget=" + strconv.Itoa(k.TokenBudget) + "\x01")
	d.WriteString("options=" + k.Options)
	return strconv.FormatUint(d.Sum64(), 16)
}

// MapCache stores opaque rendered-map payloads.
type MapCache struct {
	l1     *lru.Cache[string, []byte]
	db     *sql.DB
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

func newMapCache(db *sql.DB, size int, logger *zap.Logger) (*MapCache, error) {
	l1, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create map lru: %w", err)
	}
	return &MapCache{l1: l1, db: db, logger: logger}, nil
}

// Get returns the payload stored under key.
func (c *MapCache) Get(key MapKey) ([]byte, bool) {
	h := key.Hash()
	if p, ok := c.l1.Get(h); ok {
		c.hits.Add(1)
		return p, true
	}

	if c.db != nil {
		var payload string
		err := c.db.QueryRow("SELECT payload FROM maps WHERE cache_key = ?", h).Scan(&payload)
		switch {
		case err == nil:
			c.l1.Add(h, []byte(payload))
			c.hits.Add(1)
			return []byte(payload), true
		case !errors.Is(err, sql.ErrNoRows):
			c.logger.Warn("reading cached map", zap.String("key", h), zap.Error(err))
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Put stores payload under key.
func (c *MapCache) Put(key MapKey, payload []byte) error {
	h := key.Hash()
	c.l1.Add(h, payload)
	if c.db == nil {
		return nil
	}
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO maps (cache_key, payload, cached_at) VALUES (?, ?, ?)",
		h, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store map: %w", err)
	}
	return nil
}
