// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package extract turns source files into definition and reference tags.
package extract

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/reporank/internal/discover"
	"github.com/petar-djukic/reporank/pkg/types"
)

// TagStore caches the tags of a file between runs.
type TagStore interface {
	Get(path string, modTime int64, content []byte) ([]types.Tag, bool)
	Put(path string, modTime int64, content []byte, language string, tags []types.Tag) error
}

// ExtractStats tracks extraction statistics.
type ExtractStats struct {
	FilesProcessed int `json:"files_processed"`
	FilesSkipped   int `json:"files_skipped"`
	CacheHits      int `json:"cache_hits"`
	ParseCount     int `json:"parse_count"`
}

type counters struct {
	processed, skipped, hits, parses atomic.Int64
}

func (c *counters) stats() ExtractStats {
	return ExtractStats{
		FilesProcessed: int(c.processed.Load()),
		FilesSkipped:   int(c.skipped.Load()),
		CacheHits:      int(c.hits.Load()),
		ParseCount:     int(c.parses.Load()),
	}
}

// Extractor extracts tags from source files. It is safe for concurrent use.
type Extractor struct {
	store   TagStore
	workers int
	logger  *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStore sets the tag cache.
func WithStore(s TagStore) Option {
	return func(e *Extractor) { e.store = s }
}

// WithWorkers sets the number of files parsed in parallel.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor. Without a store every file is parsed.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		workers: runtime.GOMAXPROCS(0),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	e.logger = e.logger.With(zap.String("component", "extract"))
	return e
}

// Supported reports whether the extractor can parse the language.
func Supported(language string) bool {
	if language == discover.Go {
		return true
	}
	_, ok := sitterLangs[language]
	return ok
}

// ExtractAll extracts tags from files concurrently. Tags keep the order of
// files. Files that cannot be read or parsed are skipped and counted; only
// cancellation of ctx fails the call.
func (e *Extractor) ExtractAll(ctx context.Context, files []discover.File) ([]types.Tag, ExtractStats, error) {
	var c counters
	results := make([][]types.Tag, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tags, hit, err := e.ExtractFile(gctx, f)
			if err != nil {
				c.skipped.Add(1)
				e.logger.Debug("skipping file", zap.String("path", f.RelPath), zap.Error(err))
				return nil
			}
			c.processed.Add(1)
			if hit {
				c.hits.Add(1)
			} else {
				c.parses.Add(1)
			}
			results[i] = tags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, c.stats(), err
	}

	var all []types.Tag
	for _, tags := range results {
		all = append(all, tags...)
	}
	stats := c.stats()
	e.logger.Debug("extracted tags",
		zap.Int("files", stats.FilesProcessed),
		zap.Int("skipped", stats.FilesSkipped),
		zap.Int("cache_hits", stats.CacheHits),
		zap.Int("tags", len(all)),
	)
	return all, stats, nil
}

// ExtractFile extracts the tags of one file, using the store when the
// content is unchanged. The boolean reports a cache hit.
func (e *Extractor) ExtractFile(ctx context.Context, f discover.File) ([]types.Tag, bool, error) {
	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return nil, false, err
	}
	modTime := f.ModTime.UnixNano()

	if e.store != nil {
		if tags, ok := e.store.Get(f.RelPath, modTime, content); ok {
			return tags, true, nil
		}
	}

	tags, err := parse(ctx, f, content)
	if err != nil {
		return nil, false, err
	}

	if e.store != nil {
		if err := e.store.Put(f.RelPath, modTime, content, f.Language, tags); err != nil {
			e.logger.Warn("caching tags", zap.String("path", f.RelPath), zap.Error(err))
		}
	}
	return tags, false, nil
}

func parse(ctx context.Context, f discover.File, content []byte) ([]types.Tag, error) {
	if f.Language == discover.Go {
		return extractGo(f, content)
	}
	spec, ok := sitterLangs[f.Language]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q for %s", f.Language, f.RelPath)
	}
	return extractSitter(ctx, f, content, spec)
}
