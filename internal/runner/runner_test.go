// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/reporank/internal/cache"
	"github.com/petar-djukic/reporank/internal/config"
	"github.com/petar-djukic/reporank/internal/repomap"
	"github.com/petar-djukic/reporank/pkg/types"
)

// setupTestRepo creates a temporary directory with the given files.
func setupTestRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func sampleRepo(t *testing.T) string {
	return setupTestRepo(t, map[string]string{
		"store/store.go": `package store

type RecordStore struct{}

func OpenRecordStore() *RecordStore { return &RecordStore{} }
`,
		"api/handler.go": `package api

import "example.com/store"

func ServeRecords() {
	s := store.OpenRecordStore()
	_ = s
}
`,
		"cmd/main.go": `package main

import "example.com/api"

func main() {
	api.ServeRecords()
}
`,
		"tools/report.py": "def summarize_records(rows):\n    return len(rows)\n",
	})
}

func newRunner(t *testing.T, dir string, m *cache.Manager) *Runner {
	t.Helper()
	cfg := config.Default()
	cfg.WorkDir = dir
	r, err := NewRunner(Deps{Config: cfg, Cache: m})
	require.NoError(t, err)
	return r
}

func TestRun_RanksDefinitions(t *testing.T) {
	dir := sampleRepo(t)
	res, err := newRunner(t, dir, nil).Run(context.Background(), Request{})
	require.NoError(t, err)

	require.NotEmpty(t, res.Files)
	assert.Equal(t, "store/store.go", res.Files[0].Path)
	assert.Equal(t, 4, res.Extract.FilesProcessed)
	assert.Equal(t, "uniform", res.Metrics.Tier)

	symbols := map[string]bool{}
	for _, d := range res.Definitions {
		symbols[d.Symbol] = true
	}
	assert.True(t, symbols["OpenRecordStore"])
	assert.True(t, symbols["ServeRecords"])

	assert.Contains(t, res.Map.Map, "store/store.go\n  type RecordStore struct{}\n  func OpenRecordStore() *RecordStore { return &RecordStore{} }\n")
	assert.Contains(t, res.Map.Map, "4 files")
	assert.False(t, res.CacheHit)
}

func TestRun_FocusIsExcludedAndPersonalizes(t *testing.T) {
	dir := sampleRepo(t)
	r := newRunner(t, dir, nil)

	res, err := r.Run(context.Background(), Request{Focus: types.Focus{Files: []string{filepath.Join(dir, "api", "handler.go")}}})
	require.NoError(t, err)

	assert.Equal(t, "personalized", res.Metrics.Tier)
	for _, f := range res.Files {
		assert.NotEqual(t, "api/handler.go", f.Path)
	}
	assert.NotContains(t, res.Map.Map, "api/handler.go")
}

func TestRun_Limit(t *testing.T) {
	res, err := newRunner(t, sampleRepo(t), nil).Run(context.Background(), Request{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
	assert.Len(t, res.Definitions, 1)
}

func TestRun_MapCache(t *testing.T) {
	dir := sampleRepo(t)
	m, err := cache.Open(cache.Options{Dir: filepath.Join(t.TempDir(), "cache")})
	require.NoError(t, err)
	defer m.Close()
	r := newRunner(t, dir, m)

	first, err := r.Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := r.Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Map.Map, second.Map.Map)
	assert.Equal(t, first.Files, second.Files)

	// A different budget is a different map, but tags come from the tag cache.
	third, err := r.Run(context.Background(), Request{TokenBudget: 64})
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Equal(t, 4, third.Extract.CacheHits)
}

func TestRun_Cancelled(t *testing.T) {
	r := newRunner(t, sampleRepo(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_EmptyRepository(t *testing.T) {
	res, err := newRunner(t, t.TempDir(), nil).Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Empty(t, res.Definitions)
	assert.Equal(t, "none", res.Metrics.Tier)
	assert.Contains(t, res.Map.Map, "0/0 files")
}

func TestNewRunner_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "networkx"
	_, err := NewRunner(Deps{Config: cfg})
	assert.ErrorIs(t, err, repomap.ErrUnknownBackend)
}

func TestNormalizeFocus(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.WorkDir = dir
	cfg.Timeout = time.Second
	r, err := NewRunner(Deps{Config: cfg})
	require.NoError(t, err)

	got := r.normalizeFocus(types.Focus{
		Files:           []string{filepath.Join(dir, "a", "b.go"), "./c.py"},
		MentionedFiles:  []string{"d/../e.ts"},
		MentionedIdents: []string{"Thing"},
	})
	assert.Equal(t, []string{"a/b.go", "c.py"}, got.Files)
	assert.Equal(t, []string{"e.ts"}, got.MentionedFiles)
	assert.Equal(t, []string{"Thing"}, got.MentionedIdents)
}
