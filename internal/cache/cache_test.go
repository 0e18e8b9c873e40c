// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/reporank/pkg/types"
)

func sampleTags() []types.Tag {
	return []types.Tag{
		{RelPath: "a.py", AbsPath: "/repo/a.py", Line: 1, Name: "foo", Kind: types.Definition},
		{RelPath: "a.py", AbsPath: "/repo/a.py", Line: 4, Name: "bar", Kind: types.Reference},
	}
}

func openBoth(t *testing.T) map[string]*Manager {
	t.Helper()
	mem, err := Open(Options{})
	require.NoError(t, err)
	disk, err := Open(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() {
		mem.Close()
		disk.Close()
	})
	return map[string]*Manager{"memory": mem, "sqlite": disk}
}

func TestTagCache_HitAndMiss(t *testing.T) {
	for name, m := range openBoth(t) {
		t.Run(name, func(t *testing.T) {
			content := []byte("def foo():\n    bar()\n")

			_, ok := m.Tags().Get("a.py", 100, content)
			assert.False(t, ok)

			require.NoError(t, m.Tags().Put("a.py", 100, content, "python", sampleTags()))

			got, ok := m.Tags().Get("a.py", 100, content)
			require.True(t, ok)
			assert.Equal(t, sampleTags(), got)

			// Touched file with the same content is still valid.
			_, ok = m.Tags().Get("a.py", 200, content)
			assert.True(t, ok)

			// Edited content is not.
			_, ok = m.Tags().Get("a.py", 300, []byte("def foo(): pass\n"))
			assert.False(t, ok)

			require.NoError(t, m.Tags().Invalidate("a.py"))
			_, ok = m.Tags().Get("a.py", 100, content)
			assert.False(t, ok)

			s, err := m.Stats()
			require.NoError(t, err)
			assert.Equal(t, int64(2), s.TagHits)
			assert.Equal(t, int64(3), s.TagMisses)
			assert.InDelta(t, 0.4, s.HitRate, 1e-9)
		})
	}
}

func TestTagCache_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	content := []byte("x")

	m, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, m.Tags().Put("a.py", 1, content, "python", sampleTags()))
	require.NoError(t, m.Close())
	assert.FileExists(t, filepath.Join(dir, dbName))

	m, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer m.Close()

	got, ok := m.Tags().Get("a.py", 1, content)
	require.True(t, ok)
	assert.Equal(t, sampleTags(), got)
}

func TestTagCache_HitRefreshesStoredModTime(t *testing.T) {
	dir := t.TempDir()
	content := []byte("x")

	m, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, m.Tags().Put("a.py", 1, content, "python", sampleTags()))
	require.NoError(t, m.Close())

	storedModTime := func(m *Manager) int64 {
		var mtime int64
		require.NoError(t, m.db.QueryRow("SELECT mtime_ns FROM tags WHERE file_path = ?", "a.py").Scan(&mtime))
		return mtime
	}

	m, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer m.Close()

	// Served from the database.
	_, ok := m.Tags().Get("a.py", 2, content)
	require.True(t, ok)
	assert.Equal(t, int64(2), storedModTime(m))

	// Served from memory.
	_, ok = m.Tags().Get("a.py", 3, content)
	require.True(t, ok)
	assert.Equal(t, int64(3), storedModTime(m))
}

func TestMapKey_Hash(t *testing.T) {
	base := MapKey{
		Focus:       types.Focus{Files: []string{"a.py", "b.py"}},
		Files:       []string{"a.py@1", "b.py@2", "c.py@3"},
		TokenBudget: 1024,
	}

	reordered := base
	reordered.Focus = types.Focus{Files: []string{"b.py", "a.py"}}
	reordered.Files = []string{"c.py@3", "a.py@1", "b.py@2"}
	assert.Equal(t, base.Hash(), reordered.Hash())

	budget := base
	budget.TokenBudget = 2048
	assert.NotEqual(t, base.Hash(), budget.Hash())

	edited := base
	edited.Files = []string{"a.py@1", "b.py@2", "c.py@4"}
	assert.NotEqual(t, base.Hash(), edited.Hash())

	// Moving a name between focus sets changes the key.
	moved := base
	moved.Focus = types.Focus{Files: []string{"a.py"}, MentionedFiles: []string{"b.py"}}
	assert.NotEqual(t, base.Hash(), moved.Hash())
}

func TestMapCache_RoundTrip(t *testing.T) {
	for name, m := range openBoth(t) {
		t.Run(name, func(t *testing.T) {
			key := MapKey{Files: []string{"a.py@1"}, TokenBudget: 512}

			_, ok := m.Maps().Get(key)
			assert.False(t, ok)

			require.NoError(t, m.Maps().Put(key, []byte(`{"map":"x"}`)))
			got, ok := m.Maps().Get(key)
			require.True(t, ok)
			assert.JSONEq(t, `{"map":"x"}`, string(got))
		})
	}
}

func TestManager_ClearAndStats(t *testing.T) {
	for name, m := range openBoth(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, m.Tags().Put("a.py", 1, []byte("a"), "python", sampleTags()))
			require.NoError(t, m.Tags().Put("b.py", 1, []byte("b"), "python", nil))
			require.NoError(t, m.Maps().Put(MapKey{TokenBudget: 1}, []byte("{}")))

			s, err := m.Stats()
			require.NoError(t, err)
			assert.Equal(t, int64(2), s.TagEntries)
			assert.Equal(t, int64(1), s.MapEntries)
			assert.Equal(t, name == "sqlite", s.Persistent)

			require.NoError(t, m.Clear())
			s, err = m.Stats()
			require.NoError(t, err)
			assert.Zero(t, s.TagEntries)
			assert.Zero(t, s.MapEntries)
		})
	}
}
