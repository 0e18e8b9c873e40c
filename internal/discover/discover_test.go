// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package discover

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// initTestRepo creates a repository with the given files committed.
func initTestRepo(t *testing.T, committed map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFiles(t, dir, committed)
	for name := range committed {
		_, err = wt.Add(name)
		require.NoError(t, err)
	}

	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@test.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return dir
}

func TestFiles_PlainDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.go":             "package main\n",
		"pkg/util.py":         "def f(): pass\n",
		"web/app.tsx":         "export const A = 1\n",
		"README.md":           "# readme\n",
		"node_modules/lib.js": "var x = 1\n",
		".hidden/secret.py":   "x = 1\n",
		"out/generated.py":    "x = 1\n",
		".gitignore":          "out/\n",
	})

	files, err := Files(context.Background(), dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go", "pkg/util.py", "web/app.tsx"}, Paths(files))
	assert.Equal(t, Go, files[0].Language)
	assert.Equal(t, Python, files[1].Language)
	assert.Equal(t, TSX, files[2].Language)
	assert.True(t, filepath.IsAbs(files[0].AbsPath))
	assert.Equal(t, int64(len("package main\n")), files[0].Size)
}

func TestFiles_GitRepository(t *testing.T) {
	dir := initTestRepo(t, map[string]string{
		"main.go":     "package main\n",
		"gen/keep.py": "x = 1\n",
	})
	writeFiles(t, dir, map[string]string{
		".gitignore":     "gen/\n*.tmp.py\n",
		"gen/drop.py":    "x = 1\n",
		"new.py":         "y = 2\n",
		"scratch.tmp.py": "z = 3\n",
	})

	files, err := Files(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"gen/keep.py", "main.go", "new.py"}, Paths(files))
}

func TestFiles_TrackedFilesInSkippedDirectories(t *testing.T) {
	dir := initTestRepo(t, map[string]string{
		"main.go":       "package main\n",
		"build/tool.py": "x = 1\n",
		".ci/run.py":    "y = 2\n",
	})
	writeFiles(t, dir, map[string]string{
		"build/scratch.py":    "z = 3\n",
		".ci/local.py":        "z = 4\n",
		"node_modules/lib.js": "var x = 1\n",
	})

	files, err := Files(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{".ci/run.py", "build/tool.py", "main.go"}, Paths(files))
}

func TestFiles_LanguageFilterAndSizeLimit(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.go":   "package a\n",
		"b.py":   "x = 1\n",
		"big.py": strings.Repeat("x = 1\n", 100),
	})

	files, err := Files(context.Background(), dir, Options{Languages: []string{Python}, MaxFileSize: 50})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.py"}, Paths(files))
}

func TestFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.go": "package a\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Files(ctx, dir, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrackedFiles_NotARepo(t *testing.T) {
	_, err := trackedFiles(t.TempDir())
	assert.ErrorIs(t, err, ErrNoGit)
}

func TestLanguageOf(t *testing.T) {
	assert.Equal(t, Go, LanguageOf("x.go"))
	assert.Equal(t, Python, LanguageOf("X.PY"))
	assert.Equal(t, TypeScript, LanguageOf("a/b.ts"))
	assert.Equal(t, JavaScript, LanguageOf("c.jsx"))
	assert.Empty(t, LanguageOf("Makefile"))
	assert.Empty(t, LanguageOf("notes.md"))
}
