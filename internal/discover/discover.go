// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package discover lists the source files of a repository that take part
// in ranking.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
)

const defaultMaxFileSize = 1 << 20

// File is one discovered source file.
type File struct {
	RelPath  string    // Slash-separated path relative to the root
	AbsPath  string    // Absolute path on disk
	Language string    // Language name, see LanguageOf
	ModTime  time.Time // Last modification time
	Size     int64     // Size in bytes
}

// Options narrows discovery.
type Options struct {
	Languages   []string // Restrict to these languages; empty means all supported
	MaxFileSize int64    // Skip larger files (default 1 MiB, negative disables)
}

var skipDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	"node_modules":  true,
	"vendor":        true,
	"__pycache__":   true,
	"venv":          true,
	".venv":         true,
	"build":         true,
	"dist":          true,
	".tox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
}

// Files walks root and returns the supported source files sorted by path.
// Inside a git repository, files tracked in the index are always kept, even
// under hidden or skipped directories, and untracked files are kept unless
// .gitignore or the skip list excludes them. Outside a repository only
// .gitignore and the skip list apply.
func Files(ctx context.Context, root string, opts Options) ([]File, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	maxSize := opts.MaxFileSize
	if maxSize == 0 {
		maxSize = defaultMaxFileSize
	}
	langs := make(map[string]bool, len(opts.Languages))
	for _, l := range opts.Languages {
		langs[l] = true
	}

	tracked, _ := trackedFiles(root)
	trackedDirs := ancestorDirs(tracked)
	gi := loadGitignore(root)

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries we cannot read.
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		name := d.Name()
		if d.IsDir() {
			// Enter skipped directories only for the tracked files inside.
			if path != root && skipped(name) && !trackedDirs[rel] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if !tracked[rel] && (inSkippedDir(rel) || (gi != nil && gi.MatchesPath(rel))) {
			return nil
		}

		lang := LanguageOf(name)
		if lang == "" || (len(langs) > 0 && !langs[lang]) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if maxSize > 0 && info.Size() > maxSize {
			return nil
		}

		files = append(files, File{
			RelPath:  rel,
			AbsPath:  path,
			Language: lang,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(files, func(a, b File) int { return strings.Compare(a.RelPath, b.RelPath) })
	return files, nil
}

func skipped(dir string) bool {
	return skipDirs[dir] || strings.HasPrefix(dir, ".")
}

// inSkippedDir reports whether any directory of the slash-separated rel
// is skipped.
func inSkippedDir(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, p := range parts[:len(parts)-1] {
		if skipped(p) {
			return true
		}
	}
	return false
}

// ancestorDirs returns every directory that contains a path in files.
func ancestorDirs(files map[string]bool) map[string]bool {
	dirs := make(map[string]bool)
	for f := range files {
		for d := path.Dir(f); d != "." && d != "/" && !dirs[d]; d = path.Dir(d) {
			dirs[d] = true
		}
	}
	return dirs
}

// Paths returns the relative paths of files.
func Paths(files []File) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}
	return paths
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
