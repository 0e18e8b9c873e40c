// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"cmp"
	"slices"

	"github.com/petar-djukic/reporank/pkg/types"
)

// TopFiles returns the ranked files not in exclude, highest rank first
// with ties broken by path. A limit of zero or less returns all of them.
func TopFiles(ranks map[string]float64, exclude []string, limit int) []types.FileRank {
	skip := toSet(exclude)
	files := make([]types.FileRank, 0, len(ranks))
	for path, r := range ranks {
		if skip[path] {
			continue
		}
		files = append(files, types.FileRank{Path: path, Rank: r})
	}
	slices.SortFunc(files, func(a, b types.FileRank) int {
		if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files
}

// TopDefinitions returns the first limit entries of an already ordered
// definition list. A limit of zero or less returns the whole list.
func TopDefinitions(defs []types.DefinitionRank, limit int) []types.DefinitionRank {
	if limit > 0 && len(defs) > limit {
		return defs[:limit]
	}
	return defs
}
