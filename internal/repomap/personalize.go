// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/petar-djukic/reporank/pkg/types"
)

// DefaultBoost is the total personalization mass spread over the file
// universe before focus rules apply.
const DefaultBoost = 100.0

// Personalize builds the sparse restart distribution for PageRank. Each
// file starts at zero; focused files gain base, mentioned files are raised
// to at least base, and files with a path component matching a mentioned
// identifier gain base again, where base is boost divided by the size of
// the universe. Only files with a positive value are returned.
func Personalize(focus types.Focus, allFiles []string, boost float64) map[string]float64 {
	universe := slices.Clone(allFiles)
	slices.Sort(universe)
	universe = slices.Compact(universe)

	base := boost / float64(max(len(universe), 1))
	focused := toSet(focus.Files)
	mentionedFiles := toSet(focus.MentionedFiles)
	mentionedIdents := toSet(focus.MentionedIdents)

	pers := make(map[string]float64)
	for _, file := range universe {
		var v float64
		if focused[file] {
			v += base
		}
		if mentionedFiles[file] {
			v = max(v, base)
		}
		if len(mentionedIdents) > 0 && matchesComponent(file, mentionedIdents) {
			v += base
		}
		if v > 0 {
			pers[file] = v
		}
	}
	return pers
}

// matchesComponent reports whether any directory segment, the file name,
// or the file name without its extension is a mentioned identifier.
func matchesComponent(file string, idents map[string]bool) bool {
	for _, c := range pathComponents(file) {
		if idents[c] {
			return true
		}
	}
	return false
}

func pathComponents(file string) []string {
	p := filepath.ToSlash(file)
	var comps []string
	for _, part := range strings.Split(p, "/") {
		if part == "" || part == "." {
			continue
		}
		comps = append(comps, part)
	}
	base := filepath.Base(file)
	comps = append(comps, base)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" && stem != base {
		comps = append(comps, stem)
	}
	return comps
}
