// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package render formats ranked files and definitions into a compact text
// map that fits a token budget.
package render

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/petar-djukic/reporank/pkg/types"
)

const (
	defaultTokenRatio    = 0.25
	defaultTokenBudget   = 1024
	defaultMaxLineLength = 100
	headerReserve        = 80
)

// Config configures map rendering.
type Config struct {
	TokenBudget   float64 // Maximum tokens for the map (default 1024)
	TokenRatio    float64 // Tokens per character (default 0.25)
	MaxLineLength int     // Longer signature lines are truncated (default 100)
}

// Input is everything a map is rendered from.
type Input struct {
	Files       []types.FileRank       // Ranked files, best first
	Definitions []types.DefinitionRank // Ranked definitions, best first
	Tags        []types.Tag            // Tags used to locate definition lines
	AllFiles    []string               // The file universe
	Exclude     []string               // Files left out of the map
}

type entry struct {
	name string
	line int
}

// Render lays out files in rank order, each followed by the source lines
// of its ranked definitions, and stops before the token budget would be
// exceeded. Files ranked only as a whole are listed without definitions.
// When there is no ranking at all the universe is listed alphabetically.
func Render(in Input, cfg Config) *types.RepoMapResult {
	budget := cfg.TokenBudget
	if budget <= 0 {
		budget = defaultTokenBudget
	}
	ratio := cfg.TokenRatio
	if ratio <= 0 {
		ratio = defaultTokenRatio
	}
	maxLine := cfg.MaxLineLength
	if maxLine <= 0 {
		maxLine = defaultMaxLineLength
	}

	skip := make(map[string]bool, len(in.Exclude))
	for _, f := range in.Exclude {
		skip[f] = true
	}

	// Index definition tags: (file, symbol) -> first line, file -> abs path.
	type defKey struct{ file, name string }
	defLines := make(map[defKey]int)
	absPaths := make(map[string]string)
	totalSyms := 0
	for _, t := range in.Tags {
		if t.Kind != types.Definition {
			continue
		}
		totalSyms++
		absPaths[t.RelPath] = t.AbsPath
		k := defKey{t.RelPath, t.Name}
		if _, ok := defLines[k]; !ok {
			defLines[k] = t.Line
		}
	}

	// Group definitions by file, preserving rank order for files.
	var fileOrder []string
	fileSeen := make(map[string]bool)
	fileEntries := make(map[string][]entry)
	addFile := func(f string) {
		if !fileSeen[f] && !skip[f] {
			fileSeen[f] = true
			fileOrder = append(fileOrder, f)
		}
	}

	for _, d := range in.Definitions {
		addFile(d.File)
		if skip[d.File] {
			continue
		}
		fileEntries[d.File] = append(fileEntries[d.File], entry{name: d.Symbol, line: defLines[defKey{d.File, d.Symbol}]})
	}
	for _, f := range in.Files {
		addFile(f.Path)
	}
	if len(in.Definitions) == 0 && len(in.Files) == 0 {
		all := slices.Clone(in.AllFiles)
		slices.Sort(all)
		for _, f := range all {
			addFile(f)
		}
	}

	var buf strings.Builder
	tokensUsed := float64(headerReserve) * ratio
	filesShown := 0
	symsShown := 0
	lines := newLineReader()

	for _, file := range fileOrder {
		var section strings.Builder
		section.WriteString(file + "\n")

		entries := fileEntries[file]
		slices.SortStableFunc(entries, func(a, b entry) int { return a.line - b.line })
		for _, e := range entries {
			sig := lines.line(absPaths[file], e.line)
			if sig == "" {
				sig = e.name
			}
			section.WriteString(truncate("  "+sig, maxLine) + "\n")
		}

		sectionText := section.String()
		sectionTokens := float64(len(sectionText)) * ratio
		if tokensUsed+sectionTokens > budget {
			break
		}

		buf.WriteString(sectionText)
		tokensUsed += sectionTokens
		filesShown++
		symsShown += len(entries)
	}

	header := fmt.Sprintf("Repository map (%d/%d files, %d/%d symbols)", filesShown, len(in.AllFiles), symsShown, totalSyms)
	mapText := header + "\n" + buf.String()

	return &types.RepoMapResult{
		Map:        mapText,
		FileCount:  filesShown,
		TotalFiles: len(in.AllFiles),
		SymCount:   symsShown,
		TotalSyms:  totalSyms,
		TokensUsed: float64(len(mapText)) * ratio,
	}
}

// truncate shortens line to at most limit bytes, ending in "...", without
// splitting a UTF-8 sequence.
func truncate(line string, limit int) string {
	if len(line) <= limit {
		return line
	}
	cut := max(limit-3, 0)
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}

// lineReader reads source lines, loading each file at most once.
type lineReader struct {
	files map[string][]string
}

func newLineReader() *lineReader {
	return &lineReader{files: make(map[string][]string)}
}

// line returns the trimmed 1-based line n of path, or "" if unavailable.
func (r *lineReader) line(path string, n int) string {
	if path == "" || n < 1 {
		return ""
	}
	lines, ok := r.files[path]
	if !ok {
		content, err := os.ReadFile(path)
		if err == nil {
			lines = strings.Split(string(content), "\n")
		}
		r.files[path] = lines
	}
	if n > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[n-1])
}
