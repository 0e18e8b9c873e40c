// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// FileRank is a file with its PageRank score.
type FileRank struct {
	Path string  `json:"path"`
	Rank float64 `json:"rank"`
}

// DefinitionRank is the share of PageRank attributed to one symbol
// defined in one file.
type DefinitionRank struct {
	File   string  `json:"file"`
	Symbol string  `json:"symbol"`
	Rank   float64 `json:"rank"`
}

// RepoMapResult holds the rendered repository map and metadata.
type RepoMapResult struct {
	Map        string  // Rendered map text
	FileCount  int     // Number of files in the map
	TotalFiles int     // Total files in the repository
	SymCount   int     // Number of symbols in the map
	TotalSyms  int     // Total definitions extracted
	TokensUsed float64 // Estimated token count of the map
}
