// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package extract

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/petar-djukic/reporank/internal/discover"
	"github.com/petar-djukic/reporank/pkg/types"
)

// extractSitter runs the definition and reference queries of spec over
// content. References to names the file itself defines are dropped.
func extractSitter(ctx context.Context, f discover.File, content []byte, spec *langSpec) ([]types.Tag, error) {
	defQ, refQ, err := spec.queries()
	if err != nil {
		return nil, err
	}

	root, err := sitter.ParseCtx(ctx, content, spec.lang)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.RelPath, err)
	}
	if root == nil {
		return nil, fmt.Errorf("parsing %s: empty tree", f.RelPath)
	}

	var tags []types.Tag
	defined := make(map[string]bool)
	for _, c := range runQuery(defQ, root, content) {
		defined[c.name] = true
		tags = append(tags, newTag(f, c.line, c.name, types.Definition))
	}
	for _, c := range runQuery(refQ, root, content) {
		if defined[c.name] {
			continue
		}
		tags = append(tags, newTag(f, c.line, c.name, types.Reference))
	}
	return tags, nil
}

// capture is a captured name and its 1-based line.
type capture struct {
	name string
	line int
}

// runQuery executes q and returns the captured names, deduplicated by
// name and line.
func runQuery(q *sitter.Query, root *sitter.Node, content []byte) []capture {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	seen := make(map[capture]bool)
	var out []capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			cp := capture{
				name: c.Node.Content(content),
				line: int(c.Node.StartPoint().Row) + 1,
			}
			if cp.name == "" || seen[cp] {
				continue
			}
			seen[cp] = true
			out = append(out, cp)
		}
	}
	return out
}

func newTag(f discover.File, line int, name string, kind types.TagKind) types.Tag {
	return types.Tag{RelPath: f.RelPath, AbsPath: f.AbsPath, Line: line, Name: name, Kind: kind}
}
