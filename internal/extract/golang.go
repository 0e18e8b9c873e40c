// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package extract

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	gotypes "go/types"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/petar-djukic/reporank/internal/discover"
	"github.com/petar-djukic/reporank/pkg/types"
)

// extractGo parses a Go file and tags its package-level declarations
// (functions, methods, types, variables and constants) as definitions and
// every other identifier as a reference. Predeclared names, the blank
// identifier and names the file defines itself are not tagged.
func extractGo(f discover.File, content []byte) ([]types.Tag, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, f.AbsPath, content, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.RelPath, err)
	}

	var tags []types.Tag
	declIdents := make(map[*ast.Ident]bool)
	defined := make(map[string]bool)

	addDef := func(id *ast.Ident) {
		if id == nil || id.Name == "_" {
			return
		}
		declIdents[id] = true
		defined[id.Name] = true
		tags = append(tags, newTag(f, fset.Position(id.Pos()).Line, id.Name, types.Definition))
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			addDef(d.Name)
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					addDef(s.Name)
				case *ast.ValueSpec:
					for _, name := range s.Names {
						addDef(name)
					}
				}
			}
		}
	}

	type seenKey struct {
		name string
		line int
	}
	seen := make(map[seenKey]bool)

	in := inspector.New([]*ast.File{file})
	in.Preorder([]ast.Node{(*ast.Ident)(nil)}, func(n ast.Node) {
		id := n.(*ast.Ident)
		if id == file.Name || declIdents[id] || defined[id.Name] || id.Name == "_" {
			return
		}
		if gotypes.Universe.Lookup(id.Name) != nil {
			return
		}
		k := seenKey{name: id.Name, line: fset.Position(id.Pos()).Line}
		if seen[k] {
			return
		}
		seen[k] = true
		tags = append(tags, newTag(f, k.line, id.Name, types.Reference))
	})

	return tags, nil
}
