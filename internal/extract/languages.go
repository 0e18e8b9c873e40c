// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package extract

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/petar-djukic/reporank/internal/discover"
)

// langSpec holds the tree-sitter language and query patterns for a language.
type langSpec struct {
	lang *sitter.Language
	defQ string // Definitions, captured as @name
	refQ string // References, captured as @ref

	once sync.Once
	defs *sitter.Query
	refs *sitter.Query
	err  error
}

// queries compiles the patterns on first use.
func (s *langSpec) queries() (*sitter.Query, *sitter.Query, error) {
	s.once.Do(func() {
		if s.defs, s.err = sitter.NewQuery([]byte(s.defQ), s.lang); s.err != nil {
			s.err = fmt.Errorf("definition query: %w", s.err)
			return
		}
		if s.refs, s.err = sitter.NewQuery([]byte(s.refQ), s.lang); s.err != nil {
			s.err = fmt.Errorf("reference query: %w", s.err)
		}
	})
	return s.defs, s.refs, s.err
}

const jsDefs = `
	(function_declaration name: (identifier) @name)
	(class_declaration name: (identifier) @name)
	(method_definition name: (property_identifier) @name)
	(variable_declarator name: (identifier) @name)
`

const tsDefs = `
	(function_declaration name: (identifier) @name)
	(class_declaration name: (type_identifier) @name)
	(method_definition name: (property_identifier) @name)
	(variable_declarator name: (identifier) @name)
	(interface_declaration name: (type_identifier) @name)
	(type_alias_declaration name: (type_identifier) @name)
`

const tsRefs = `
	(identifier) @ref
	(type_identifier) @ref
	(property_identifier) @ref
`

// sitterLangs maps discover language names to tree-sitter specs. Go is
// handled natively by extractGo.
var sitterLangs = map[string]*langSpec{
	discover.Python: {
		lang: python.GetLanguage(),
		defQ: `
			(function_definition name: (identifier) @name)
			(class_definition name: (identifier) @name)
		`,
		refQ: `
			(identifier) @ref
		`,
	},
	discover.JavaScript: {
		lang: javascript.GetLanguage(),
		defQ: jsDefs,
		refQ: `
			(identifier) @ref
			(property_identifier) @ref
		`,
	},
	discover.TypeScript: {
		lang: typescript.GetLanguage(),
		defQ: tsDefs,
		refQ: tsRefs,
	},
	discover.TSX: {
		lang: tsx.GetLanguage(),
		defQ: tsDefs,
		refQ: tsRefs,
	},
}
