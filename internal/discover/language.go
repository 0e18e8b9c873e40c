// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package discover

import (
	"path/filepath"
	"strings"
)

// Language names.
const (
	Go         = "go"
	Python     = "python"
	JavaScript = "javascript"
	TypeScript = "typescript"
	TSX        = "tsx"
)

var extensions = map[string]string{
	".go":  Go,
	".py":  Python,
	".pyi": Python,
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".ts":  TypeScript,
	".mts": TypeScript,
	".tsx": TSX,
}

// LanguageOf returns the language of a file name, or "" when unsupported.
func LanguageOf(name string) string {
	return extensions[strings.ToLower(filepath.Ext(name))]
}
