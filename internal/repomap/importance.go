// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	mentionedFactor   = 10.0
	wellFormedFactor  = 10.0
	privateFactor     = 0.1
	longNameThreshold = 8
)

// IdentifierModel scores how significant a symbol name is for ranking.
// The returned multiplier scales the weight of every edge created for the
// symbol.
type IdentifierModel interface {
	Multiplier(name string, mentioned map[string]bool) float64
}

// DefaultIdentifierModel favours identifiers the user mentioned and long
// descriptive names, and suppresses names with a leading underscore.
type DefaultIdentifierModel struct{}

// Multiplier implements IdentifierModel.
func (DefaultIdentifierModel) Multiplier(name string, mentioned map[string]bool) float64 {
	mul := 1.0
	if mentioned[name] {
		mul *= mentionedFactor
	}
	if isWellFormed(name) && utf8.RuneCountInString(name) >= longNameThreshold {
		mul *= wellFormedFactor
	}
	if strings.HasPrefix(name, "_") {
		mul *= privateFactor
	}
	return mul
}

// isWellFormed reports whether name looks like snake_case, kebab-case or
// camelCase.
func isWellFormed(name string) bool {
	var hasLetter, hasUpper, hasLower bool
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	snake := strings.ContainsRune(name, '_') && hasLetter
	kebab := strings.ContainsRune(name, '-') && hasLetter
	camel := hasUpper && hasLower
	return snake || kebab || camel
}
