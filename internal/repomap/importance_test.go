// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIdentifierModel_Multiplier(t *testing.T) {
	mentioned := map[string]bool{"foo": true, "getUserName": true}

	tests := []struct {
		name string
		want float64
	}{
		{"bar", 1.0},             // short, plain
		{"foo", 10.0},            // mentioned
		{"getUserName", 100.0},   // mentioned and camelCase
		{"get_user", 10.0},       // snake_case, exactly 8 runes
		{"get_usr", 1.0},         // snake_case, too short
		{"config-file", 10.0},    // kebab-case
		{"CONSTANTS", 1.0},       // long but single case
		{"lowercaseonly", 1.0},   // long but single case
		{"_x", 0.1},              // private
		{"_private_helper", 1.0}, // private but long snake_case
		{"__init__", 1.0},        // 8 runes with underscores and letters
		{"__", 0.1},              // no letters
	}

	m := DefaultIdentifierModel{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Multiplier(tt.name, mentioned), 1e-12)
		})
	}
}

func TestIsWellFormed(t *testing.T) {
	assert.True(t, isWellFormed("a_b"))
	assert.True(t, isWellFormed("a-b"))
	assert.True(t, isWellFormed("aB"))
	assert.False(t, isWellFormed("_"))
	assert.False(t, isWellFormed("-1"))
	assert.False(t, isWellFormed("abc"))
	assert.False(t, isWellFormed(""))
}
