// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the value types shared across reporank packages.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTag is returned when a tag fails validation.
var ErrInvalidTag = errors.New("invalid tag")

// TagKind distinguishes symbol definitions from references.
type TagKind string

const (
	Definition TagKind = "def"
	Reference  TagKind = "ref"
)

// ParseTagKind converts the textual form of a kind into a TagKind.
// Both the short ("def", "ref") and long ("definition", "reference")
// spellings are accepted.
func ParseTagKind(s string) (TagKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "def", "definition":
		return Definition, nil
	case "ref", "reference":
		return Reference, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidTag, s)
	}
}

// Valid reports whether k is one of the two known kinds.
func (k TagKind) Valid() bool {
	return k == Definition || k == Reference
}

// Tag is one occurrence of a symbol in a source file: either the place
// where it is defined or a place where it is used.
type Tag struct {
	RelPath string  // Path relative to the repository root; the graph node key
	AbsPath string  // Absolute path, used only for reading source lines
	Line    int     // Line number, 0 when unknown
	Name    string  // Symbol name
	Kind    TagKind // Definition or Reference
}

// NewTag builds a validated Tag.
func NewTag(relPath, absPath string, line int, name string, kind TagKind) (Tag, error) {
	t := Tag{
		RelPath: relPath,
		AbsPath: absPath,
		Line:    line,
		Name:    name,
		Kind:    kind,
	}
	if err := t.Validate(); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// Validate checks the tag invariants: a known kind, a non-blank name,
// a non-empty relative path, and a non-negative line.
func (t Tag) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: kind %q must be %q or %q", ErrInvalidTag, t.Kind, Definition, Reference)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: empty name in %s", ErrInvalidTag, t.RelPath)
	}
	if t.RelPath == "" {
		return fmt.Errorf("%w: empty path for %s", ErrInvalidTag, t.Name)
	}
	if t.Line < 0 {
		return fmt.Errorf("%w: negative line %d for %s", ErrInvalidTag, t.Line, t.Name)
	}
	return nil
}

// IsDefinition reports whether the tag marks a definition.
func (t Tag) IsDefinition() bool { return t.Kind == Definition }

// Focus carries the three focus sets of one ranking request.
type Focus struct {
	Files           []string // Files the user is actively working on
	MentionedFiles  []string // Files named in the conversation
	MentionedIdents []string // Identifiers named in the conversation
}
