// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/reporank/pkg/types"
)

func def(file, name string) types.Tag {
	return types.Tag{RelPath: file, AbsPath: "/repo/" + file, Line: 1, Name: name, Kind: types.Definition}
}

func ref(file, name string) types.Tag {
	return types.Tag{RelPath: file, AbsPath: "/repo/" + file, Line: 2, Name: name, Kind: types.Reference}
}

func refs(file, name string, n int) []types.Tag {
	tags := make([]types.Tag, n)
	for i := range tags {
		tags[i] = ref(file, name)
	}
	return tags
}

func buildGraph(t *testing.T, tags []types.Tag, focused, mentioned []string) *Graph {
	t.Helper()
	g, err := NewBuilder(nil, nil).Build(tags, focused, mentioned)
	require.NoError(t, err)
	return g
}

func sum(m map[string]float64) float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}

// sampleTags is a small repository: a service that calls helpers in two
// packages, a test file, and a constant nobody uses.
func sampleTags() []types.Tag {
	var tags []types.Tag
	tags = append(tags,
		def("pkg/db/conn.go", "OpenConnection"),
		def("pkg/db/conn.go", "defaultTimeout"),
		def("pkg/auth/token.go", "ValidateToken"),
		def("pkg/auth/token.go", "tokenCache"),
		def("cmd/server/main.go", "main"),
		def("cmd/server/main.go", "HandleRequest"),
		def("cmd/server/main_test.go", "TestHandleRequest"),
		def("pkg/util/strings.go", "Trim"),
	)
	tags = append(tags, refs("cmd/server/main.go", "OpenConnection", 2)...)
	tags = append(tags, refs("cmd/server/main.go", "ValidateToken", 3)...)
	tags = append(tags, refs("pkg/auth/token.go", "OpenConnection", 1)...)
	tags = append(tags, refs("pkg/auth/token.go", "tokenCache", 4)...)
	tags = append(tags, refs("cmd/server/main_test.go", "HandleRequest", 2)...)
	tags = append(tags, refs("pkg/db/conn.go", "defaultTimeout", 1)...)
	tags = append(tags, refs("pkg/auth/token.go", "Trim", 1)...)
	tags = append(tags, refs("cmd/server/main.go", "Trim", 1)...)
	return tags
}
