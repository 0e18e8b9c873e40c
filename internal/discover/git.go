// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package discover

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNoGit is returned when the root is not a git repository.
var ErrNoGit = errors.New("not a git repository")

// trackedFiles returns the slash-separated paths recorded in the git
// index of the repository at root.
func trackedFiles(root string) (map[string]bool, error) {
	r, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}

	idx, err := r.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	tracked := make(map[string]bool, len(idx.Entries))
	for _, e := range idx.Entries {
		tracked[e.Name] = true
	}
	return tracked, nil
}
