// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/reporank/internal/cache"
	"github.com/petar-djukic/reporank/internal/config"
)

// newCacheCmd creates the "cache" command group.
func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the on-disk cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print cache entry counts as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.openCache()
			if err != nil {
				return err
			}
			defer m.Close()

			stats, err := m.Stats()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling stats: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.openCache()
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared cache at %s.\n", m.Path())
			return nil
		},
	})

	return cmd
}

// openCache opens the persistent cache of the configured work directory.
func (a *app) openCache() (*cache.Manager, error) {
	cfg := config.FromViper(a.v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dir := cfg.CacheDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.WorkDir, dir)
	}
	m, err := cache.Open(cache.Options{Dir: dir, L1Size: cfg.CacheL1Size, Logger: a.logger})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return m, nil
}
