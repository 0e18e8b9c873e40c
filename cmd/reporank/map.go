// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/reporank/internal/config"
	"github.com/petar-djukic/reporank/pkg/reporank"
	"github.com/petar-djukic/reporank/pkg/types"
)

// newMapCmd creates the "map" command.
func newMapCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Print the ranked repository map",
		Long:  "Map ranks the repository's files and definitions, biased toward the focused files and mentioned identifiers, and prints the map within the token budget.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMap(cmd)
		},
	}

	cmd.Flags().StringSlice("focus", nil, "Files in focus (repeatable)")
	cmd.Flags().StringSlice("mention-file", nil, "Files mentioned in the request (repeatable)")
	cmd.Flags().StringSlice("mention-ident", nil, "Identifiers mentioned in the request (repeatable)")
	cmd.Flags().Bool("json", false, "Print ranked files and definitions as JSON")
	cmd.Flags().Int("limit", 0, "Maximum files and definitions to report (0 = configured max-files)")

	return cmd
}

func (a *app) runMap(cmd *cobra.Command) error {
	focus := types.Focus{}
	focus.Files, _ = cmd.Flags().GetStringSlice("focus")
	focus.MentionedFiles, _ = cmd.Flags().GetStringSlice("mention-file")
	focus.MentionedIdents, _ = cmd.Flags().GetStringSlice("mention-ident")
	asJSON, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit %d is negative", limit)
	}

	cfg := config.FromViper(a.v)
	r, err := reporank.New(facadeConfig(cfg, a))
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer r.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	res, err := r.Rank(ctx, reporank.Request{Focus: focus, Limit: limit})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !asJSON {
		fmt.Fprint(out, res.Map)
		return nil
	}
	data, err := json.MarshalIndent(struct {
		Files       []types.FileRank       `json:"files"`
		Definitions []types.DefinitionRank `json:"definitions"`
		Metrics     reporank.Metrics       `json:"metrics"`
		CacheHit    bool                   `json:"cache_hit"`
	}{res.Files, res.Definitions, res.Metrics, res.CacheHit}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func facadeConfig(cfg config.Config, a *app) reporank.Config {
	return reporank.Config{
		WorkDir:        cfg.WorkDir,
		MapTokenBudget: cfg.MapTokenBudget,
		MaxFiles:       cfg.MaxFiles,
		MaxFileSize:    cfg.MaxFileSize,
		Languages:      cfg.Languages,
		Boost:          cfg.Boost,
		Damping:        cfg.Damping,
		MaxIterations:  cfg.MaxIterations,
		Tolerance:      cfg.Tolerance,
		Backend:        cfg.Backend,
		CacheDir:       cfg.CacheDir,
		CacheL1Size:    cfg.CacheL1Size,
		NoCache:        cfg.NoCache,
		Timeout:        cfg.Timeout,
		Logger:         a.logger,
	}
}
