// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friedmanirma8-svg/Got/cmd/gotbot/config"
	"github.com/friedmanirma8-svg/Got/services/memory"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and manage the long-term memory archive",
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *memory.Store) error {
			stats, err := store.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exchanges stored: %d\n", stats.TotalExchanges)
			return nil
		})
	},
}

var memorySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search past exchanges by similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withStore(func(store *memory.Store) error {
			results, err := store.SearchSimilar(query, 5, 0)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "[%.2f] %s  User: %s\n",
					r.Similarity,
					r.Exchange.CreatedAt.Format("2006-01-02 15:04"),
					r.Exchange.User)
			}
			return nil
		})
	},
}

var memoryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump all exchanges as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *memory.Store) error {
			all, err := store.ExportAll()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(all)
		})
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all archived exchanges",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagMemoryYes {
			return fmt.Errorf("refusing to clear without --yes")
		}
		return withStore(func(store *memory.Store) error {
			if err := store.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "archive cleared")
			return nil
		})
	},
}

var flagMemoryYes bool

func init() {
	memoryClearCmd.Flags().BoolVar(&flagMemoryYes, "yes", false,
		"confirm deletion of all archived exchanges")
	memoryCmd.AddCommand(memoryStatsCmd, memorySearchCmd, memoryExportCmd, memoryClearCmd)
	rootCmd.AddCommand(memoryCmd)
}

// withStore opens the archive from config, runs fn, and closes it.
func withStore(fn func(*memory.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	store, err := memory.OpenStore(memory.StoreConfig{
		Path:   config.ExpandPath(cfg.Memory.Path),
		Logger: logger.Slog(),
	})
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
