// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package main is the gotbot CLI: an interactive chatbot that reasons in
// bounded steps, optionally exploring a scored thought tree, against an
// OpenAI-compatible model endpoint.
package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/friedmanirma8-svg/Got/cmd/gotbot/config"
	"github.com/friedmanirma8-svg/Got/pkg/logging"
)

var (
	flagConfigPath string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "gotbot",
	Short: "Step-by-step reasoning chatbot",
	Long: `gotbot drives a language model through repeated reasoning steps until
a final answer appears, with an optional branching thought tree, bounded
by a fixed iteration budget.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "",
		"config file path (default ~/.gotbot/gotbot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug logging")
}

// loadConfig loads the CLI config honoring the --config flag.
func loadConfig() (*config.GotbotConfig, error) {
	return config.Load(flagConfigPath)
}

// newLogger builds the process logger from config and flags.
func newLogger(cfg *config.GotbotConfig) *logging.Logger {
	level := logging.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	if flagVerbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "gotbot",
	})
}
