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
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friedmanirma8-svg/Got/cmd/gotbot/config"
	"github.com/friedmanirma8-svg/Got/pkg/logging"
	"github.com/friedmanirma8-svg/Got/services/engine"
	"github.com/friedmanirma8-svg/Got/services/llm"
	"github.com/friedmanirma8-svg/Got/services/memory"
)

var (
	flagBranching     bool
	flagMaxIterations int
	flagMessage       string
	flagShowTree      bool
	flagNoMemory      bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive reasoning chat session",
	Long: `Starts a stdin chat loop. Each message runs one bounded reasoning
session. A message that names a readable file is attached as content
(images become vision input, text files are inlined).

Type "exit" or "quit" to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&flagBranching, "branching", false,
		"explore a scored thought tree instead of a linear chain")
	chatCmd.Flags().IntVar(&flagMaxIterations, "max-iterations", 0,
		"override the per-message reasoning budget")
	chatCmd.Flags().StringVarP(&flagMessage, "message", "m", "",
		"send a single message and exit")
	chatCmd.Flags().BoolVar(&flagShowTree, "show-tree", false,
		"print the thought tree after each branching session")
	chatCmd.Flags().BoolVar(&flagNoMemory, "no-memory", false,
		"disable the long-term memory archive")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	if flagMaxIterations > 0 {
		cfg.Engine.MaxIterations = flagMaxIterations
	}
	if flagBranching {
		cfg.Engine.Branching = true
	}

	service, store, err := buildChatService(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx := cmd.Context()
	if flagMessage != "" {
		return handleOne(ctx, service, flagMessage, cmd.OutOrStdout())
	}
	return chatLoop(ctx, service, cmd.InOrStdin(), cmd.OutOrStdout())
}

// buildChatService wires the generator, engine and memories from config.
func buildChatService(cfg *config.GotbotConfig, logger *logging.Logger) (*ChatService, *memory.Store, error) {
	slogger := logger.Slog()

	temperature := cfg.Provider.Temperature
	maxTokens := cfg.Provider.MaxTokens
	generator, err := llm.NewClient(llm.Config{
		BaseURL:      cfg.Provider.BaseURL,
		Model:        cfg.Provider.Model,
		SystemPrompt: cfg.Provider.SystemPrompt,
		Params: llm.GenerationParams{
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		},
	}, slogger)
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(generator, engine.MarkerDetector{}, nil, engine.Config{
		MaxIterations:  cfg.Engine.MaxIterations,
		Branching:      cfg.Engine.Branching,
		MaxBranches:    cfg.Engine.MaxBranches,
		PruneThreshold: cfg.Engine.PruneThreshold,
		Logger:         slogger,
	})
	if err != nil {
		return nil, nil, err
	}

	shortTerm := memory.NewShortTerm(cfg.Memory.ShortTermCapacity)

	var store *memory.Store
	if !flagNoMemory {
		store, err = memory.OpenStore(memory.StoreConfig{
			Path:       config.ExpandPath(cfg.Memory.Path),
			SyncWrites: true,
			Logger:     slogger,
		})
		if err != nil {
			// Degraded mode: chat still works without the archive.
			logger.Warn("long-term memory unavailable", "error", err)
			store = nil
		}
	}

	service := NewChatService(eng, shortTerm, store,
		cfg.Memory.TopK, cfg.Memory.MinSimilarity, slogger)
	return service, store, nil
}

func chatLoop(ctx context.Context, service *ChatService, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "gotbot ready. Type a message, or a file path to attach a file.")
	fmt.Fprintln(out, `Type "exit" or "quit" to leave.`)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Fprintln(out, "Bye.")
			return nil
		}
		if err := handleOne(ctx, service, line, out); err != nil {
			return err
		}
	}
}

func handleOne(ctx context.Context, service *ChatService, input string, out io.Writer) error {
	outcome := service.HandleMessage(ctx, input)

	fmt.Fprintf(out, "\nBot: %s\n", outcome.Answer)
	if outcome.State == engine.StateExhausted {
		fmt.Fprintf(out, "(reasoning budget of %d steps exhausted, best effort answer)\n",
			outcome.Iterations)
	}
	if flagShowTree && outcome.Tree != nil {
		fmt.Fprintln(out)
		fmt.Fprint(out, outcome.Tree.Visualize(60))
		stats := outcome.Tree.Stats()
		fmt.Fprintf(out, "nodes: %d, depth: %d, avg score: %.2f\n",
			stats.TotalNodes, stats.MaxDepthReached, stats.AvgScore)
	}
	return nil
}
