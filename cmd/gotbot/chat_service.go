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
	"context"
	"log/slog"
	"strconv"

	"github.com/friedmanirma8-svg/Got/services/engine"
	"github.com/friedmanirma8-svg/Got/services/ingest"
	"github.com/friedmanirma8-svg/Got/services/memory"
)

// ChatService handles one user message end-to-end: content ingestion,
// memory assembly, the reasoning session, and memory write-back. Messages
// are processed strictly sequentially.
type ChatService struct {
	engine    *engine.Engine
	shortTerm *memory.ShortTerm
	store     *memory.Store // nil disables long-term memory
	topK      int
	minSim    float64
	logger    *slog.Logger
}

// NewChatService wires a chat service. store may be nil.
func NewChatService(eng *engine.Engine, shortTerm *memory.ShortTerm,
	store *memory.Store, topK int, minSim float64, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		engine:    eng,
		shortTerm: shortTerm,
		store:     store,
		topK:      topK,
		minSim:    minSim,
		logger:    logger,
	}
}

// HandleMessage runs one reasoning session for rawInput, which may be
// plain text or a path to an attachable file.
func (s *ChatService) HandleMessage(ctx context.Context, rawInput string) *engine.Outcome {
	parts := ingest.Process(rawInput)
	question := parts.Text()

	history := s.shortTerm.Format()
	if s.store != nil {
		relevant, err := s.store.RelevantContext(question, s.topK, s.minSim)
		if err != nil {
			s.logger.Warn("long-term retrieval failed", "error", err)
		} else if relevant != "" {
			history = relevant + "\n\n" + history
		}
	}

	outcome := s.engine.Run(ctx, history, parts)

	s.shortTerm.Add(question, outcome.Answer)
	if s.store != nil {
		_, err := s.store.AddExchange(question, outcome.Answer, map[string]string{
			"state":      string(outcome.State),
			"iterations": strconv.Itoa(outcome.Iterations),
		})
		if err != nil {
			s.logger.Warn("long-term store write failed", "error", err)
		}
	}
	return outcome
}
