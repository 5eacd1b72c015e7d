// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine implements the bounded iterative reasoning driver.
//
// The engine repeatedly asks an external thought generator to extend the
// current reasoning, tests each new thought for a terminal answer marker,
// and stops after a fixed iteration budget with a deterministic fallback.
// Reasoning is held in a linear chain, or additionally in a scored thought
// tree when branching is enabled. The engine never evaluates thoughts
// itself: scores come from a caller-supplied Scorer and finality from a
// caller-supplied Detector.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/friedmanirma8-svg/Got/services/reasoning"
)

// DefaultMaxIterations is the per-session generator call budget.
const DefaultMaxIterations = 4

// ThoughtRequest carries everything the generator needs for one step.
type ThoughtRequest struct {
	// History is the formatted prior conversation.
	History string

	// Reasoning is the rendered reasoning-so-far: the joined chain in
	// linear mode, the best root-to-leaf path in branching mode.
	Reasoning string

	// Input is the user's message. It is opaque to the engine and passed
	// through unchanged; generators decide how to interpret structured
	// content.
	Input any

	// FirstStep is true on the first iteration of a session.
	FirstStep bool
}

// Generator produces one candidate thought per call.
//
// A transport or provider failure may be returned as an error; the engine
// absorbs it into the loop as an ordinary non-final thought rather than
// failing the session.
type Generator interface {
	GenerateThought(ctx context.Context, req ThoughtRequest) (string, error)
}

// Detector decides whether a thought carries the terminal answer.
// Implementations must be pure functions of their input.
type Detector interface {
	Detect(thought string) (answer string, final bool)
}

// Scorer assigns a quality estimate in [0,1] to a candidate thought.
// Used only in branching mode; the tree never computes scores itself.
type Scorer interface {
	Score(ctx context.Context, thought string) float64
}

// ConstantScorer scores every thought with a fixed value.
type ConstantScorer struct {
	Value float64
}

// Score implements Scorer.
func (s ConstantScorer) Score(ctx context.Context, thought string) float64 {
	return s.Value
}

// SessionState is the terminal state of a reasoning session.
type SessionState string

const (
	// StateFinalized means the detector found a terminal answer within
	// the iteration budget.
	StateFinalized SessionState = "finalized"

	// StateExhausted means the budget ran out and the fallback answer
	// was used.
	StateExhausted SessionState = "exhausted"
)

// Outcome is the result of one reasoning session. Both states are
// successful completions; the engine propagates no session errors.
type Outcome struct {
	State      SessionState
	Answer     string
	Iterations int // generator calls made

	// Reasoning is the full rendered chain of emitted thoughts.
	Reasoning string

	// Tree holds the exploration tree in branching mode, nil otherwise.
	// It is session-local and discarded with the outcome.
	Tree *reasoning.Tree
}

// Config configures an Engine.
type Config struct {
	// MaxIterations is the generator call budget per session.
	// Values < 1 fall back to DefaultMaxIterations.
	MaxIterations int

	// Branching enables the thought tree. When false the engine runs in
	// linear chain mode.
	Branching bool

	// MaxBranches bounds children per tree node (branching mode).
	MaxBranches int

	// PruneThreshold is the tree's default prune cutoff (branching mode).
	PruneThreshold float64

	// Logger for engine activity. Nil uses slog.Default().
	Logger *slog.Logger
}

// Engine drives reasoning sessions. One session runs end-to-end before the
// next begins; the engine holds no cross-session state.
type Engine struct {
	generator Generator
	detector  Detector
	scorer    Scorer
	config    Config
	logger    *slog.Logger

	metrics engineMetrics
}

// New creates an Engine over the given collaborators.
//
// Inputs:
//   - generator: thought generator. Must not be nil.
//   - detector: terminal answer detector. Must not be nil.
//   - scorer: thought scorer for branching mode. Nil falls back to a
//     constant 0.5, matching the default child score.
//   - config: engine configuration.
//
// Outputs:
//   - *Engine: the configured engine.
//   - error: non-nil if a required collaborator is missing.
func New(generator Generator, detector Detector, scorer Scorer, config Config) (*Engine, error) {
	if generator == nil {
		return nil, fmt.Errorf("engine: %w", ErrNilGenerator)
	}
	if detector == nil {
		return nil, fmt.Errorf("engine: %w", ErrNilDetector)
	}
	if scorer == nil {
		scorer = ConstantScorer{Value: 0.5}
	}
	if config.MaxIterations < 1 {
		config.MaxIterations = DefaultMaxIterations
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		generator: generator,
		detector:  detector,
		scorer:    scorer,
		config:    config,
		logger:    logger,
	}, nil
}

// Run executes one reasoning session for the given user input.
//
// The loop makes at most MaxIterations generator calls. Generator failures
// are absorbed as non-final thoughts. The outcome is either Finalized with
// the detected answer, or Exhausted with the fallback: the text after the
// final blank-line separator of the rendered chain. The fallback is taken
// from the emitted chain even in branching mode; see DESIGN.md for the
// policy decision.
func (e *Engine) Run(ctx context.Context, history string, input any) *Outcome {
	e.initMetrics()

	ctx, span := tracer.Start(ctx, "engine.session",
		trace.WithAttributes(
			attribute.Bool("branching", e.config.Branching),
			attribute.Int("max_iterations", e.config.MaxIterations),
		))
	defer span.End()

	chain := reasoning.NewChain()

	var tree *reasoning.Tree
	if e.config.Branching {
		// Depth tracks the iteration count, so the depth limit can never
		// cut a session short of its budget.
		tree = reasoning.NewTree(e.config.MaxIterations, e.config.MaxBranches,
			e.config.PruneThreshold,
			reasoning.WithObserver(reasoning.NewSlogObserver(e.logger)))
		if _, err := tree.CreateRoot(inputText(input)); err != nil {
			e.logger.Error("tree root creation failed", "error", err)
		}
	}

	for iteration := 1; iteration <= e.config.MaxIterations; iteration++ {
		req := ThoughtRequest{
			History:   history,
			Reasoning: e.renderReasoning(chain, tree),
			Input:     input,
			FirstStep: iteration == 1,
		}

		thought, err := e.generator.GenerateThought(ctx, req)
		e.countIteration(ctx)
		if err != nil {
			// Degrade to a wasted iteration: the error text becomes an
			// ordinary non-final thought and the loop continues.
			thought = "ERROR: thought generator unavailable - " + err.Error()
			e.logger.Warn("thought generator failed",
				"iteration", iteration,
				"error", err,
			)
			span.AddEvent("generator failure",
				trace.WithAttributes(attribute.Int("iteration", iteration)))
		}

		chain.Append(thought)
		var nodeID string
		if tree != nil {
			nodeID = e.growTree(ctx, tree, thought)
		}

		answer, final := e.detector.Detect(thought)
		if final {
			if tree != nil && nodeID != "" {
				if err := tree.SetState(nodeID, reasoning.NodeCompleted); err != nil {
					e.logger.Error("final node state update failed", "error", err)
				}
			}
			e.logger.Info("session finalized",
				"iterations", iteration,
				"branching", e.config.Branching,
			)
			e.countOutcome(ctx, StateFinalized)
			span.SetStatus(codes.Ok, "finalized")
			return &Outcome{
				State:      StateFinalized,
				Answer:     answer,
				Iterations: iteration,
				Reasoning:  chain.Render(),
				Tree:       tree,
			}
		}
	}

	rendered := chain.Render()
	fallback := lastBlock(rendered)
	e.logger.Info("session exhausted, using fallback",
		"iterations", e.config.MaxIterations,
		"branching", e.config.Branching,
	)
	e.countOutcome(ctx, StateExhausted)
	span.SetStatus(codes.Ok, "exhausted")
	return &Outcome{
		State:      StateExhausted,
		Answer:     fallback,
		Iterations: e.config.MaxIterations,
		Reasoning:  rendered,
		Tree:       tree,
	}
}

// growTree adds the thought as a scored child of the current best leaf and
// returns the new node id, or "" if the insert failed.
func (e *Engine) growTree(ctx context.Context, tree *reasoning.Tree, thought string) string {
	leaf := tree.BestLeaf()
	if leaf == nil {
		e.logger.Error("no unpruned leaf to extend")
		return ""
	}
	score := e.scorer.Score(ctx, thought)
	nodeID, err := tree.AddChild(leaf.ID, thought, reasoning.WithScore(score))
	if err != nil {
		e.logger.Error("tree extension failed",
			"parent_id", leaf.ID,
			"error", err,
		)
		return ""
	}
	return nodeID
}

// renderReasoning produces the reasoning-so-far context for the generator:
// the joined chain in linear mode, the best-path thought sequence (root
// question excluded) in branching mode.
func (e *Engine) renderReasoning(chain *reasoning.Chain, tree *reasoning.Tree) string {
	if tree == nil {
		return chain.Render()
	}
	path := tree.BestPath()
	if len(path) <= 1 {
		return ""
	}
	parts := make([]string, 0, len(path)-1)
	for _, node := range path[1:] {
		parts = append(parts, node.Content)
	}
	return strings.Join(parts, reasoning.ChainSeparator)
}

// lastBlock returns the text after the final blank-line separator.
func lastBlock(rendered string) string {
	if idx := strings.LastIndex(rendered, reasoning.ChainSeparator); idx >= 0 {
		return rendered[idx+len(reasoning.ChainSeparator):]
	}
	return rendered
}

// inputText renders the opaque user input as root-node content.
func inputText(input any) string {
	switch v := input.(type) {
	case string:
		return v
	case interface{ Text() string }:
		return v.Text()
	default:
		return fmt.Sprintf("(structured input: %T)", input)
	}
}
