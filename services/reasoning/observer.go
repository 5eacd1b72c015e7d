// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package reasoning

import "log/slog"

// Observer receives tree mutation events.
//
// The tree itself performs no I/O; narration of tree activity is an
// observer concern. Observers receive node copies and must not assume they
// can mutate tree state through them. Callbacks run under the tree lock,
// so they must not call back into the tree.
type Observer interface {
	// OnNodeAdded fires after a root or child node is created.
	OnNodeAdded(node *Node)

	// OnScoreUpdated fires after UpdateScore changes a node's score.
	OnScoreUpdated(node *Node)

	// OnPruned fires once per node newly marked Pruned.
	OnPruned(node *Node)
}

func (t *Tree) notifyAdded(node *Node) {
	if t.observer != nil {
		t.observer.OnNodeAdded(node.clone())
	}
}

// SlogObserver narrates tree activity through a structured logger.
type SlogObserver struct {
	Logger *slog.Logger
}

// NewSlogObserver creates an observer over the given logger.
// A nil logger falls back to slog.Default().
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{Logger: logger}
}

// OnNodeAdded implements Observer.
func (o *SlogObserver) OnNodeAdded(node *Node) {
	o.Logger.Debug("thought node added",
		"node_id", node.ID,
		"depth", node.Depth,
		"score", node.Score,
		"root", node.IsRoot(),
	)
}

// OnScoreUpdated implements Observer.
func (o *SlogObserver) OnScoreUpdated(node *Node) {
	o.Logger.Debug("thought node rescored",
		"node_id", node.ID,
		"score", node.Score,
	)
}

// OnPruned implements Observer.
func (o *SlogObserver) OnPruned(node *Node) {
	o.Logger.Debug("thought node pruned",
		"node_id", node.ID,
		"score", node.Score,
		"depth", node.Depth,
	)
}

var _ Observer = (*SlogObserver)(nil)
