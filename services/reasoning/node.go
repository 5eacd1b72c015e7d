// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package reasoning implements the candidate-thought exploration structures
// used by the chat engine: a bounded, scored thought tree and its degenerate
// single-path form, the linear chain.
//
// The tree is an owned arena: nodes are held in an id-keyed map and refer to
// each other by id, never by pointer. Structural limits (max depth, max
// branches) are enforced at insertion time and a failed insertion leaves the
// tree untouched. Pruning is a state flip, not a structural removal, so
// pruned branches stay inspectable.
package reasoning

import (
	"fmt"
	"time"
)

// NodeState represents the lifecycle state of a thought node.
type NodeState string

const (
	NodePending   NodeState = "pending"
	NodeActive    NodeState = "active"
	NodeCompleted NodeState = "completed"
	NodePruned    NodeState = "pruned"
)

// String returns the string representation of the node state.
func (s NodeState) String() string {
	return string(s)
}

// Node represents one candidate reasoning step in the thought tree.
//
// ID, Content, ParentID, Depth, CreatedAt and Metadata are immutable after
// creation. Children grows append-only, in creation order, and only the
// owning Tree mutates it. Score and State are updated through Tree
// operations.
type Node struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	ParentID  string            `json:"parent_id,omitempty"` // empty for the root
	Children  []string          `json:"children,omitempty"`  // child ids, creation order
	State     NodeState         `json:"state"`
	Score     float64           `json:"score"` // [0,1], caller-supplied
	Depth     int               `json:"depth"` // root is 0
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// IsRoot returns true if this node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// IsLeaf returns true if this node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// String returns a human-readable representation of the node.
func (n *Node) String() string {
	return fmt.Sprintf("Node{id=%s, state=%s, score=%.2f, depth=%d, children=%d}",
		n.ID, n.State, n.Score, n.Depth, len(n.Children))
}

// clone returns a copy of the node with its own Children and Metadata
// slices, so callers cannot mutate tree-owned state through query results.
func (n *Node) clone() *Node {
	out := *n
	out.Children = append([]string(nil), n.Children...)
	if n.Metadata != nil {
		out.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
