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

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default structural limits. Exploration is intentionally small: the tree
// is bounded to maxBranches^maxDepth nodes and both stay single-digit in
// practice.
const (
	DefaultMaxDepth       = 5
	DefaultMaxBranches    = 3
	DefaultPruneThreshold = 0.3
)

// Tree is a bounded, scored tree of candidate thoughts.
//
// Nodes live in an id-keyed arena and reference each other by id. The tree
// enforces its structural invariants on every mutation: one root, child
// depth = parent depth + 1, at most maxBranches children per node, no child
// beyond maxDepth, and append-only child lists. Pruning flips node state and
// never detaches anything.
//
// Thread Safety: safe for concurrent use. Sessions are sequential by
// design, but a concurrent host may share a tree for inspection.
type Tree struct {
	mu sync.RWMutex

	nodes  map[string]*Node
	order  []string // node ids in creation order; BestLeaf tie-break
	rootID string

	maxDepth       int
	maxBranches    int
	pruneThreshold float64

	observer Observer
}

// TreeOption configures a Tree during creation.
type TreeOption func(*Tree)

// WithObserver installs an observer that receives tree mutation events.
func WithObserver(obs Observer) TreeOption {
	return func(t *Tree) {
		t.observer = obs
	}
}

// NewTree creates an empty tree with the given structural limits.
//
// Inputs:
//   - maxDepth: maximum node depth; values < 1 fall back to DefaultMaxDepth
//   - maxBranches: maximum children per node; values < 1 fall back to
//     DefaultMaxBranches
//   - pruneThreshold: default score cutoff for Prune; clamped to [0,1]
//
// Outputs:
//   - *Tree: the empty tree, never nil
func NewTree(maxDepth, maxBranches int, pruneThreshold float64, opts ...TreeOption) *Tree {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	if maxBranches < 1 {
		maxBranches = DefaultMaxBranches
	}
	t := &Tree{
		nodes:          make(map[string]*Node),
		maxDepth:       maxDepth,
		maxBranches:    maxBranches,
		pruneThreshold: clampScore(pruneThreshold),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NodeOption configures a node at creation time.
type NodeOption func(*Node)

// WithScore sets the initial score, clamped to [0,1].
func WithScore(score float64) NodeOption {
	return func(n *Node) {
		n.Score = clampScore(score)
	}
}

// WithMetadata attaches a caller-defined metadata bag. The map is copied;
// nodes never share metadata with the caller.
func WithMetadata(meta map[string]string) NodeOption {
	return func(n *Node) {
		if len(meta) == 0 {
			return
		}
		n.Metadata = make(map[string]string, len(meta))
		for k, v := range meta {
			n.Metadata[k] = v
		}
	}
}

// CreateRoot creates the root node for this reasoning session.
//
// The root is created Completed with score 1.0 (override with WithScore).
// A tree has exactly one root per lifetime.
//
// Outputs:
//   - string: the new node id
//   - error: ErrRootExists if a root was already created
func (t *Tree) CreateRoot(content string, opts ...NodeOption) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rootID != "" {
		return "", ErrRootExists
	}

	node := &Node{
		ID:        uuid.NewString(),
		Content:   content,
		State:     NodeCompleted,
		Score:     1.0,
		Depth:     0,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(node)
	}
	t.nodes[node.ID] = node
	t.order = append(t.order, node.ID)
	t.rootID = node.ID

	t.notifyAdded(node)
	return node.ID, nil
}

// AddChild creates a new Active node under parentID.
//
// The child gets score 0.5 unless WithScore overrides it. On any failure
// the tree is unchanged.
//
// Outputs:
//   - string: the new node id
//   - error: ErrNodeNotFound, ErrBranchLimitExceeded or ErrDepthLimitExceeded
func (t *Tree) AddChild(parentID, content string, opts ...NodeOption) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parent, ok := t.nodes[parentID]
	if !ok {
		return "", fmt.Errorf("add child of %s: %w", parentID, ErrNodeNotFound)
	}
	if len(parent.Children) >= t.maxBranches {
		return "", fmt.Errorf("parent %s has %d children: %w",
			parentID, len(parent.Children), ErrBranchLimitExceeded)
	}
	if parent.Depth >= t.maxDepth {
		return "", fmt.Errorf("parent %s at depth %d: %w",
			parentID, parent.Depth, ErrDepthLimitExceeded)
	}

	node := &Node{
		ID:        uuid.NewString(),
		Content:   content,
		ParentID:  parent.ID,
		State:     NodeActive,
		Score:     0.5,
		Depth:     parent.Depth + 1,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(node)
	}
	t.nodes[node.ID] = node
	t.order = append(t.order, node.ID)
	parent.Children = append(parent.Children, node.ID)

	t.notifyAdded(node)
	return node.ID, nil
}

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id string) (*Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	node, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}
	return node.clone(), nil
}

// Root returns a copy of the root node, or nil if no root was created.
func (t *Tree) Root() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rootID == "" {
		return nil
	}
	return t.nodes[t.rootID].clone()
}

// TotalNodes returns the number of nodes in the tree.
func (t *Tree) TotalNodes() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// MaxDepth returns the configured depth limit.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// MaxBranches returns the configured branching limit.
func (t *Tree) MaxBranches() int { return t.maxBranches }

// PruneThreshold returns the configured default prune cutoff.
func (t *Tree) PruneThreshold() float64 { return t.pruneThreshold }

// UpdateScore replaces the score of an existing node, clamped to [0,1].
//
// Scores are best-effort annotations: an absent id is silently ignored
// rather than reported, so annotation passes never fail a session.
func (t *Tree) UpdateScore(id string, score float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[id]
	if !ok {
		return
	}
	node.Score = clampScore(score)
	if t.observer != nil {
		t.observer.OnScoreUpdated(node.clone())
	}
}

// SetState updates a node's lifecycle state.
//
// State is caller-controlled except for the irreversible Pruned transition,
// which only Prune/PruneLowScoring performs. SetState refuses to un-prune.
func (t *Tree) SetState(id string, state NodeState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("set state of %s: %w", id, ErrNodeNotFound)
	}
	if node.State == NodePruned {
		return nil
	}
	node.State = state
	return nil
}

// Children returns copies of the children of id, in creation order.
// Absent or childless ids yield an empty slice.
func (t *Tree) Children(id string) []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	node, ok := t.nodes[id]
	if !ok {
		return nil
	}
	out := make([]*Node, 0, len(node.Children))
	for _, cid := range node.Children {
		out = append(out, t.nodes[cid].clone())
	}
	return out
}

// Leaves returns copies of all nodes with no children, in creation order.
// With excludePruned, pruned leaves are filtered out.
func (t *Tree) Leaves(excludePruned bool) []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.leavesLocked(excludePruned)
}

func (t *Tree) leavesLocked(excludePruned bool) []*Node {
	var out []*Node
	for _, id := range t.order {
		node := t.nodes[id]
		if len(node.Children) > 0 {
			continue
		}
		if excludePruned && node.State == NodePruned {
			continue
		}
		out = append(out, node.clone())
	}
	return out
}

// BestLeaf returns the unpruned leaf with the highest score.
//
// Ties break toward the earliest-created leaf, so repeated calls on an
// unchanged tree always return the same node. Returns nil if the tree is
// empty or every leaf is pruned.
func (t *Tree) BestLeaf() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bestLeafLocked()
}

func (t *Tree) bestLeafLocked() *Node {
	var best *Node
	for _, id := range t.order {
		node := t.nodes[id]
		if len(node.Children) > 0 || node.State == NodePruned {
			continue
		}
		if best == nil || node.Score > best.Score {
			best = node
		}
	}
	if best == nil {
		return nil
	}
	return best.clone()
}

// PathToNode returns copies of the nodes from the root to id, inclusive.
// An absent id yields an empty path.
func (t *Tree) PathToNode(id string) []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pathLocked(id)
}

func (t *Tree) pathLocked(id string) []*Node {
	node, ok := t.nodes[id]
	if !ok {
		return nil
	}

	// Walk parent links to the root, then reverse. O(depth).
	var path []*Node
	for node != nil {
		path = append(path, node.clone())
		if node.ParentID == "" {
			break
		}
		node = t.nodes[node.ParentID]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// BestPath returns the root-to-leaf path ending at BestLeaf, or an empty
// path if there is no best leaf.
func (t *Tree) BestPath() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	best := t.bestLeafLocked()
	if best == nil {
		return nil
	}
	return t.pathLocked(best.ID)
}

// Prune marks low-scoring nodes using the configured threshold.
func (t *Tree) Prune() int {
	return t.PruneLowScoring(t.pruneThreshold)
}

// PruneLowScoring marks every unpruned node with score < threshold as
// Pruned and returns the number of newly pruned nodes.
//
// Pruning is idempotent for a fixed threshold and monotonic across rising
// thresholds: nodes are never un-pruned. Pruned nodes stay in the arena and
// in their parent's child list; they are only excluded from leaf and
// best-path queries.
func (t *Tree) PruneLowScoring(threshold float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	pruned := 0
	for _, id := range t.order {
		node := t.nodes[id]
		if node.State == NodePruned || node.Score >= threshold {
			continue
		}
		node.State = NodePruned
		pruned++
		if t.observer != nil {
			t.observer.OnPruned(node.clone())
		}
	}
	return pruned
}

// Stats summarizes the tree for analysis and admin surfaces.
type Stats struct {
	TotalNodes      int            `json:"total_nodes"`
	MaxDepthReached int            `json:"max_depth_reached"`
	LeafCount       int            `json:"leaf_count"` // includes pruned leaves
	StateCounts     map[string]int `json:"state_counts"`
	AvgScore        float64        `json:"avg_score"`
	MinScore        float64        `json:"min_score"`
	MaxScore        float64        `json:"max_score"`
}

// Stats computes summary statistics over the whole tree.
// An empty tree yields the zero Stats value.
func (t *Tree) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.nodes) == 0 {
		return Stats{}
	}

	s := Stats{
		TotalNodes:  len(t.nodes),
		StateCounts: make(map[string]int, 4),
		MinScore:    1.0,
	}
	var sum float64
	for _, id := range t.order {
		node := t.nodes[id]
		s.StateCounts[node.State.String()]++
		if node.Depth > s.MaxDepthReached {
			s.MaxDepthReached = node.Depth
		}
		if len(node.Children) == 0 {
			s.LeafCount++
		}
		sum += node.Score
		if node.Score < s.MinScore {
			s.MinScore = node.Score
		}
		if node.Score > s.MaxScore {
			s.MaxScore = node.Score
		}
	}
	s.AvgScore = sum / float64(len(t.nodes))
	return s
}

// SortedLeaves returns unpruned leaves ordered by descending score, ties
// toward earliest creation. Useful for admin inspection.
func (t *Tree) SortedLeaves() []*Node {
	leaves := t.Leaves(true)
	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].Score > leaves[j].Score
	})
	return leaves
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// =============================================================================
// Rendering
// =============================================================================

// Visualize renders the tree as indented text with state and score
// indicators. Children appear in creation order; content is truncated to
// maxWidth with a "..." marker. Nodes on the current best path are starred.
func (t *Tree) Visualize(maxWidth int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rootID == "" {
		return "(empty tree)\n"
	}
	if maxWidth < 8 {
		maxWidth = 8
	}

	onBestPath := make(map[string]bool)
	for _, n := range t.pathForBestLocked() {
		onBestPath[n.ID] = true
	}

	var sb strings.Builder
	root := t.nodes[t.rootID]
	fmt.Fprintf(&sb, "%s %s (score: %.2f)%s\n",
		stateIcon(root.State), truncate(root.Content, maxWidth),
		root.Score, bestMark(onBestPath[root.ID]))
	for i, cid := range root.Children {
		t.visualizeNode(&sb, t.nodes[cid], "", i == len(root.Children)-1, maxWidth, onBestPath)
	}
	return sb.String()
}

func (t *Tree) pathForBestLocked() []*Node {
	best := t.bestLeafLocked()
	if best == nil {
		return nil
	}
	return t.pathLocked(best.ID)
}

func (t *Tree) visualizeNode(sb *strings.Builder, node *Node, prefix string, isLast bool, maxWidth int, onBestPath map[string]bool) {
	branch := "├── "
	if isLast {
		branch = "└── "
	}
	fmt.Fprintf(sb, "%s%s%s %s (score: %.2f)%s\n",
		prefix, branch, stateIcon(node.State), truncate(node.Content, maxWidth),
		node.Score, bestMark(onBestPath[node.ID]))

	childPrefix := prefix
	if isLast {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}
	for i, cid := range node.Children {
		t.visualizeNode(sb, t.nodes[cid], childPrefix, i == len(node.Children)-1, maxWidth, onBestPath)
	}
}

func stateIcon(s NodeState) string {
	switch s {
	case NodeCompleted:
		return "✓"
	case NodePruned:
		return "✗"
	case NodeActive:
		return "→"
	default:
		return "·"
	}
}

func bestMark(on bool) string {
	if on {
		return " ★"
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// ExportChainText renders the root-to-node path as labeled reasoning steps.
//
// With an empty nodeID the best leaf is used. Step 0 is labeled "Initial",
// subsequent steps are numbered and annotated with their score. Returns the
// "(empty reasoning chain)" sentinel when no path exists.
func (t *Tree) ExportChainText(nodeID string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var path []*Node
	if nodeID == "" {
		path = t.pathForBestLocked()
	} else {
		path = t.pathLocked(nodeID)
	}
	if len(path) == 0 {
		return "(empty reasoning chain)"
	}

	var sb strings.Builder
	sb.WriteString("=== REASONING CHAIN ===\n")
	for i, node := range path {
		if i == 0 {
			fmt.Fprintf(&sb, "\nInitial: %s\n", node.Content)
			continue
		}
		fmt.Fprintf(&sb, "\nStep %d (score: %.2f): %s\n", i, node.Score, node.Content)
	}
	return sb.String()
}
