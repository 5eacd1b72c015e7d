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
	"errors"
	"strings"
	"testing"
)

func TestTree_CreateRoot(t *testing.T) {
	tree := NewTree(3, 2, 0.3)

	rootID, err := tree.CreateRoot("what is 2+2")
	if err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}

	root, err := tree.Node(rootID)
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if root.Depth != 0 {
		t.Errorf("Depth = %d, want 0", root.Depth)
	}
	if root.State != NodeCompleted {
		t.Errorf("State = %s, want %s", root.State, NodeCompleted)
	}
	if root.Score != 1.0 {
		t.Errorf("Score = %v, want 1.0", root.Score)
	}

	if _, err := tree.CreateRoot("again"); !errors.Is(err, ErrRootExists) {
		t.Errorf("second CreateRoot err = %v, want ErrRootExists", err)
	}
	if tree.TotalNodes() != 1 {
		t.Errorf("TotalNodes = %d, want 1", tree.TotalNodes())
	}
}

func TestTree_AddChild(t *testing.T) {
	t.Run("depth equals parent depth plus one", func(t *testing.T) {
		tree := NewTree(4, 2, 0.3)
		rootID, _ := tree.CreateRoot("root")

		parentID := rootID
		for want := 1; want <= 4; want++ {
			childID, err := tree.AddChild(parentID, "step")
			if err != nil {
				t.Fatalf("AddChild at depth %d: %v", want, err)
			}
			child, _ := tree.Node(childID)
			if child.Depth != want {
				t.Errorf("Depth = %d, want %d", child.Depth, want)
			}
			if child.State != NodeActive {
				t.Errorf("State = %s, want %s", child.State, NodeActive)
			}
			if child.Score != 0.5 {
				t.Errorf("Score = %v, want 0.5", child.Score)
			}
			parentID = childID
		}
	})

	t.Run("unknown parent fails with ErrNodeNotFound", func(t *testing.T) {
		tree := NewTree(3, 2, 0.3)
		tree.CreateRoot("root")

		_, err := tree.AddChild("no-such-id", "step")
		if !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("err = %v, want ErrNodeNotFound", err)
		}
		if tree.TotalNodes() != 1 {
			t.Errorf("TotalNodes = %d, want 1 (tree unchanged)", tree.TotalNodes())
		}
	})

	t.Run("branch limit leaves tree unchanged", func(t *testing.T) {
		tree := NewTree(3, 2, 0.3)
		rootID, _ := tree.CreateRoot("root")
		tree.AddChild(rootID, "a")
		tree.AddChild(rootID, "b")

		before := tree.TotalNodes()
		_, err := tree.AddChild(rootID, "c")
		if !errors.Is(err, ErrBranchLimitExceeded) {
			t.Errorf("err = %v, want ErrBranchLimitExceeded", err)
		}
		if tree.TotalNodes() != before {
			t.Errorf("TotalNodes = %d, want %d", tree.TotalNodes(), before)
		}
		if n := len(tree.Children(rootID)); n != 2 {
			t.Errorf("children = %d, want 2", n)
		}
	})

	t.Run("depth limit fails at maxDepth parent", func(t *testing.T) {
		tree := NewTree(2, 3, 0.3)
		rootID, _ := tree.CreateRoot("root")
		c1, _ := tree.AddChild(rootID, "d1")
		c2, _ := tree.AddChild(c1, "d2")

		_, err := tree.AddChild(c2, "d3")
		if !errors.Is(err, ErrDepthLimitExceeded) {
			t.Errorf("err = %v, want ErrDepthLimitExceeded", err)
		}
	})

	t.Run("children stay in creation order", func(t *testing.T) {
		tree := NewTree(3, 3, 0.3)
		rootID, _ := tree.CreateRoot("root")
		tree.AddChild(rootID, "first", WithScore(0.1))
		tree.AddChild(rootID, "second", WithScore(0.9))
		tree.AddChild(rootID, "third", WithScore(0.5))

		children := tree.Children(rootID)
		want := []string{"first", "second", "third"}
		for i, c := range children {
			if c.Content != want[i] {
				t.Errorf("child[%d] = %q, want %q", i, c.Content, want[i])
			}
		}
	})
}

func TestTree_UpdateScore(t *testing.T) {
	tree := NewTree(3, 2, 0.3)
	rootID, _ := tree.CreateRoot("root")
	childID, _ := tree.AddChild(rootID, "step")

	tree.UpdateScore(childID, 0.8)
	child, _ := tree.Node(childID)
	if child.Score != 0.8 {
		t.Errorf("Score = %v, want 0.8", child.Score)
	}

	// Absent ids are a silent no-op.
	tree.UpdateScore("no-such-id", 0.9)

	// Scores clamp to [0,1].
	tree.UpdateScore(childID, 1.5)
	child, _ = tree.Node(childID)
	if child.Score != 1.0 {
		t.Errorf("Score = %v, want clamped 1.0", child.Score)
	}
}

func TestTree_BestLeaf(t *testing.T) {
	t.Run("root alone is the best leaf", func(t *testing.T) {
		tree := NewTree(3, 2, 0.3)
		rootID, _ := tree.CreateRoot("root")

		best := tree.BestLeaf()
		if best == nil || best.ID != rootID {
			t.Fatalf("BestLeaf = %v, want root", best)
		}
	})

	t.Run("highest score wins", func(t *testing.T) {
		tree := NewTree(3, 3, 0.3)
		rootID, _ := tree.CreateRoot("root")
		tree.AddChild(rootID, "low", WithScore(0.2))
		hi, _ := tree.AddChild(rootID, "high", WithScore(0.9))
		tree.AddChild(rootID, "mid", WithScore(0.5))

		best := tree.BestLeaf()
		if best == nil || best.ID != hi {
			t.Fatalf("BestLeaf = %v, want %s", best, hi)
		}
	})

	t.Run("ties break toward earliest creation", func(t *testing.T) {
		tree := NewTree(3, 3, 0.3)
		rootID, _ := tree.CreateRoot("root")
		first, _ := tree.AddChild(rootID, "a", WithScore(0.7))
		tree.AddChild(rootID, "b", WithScore(0.7))

		for i := 0; i < 5; i++ {
			best := tree.BestLeaf()
			if best.ID != first {
				t.Fatalf("BestLeaf = %s, want earliest %s", best.ID, first)
			}
		}
	})

	t.Run("nil when empty or all leaves pruned", func(t *testing.T) {
		tree := NewTree(3, 2, 0.3)
		if tree.BestLeaf() != nil {
			t.Error("empty tree should have no best leaf")
		}

		rootID, _ := tree.CreateRoot("root")
		a, _ := tree.AddChild(rootID, "a", WithScore(0.1))
		b, _ := tree.AddChild(rootID, "b", WithScore(0.2))
		tree.PruneLowScoring(0.5)

		if best := tree.BestLeaf(); best != nil {
			t.Errorf("BestLeaf = %v, want nil (leaves %s, %s pruned)", best, a, b)
		}
	})
}

func TestTree_PathToNode(t *testing.T) {
	tree := NewTree(4, 2, 0.3)
	rootID, _ := tree.CreateRoot("root")
	c1, _ := tree.AddChild(rootID, "one")
	c2, _ := tree.AddChild(c1, "two")

	t.Run("root path is a single element", func(t *testing.T) {
		path := tree.PathToNode(rootID)
		if len(path) != 1 || path[0].ID != rootID {
			t.Fatalf("path = %v, want [root]", path)
		}
	})

	t.Run("path runs root to target with parent links", func(t *testing.T) {
		path := tree.PathToNode(c2)
		if len(path) != 3 {
			t.Fatalf("len(path) = %d, want 3", len(path))
		}
		if path[0].ID != rootID || path[2].ID != c2 {
			t.Error("path endpoints wrong")
		}
		for i := 1; i < len(path); i++ {
			if path[i].ParentID != path[i-1].ID {
				t.Errorf("path[%d] is not a child of path[%d]", i, i-1)
			}
		}
	})

	t.Run("absent id yields empty path", func(t *testing.T) {
		if path := tree.PathToNode("no-such-id"); len(path) != 0 {
			t.Errorf("path = %v, want empty", path)
		}
	})
}

func TestTree_Prune(t *testing.T) {
	build := func() (*Tree, string) {
		tree := NewTree(3, 3, 0.3)
		rootID, _ := tree.CreateRoot("root")
		tree.AddChild(rootID, "keep", WithScore(0.8))
		tree.AddChild(rootID, "drop", WithScore(0.1))
		tree.AddChild(rootID, "edge", WithScore(0.3))
		return tree, rootID
	}

	t.Run("idempotent at a fixed threshold", func(t *testing.T) {
		tree, _ := build()
		if n := tree.PruneLowScoring(0.3); n != 1 {
			t.Errorf("first prune = %d, want 1", n)
		}
		if n := tree.PruneLowScoring(0.3); n != 0 {
			t.Errorf("second prune = %d, want 0", n)
		}
	})

	t.Run("stricter threshold prunes more, never less", func(t *testing.T) {
		tree, _ := build()
		tree.PruneLowScoring(0.3)
		if n := tree.PruneLowScoring(0.5); n != 1 {
			t.Errorf("stricter prune = %d, want 1 (the 0.3 node)", n)
		}

		pruned := 0
		for _, leaf := range tree.Leaves(false) {
			if leaf.State == NodePruned {
				pruned++
			}
		}
		if pruned != 2 {
			t.Errorf("pruned leaves = %d, want 2", pruned)
		}
	})

	t.Run("pruned nodes keep their place in the structure", func(t *testing.T) {
		tree, rootID := build()
		before := tree.TotalNodes()
		tree.PruneLowScoring(0.9)

		if tree.TotalNodes() != before {
			t.Error("pruning must not remove nodes from the arena")
		}
		if n := len(tree.Children(rootID)); n != 3 {
			t.Errorf("children = %d, want 3 (no detachment)", n)
		}
		if n := len(tree.Leaves(true)); n != 0 {
			t.Errorf("unpruned leaves = %d, want 0", n)
		}
		if n := len(tree.Leaves(false)); n != 3 {
			t.Errorf("all leaves = %d, want 3", n)
		}
	})
}

func TestTree_Stats(t *testing.T) {
	t.Run("empty tree short-circuits", func(t *testing.T) {
		tree := NewTree(3, 2, 0.3)
		s := tree.Stats()
		if s.TotalNodes != 0 {
			t.Errorf("TotalNodes = %d, want 0", s.TotalNodes)
		}
	})

	t.Run("counts and score aggregates", func(t *testing.T) {
		tree := NewTree(3, 3, 0.3)
		rootID, _ := tree.CreateRoot("root") // score 1.0
		tree.AddChild(rootID, "a", WithScore(0.2))
		tree.AddChild(rootID, "b", WithScore(0.8))
		tree.PruneLowScoring(0.3)

		s := tree.Stats()
		if s.TotalNodes != 3 {
			t.Errorf("TotalNodes = %d, want 3", s.TotalNodes)
		}
		if s.MaxDepthReached != 1 {
			t.Errorf("MaxDepthReached = %d, want 1", s.MaxDepthReached)
		}
		if s.LeafCount != 2 {
			t.Errorf("LeafCount = %d, want 2 (pruned leaves included)", s.LeafCount)
		}
		if s.StateCounts[NodePruned.String()] != 1 {
			t.Errorf("pruned count = %d, want 1", s.StateCounts[NodePruned.String()])
		}
		if s.MinScore != 0.2 || s.MaxScore != 1.0 {
			t.Errorf("score range = [%v,%v], want [0.2,1.0]", s.MinScore, s.MaxScore)
		}
	})
}

func TestTree_Visualize(t *testing.T) {
	tree := NewTree(3, 3, 0.3)
	rootID, _ := tree.CreateRoot("root question")
	tree.AddChild(rootID, "alpha branch", WithScore(0.4))
	tree.AddChild(rootID, "a very long thought that will not fit in the width", WithScore(0.9))

	out := tree.Visualize(20)

	// Children render in creation order.
	if strings.Index(out, "alpha branch") > strings.Index(out, "a very long") {
		t.Error("children rendered out of creation order")
	}
	if !strings.Contains(out, "...") {
		t.Error("long content should carry a truncation marker")
	}
	if !strings.Contains(out, "★") {
		t.Error("best path should be marked")
	}
}

func TestTree_ExportChainText(t *testing.T) {
	t.Run("empty tree yields sentinel", func(t *testing.T) {
		tree := NewTree(3, 2, 0.3)
		if got := tree.ExportChainText(""); got != "(empty reasoning chain)" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("labeled steps along the best path", func(t *testing.T) {
		tree := NewTree(3, 2, 0.3)
		rootID, _ := tree.CreateRoot("question")
		c1, _ := tree.AddChild(rootID, "first step", WithScore(0.6))
		tree.AddChild(c1, "second step", WithScore(0.9))

		out := tree.ExportChainText("")
		if !strings.Contains(out, "Initial: question") {
			t.Error("missing Initial label")
		}
		if !strings.Contains(out, "Step 1 (score: 0.60): first step") {
			t.Errorf("missing step 1 line in %q", out)
		}
		if !strings.Contains(out, "Step 2 (score: 0.90): second step") {
			t.Errorf("missing step 2 line in %q", out)
		}
	})
}

func TestTree_SetState(t *testing.T) {
	tree := NewTree(3, 2, 0.3)
	rootID, _ := tree.CreateRoot("root")
	childID, _ := tree.AddChild(rootID, "step")

	if err := tree.SetState(childID, NodeCompleted); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	node, _ := tree.Node(childID)
	if node.State != NodeCompleted {
		t.Errorf("State = %s, want %s", node.State, NodeCompleted)
	}

	// Pruned is irreversible.
	tree.UpdateScore(childID, 0.1)
	tree.PruneLowScoring(0.2)
	tree.SetState(childID, NodeActive)
	node, _ = tree.Node(childID)
	if node.State != NodePruned {
		t.Errorf("State = %s, want %s (no un-prune)", node.State, NodePruned)
	}
}
