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

import "strings"

// ChainSeparator joins chain entries in the rendered view. The engine's
// exhaustion fallback is defined as the text after the final separator.
const ChainSeparator = "\n\n"

// Chain is the degenerate single-path form of the thought tree: an
// append-only ordered sequence of thought texts with no scores, branches
// or pruning. Used when branching is not requested.
type Chain struct {
	steps []string
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Append adds a thought to the end of the chain.
func (c *Chain) Append(text string) {
	c.steps = append(c.steps, text)
}

// Clear empties the chain.
func (c *Chain) Clear() {
	c.steps = nil
}

// Len returns the number of thoughts in the chain.
func (c *Chain) Len() int {
	return len(c.steps)
}

// Last returns the most recent thought, or "" for an empty chain.
func (c *Chain) Last() string {
	if len(c.steps) == 0 {
		return ""
	}
	return c.steps[len(c.steps)-1]
}

// Render joins all thoughts with the chain separator. The result is passed
// verbatim to the thought generator as the reasoning-so-far context.
func (c *Chain) Render() string {
	return strings.Join(c.steps, ChainSeparator)
}
