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

import "testing"

func TestChain_Render(t *testing.T) {
	c := NewChain()
	if c.Render() != "" {
		t.Errorf("empty chain Render = %q, want empty", c.Render())
	}

	c.Append("first")
	c.Append("second")
	c.Append("third")

	want := "first\n\nsecond\n\nthird"
	if got := c.Render(); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
	if c.Last() != "third" {
		t.Errorf("Last = %q, want %q", c.Last(), "third")
	}
}

func TestChain_Clear(t *testing.T) {
	c := NewChain()
	c.Append("step")
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", c.Len())
	}
	if c.Last() != "" {
		t.Errorf("Last = %q after Clear, want empty", c.Last())
	}
}
