// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortTerm_Format(t *testing.T) {
	m := NewShortTerm(5)
	assert.Equal(t, "No previous messages.", m.Format())

	m.Add("hello", "hi there")
	m.Add("how are you", "fine")

	got := m.Format()
	assert.Contains(t, got, "User: hello\nAssistant: hi there")
	assert.Contains(t, got, "User: how are you\nAssistant: fine")
	assert.Less(t, strings.Index(got, "hello"), strings.Index(got, "how are you"),
		"exchanges should render oldest first")
}

func TestShortTerm_CapacityEviction(t *testing.T) {
	m := NewShortTerm(3)
	for i := 0; i < 5; i++ {
		m.Add(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	assert.Equal(t, 3, m.Len())
	got := m.Format()
	assert.NotContains(t, got, "q0")
	assert.NotContains(t, got, "q1")
	assert.Contains(t, got, "q4")
}

func TestShortTerm_Clear(t *testing.T) {
	m := NewShortTerm(3)
	m.Add("q", "a")
	m.Clear()

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, "No previous messages.", m.Format())
}
