// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package memory provides conversation memory for the chat engine: a
// bounded in-process ring of recent exchanges and a BadgerDB-backed
// long-term archive with similarity retrieval. The engine itself neither
// reads nor writes memory; callers feed history in and store finalized
// exchanges out.
package memory

import (
	"fmt"
	"strings"
	"time"
)

// DefaultShortTermCapacity is the number of recent exchanges kept.
const DefaultShortTermCapacity = 20

// Exchange is one user/assistant turn pair.
type Exchange struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	CreatedAt time.Time `json:"created_at"`
}

// ShortTerm keeps the most recent exchanges in order, dropping the oldest
// once capacity is reached. Not safe for concurrent use; sessions are
// sequential.
type ShortTerm struct {
	capacity  int
	exchanges []Exchange
}

// NewShortTerm creates a ring with the given capacity.
// Values < 1 fall back to DefaultShortTermCapacity.
func NewShortTerm(capacity int) *ShortTerm {
	if capacity < 1 {
		capacity = DefaultShortTermCapacity
	}
	return &ShortTerm{capacity: capacity}
}

// Add appends an exchange, evicting the oldest when full.
func (m *ShortTerm) Add(user, assistant string) {
	m.exchanges = append(m.exchanges, Exchange{
		User:      user,
		Assistant: assistant,
		CreatedAt: time.Now(),
	})
	if len(m.exchanges) > m.capacity {
		m.exchanges = m.exchanges[len(m.exchanges)-m.capacity:]
	}
}

// Len returns the number of stored exchanges.
func (m *ShortTerm) Len() int {
	return len(m.exchanges)
}

// Clear drops all exchanges.
func (m *ShortTerm) Clear() {
	m.exchanges = nil
}

// Format renders the history block fed to the thought generator.
func (m *ShortTerm) Format() string {
	if len(m.exchanges) == 0 {
		return "No previous messages."
	}
	var sb strings.Builder
	for i, ex := range m.exchanges {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "User: %s\nAssistant: %s", ex.User, ex.Assistant)
	}
	return sb.String()
}
