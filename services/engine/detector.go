// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import "strings"

// FinalAnswerMarker is the terminal marker the prompts instruct the model
// to emit once its reasoning has converged.
const FinalAnswerMarker = "FINAL_ANSWER:"

// MarkerDetector detects a terminal marker inside generated text and
// extracts the answer that follows it.
//
// Detect is a pure function of its input: no state, no side effects.
type MarkerDetector struct {
	// Marker overrides FinalAnswerMarker when non-empty.
	Marker string
}

// Detect implements Detector.
//
// When the marker is present the returned answer is the trimmed text after
// its first occurrence and final is true. Otherwise the trimmed thought is
// returned unchanged with final false, so callers can still surface it.
func (d MarkerDetector) Detect(thought string) (string, bool) {
	marker := d.Marker
	if marker == "" {
		marker = FinalAnswerMarker
	}
	idx := strings.Index(thought, marker)
	if idx < 0 {
		return strings.TrimSpace(thought), false
	}
	return strings.TrimSpace(thought[idx+len(marker):]), true
}

var _ Detector = MarkerDetector{}
