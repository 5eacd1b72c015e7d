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

import "errors"

// Sentinel errors for the engine package. Sessions themselves never fail:
// these only signal missing collaborators at construction time.
var (
	// ErrNilGenerator indicates New was called without a generator.
	ErrNilGenerator = errors.New("nil thought generator")

	// ErrNilDetector indicates New was called without a detector.
	ErrNilDetector = errors.New("nil answer detector")
)
