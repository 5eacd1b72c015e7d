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

import "errors"

// Sentinel errors for the reasoning package.
var (
	// ErrRootExists indicates CreateRoot was called on a tree that
	// already has a root.
	ErrRootExists = errors.New("root already exists")

	// ErrNodeNotFound indicates a referenced node id is absent.
	ErrNodeNotFound = errors.New("node not found")

	// ErrBranchLimitExceeded indicates the parent already has the
	// maximum number of children.
	ErrBranchLimitExceeded = errors.New("branch limit exceeded")

	// ErrDepthLimitExceeded indicates a child would exceed the
	// maximum tree depth.
	ErrDepthLimitExceeded = errors.New("depth limit exceeded")
)
