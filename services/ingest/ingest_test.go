// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_PlainText(t *testing.T) {
	parts := Process("what is the capital of France?")

	require.Len(t, parts, 1)
	assert.Equal(t, PartText, parts[0].Type)
	assert.Equal(t, "what is the capital of France?", parts[0].Text)
	assert.False(t, parts.HasImage())
}

func TestProcess_MissingFileFallsBackToText(t *testing.T) {
	parts := Process("/no/such/file.png")

	require.Len(t, parts, 1)
	assert.Equal(t, PartText, parts[0].Type)
	assert.Equal(t, "/no/such/file.png", parts[0].Text)
}

func TestProcessFile_Image(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0644))

	parts := Process(path)

	require.Len(t, parts, 1)
	assert.Equal(t, PartImage, parts[0].Type)
	assert.True(t, strings.HasPrefix(parts[0].ImageURL, "data:image/png;base64,"))
	assert.True(t, parts.HasImage())
	assert.Equal(t, "[attached image]", parts.Text())
}

func TestProcessFile_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one"), 0644))

	parts := Process(path)

	require.Len(t, parts, 1)
	assert.Equal(t, PartText, parts[0].Type)
	assert.Contains(t, parts[0].Text, "notes.txt")
	assert.Contains(t, parts[0].Text, "line one")
}

func TestProcessFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0644))

	parts := Process(path)

	require.Len(t, parts, 1)
	assert.Equal(t, PartText, parts[0].Type)
	assert.Contains(t, parts[0].Text, "report.docx")
	assert.Contains(t, parts[0].Text, "unsupported format")
}
