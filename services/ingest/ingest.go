// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest maps arbitrary user input (a file path or raw text) to
// the ordered content parts consumed by the thought generator. The engine
// treats the result as opaque; only generators interpret it.
package ingest

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PartType discriminates content parts.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image_url"
)

// Part is one unit of multimodal content.
type Part struct {
	Type     PartType `json:"type"`
	Text     string   `json:"text,omitempty"`
	ImageURL string   `json:"image_url,omitempty"` // base64 data URL
}

// Parts is an ordered sequence of content parts.
type Parts []Part

// Text joins the textual parts with blank lines. Image parts contribute a
// short placeholder so downstream text views stay coherent.
func (p Parts) Text() string {
	out := make([]string, 0, len(p))
	for _, part := range p {
		switch part.Type {
		case PartText:
			out = append(out, part.Text)
		case PartImage:
			out = append(out, "[attached image]")
		}
	}
	return strings.Join(out, "\n\n")
}

// HasImage reports whether any part is an image.
func (p Parts) HasImage() bool {
	for _, part := range p {
		if part.Type == PartImage {
			return true
		}
	}
	return false
}

// imageMimeTypes maps supported image extensions to mime types.
var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// textExtensions are read inline as text.
var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".log":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
}

// Process maps input to content parts.
//
// If input names a readable file, the file is converted by extension:
// images become base64 data-URL parts, text-like files are inlined, and
// anything else yields a placeholder part naming the unsupported format.
// Otherwise input is treated as plain text.
func Process(input string) Parts {
	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		return Parts{{Type: PartText, Text: input}}
	}
	return ProcessFile(input)
}

// ProcessFile converts a single file to content parts.
func ProcessFile(path string) Parts {
	ext := strings.ToLower(filepath.Ext(path))
	name := filepath.Base(path)

	if mime, ok := imageMimeTypes[ext]; ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return placeholder(name, "could not be read")
		}
		url := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
		return Parts{{Type: PartImage, ImageURL: url}}
	}

	if textExtensions[ext] {
		data, err := os.ReadFile(path)
		if err != nil {
			return placeholder(name, "could not be read")
		}
		return Parts{{
			Type: PartText,
			Text: fmt.Sprintf("Content of file %s:\n\n%s", name, string(data)),
		}}
	}

	// PDF and DOCX extraction lived in the original Python pipeline;
	// here they degrade to a labeled placeholder the model can see.
	return placeholder(name, fmt.Sprintf("has an unsupported format (%s)", ext))
}

func placeholder(name, reason string) Parts {
	return Parts{{
		Type: PartText,
		Text: fmt.Sprintf("[attached file %s %s]", name, reason),
	}}
}
