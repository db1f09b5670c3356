// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagesource

import (
	"path/filepath"
	"slices"
	"strings"
)

// SupportedExtensions are the file extensions listed as images.
// AVIF files are listed but not decoded; their thumbnail is the original file.
var SupportedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".bmp", ".tif", ".tiff",
}

// IsSupported reports whether name has an image extension.
func IsSupported(name string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(name)))
}

// contentTypes maps extensions to the MIME type served for the original file.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// ContentType returns the MIME type for name's extension, or
// application/octet-stream.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
