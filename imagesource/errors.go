// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagesource

import "errors"

var (
	// ErrNotFound is returned when a named image does not exist.
	ErrNotFound = errors.New("imagesource: image not found")

	// ErrInvalidName is returned for names that are empty, contain a path
	// separator or try to leave the directory.
	ErrInvalidName = errors.New("imagesource: invalid image name")

	// ErrNotDirectory is returned by SetDir for paths that are not directories.
	ErrNotDirectory = errors.New("imagesource: not a directory")

	// ErrUnsupported is returned for files without an image extension.
	ErrUnsupported = errors.New("imagesource: unsupported image format")
)
