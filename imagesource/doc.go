// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package imagesource provides gallery.ImageSource implementations and
// thumbnail generation.
//
// DirSource lists the images of a local directory. HTTPSource lists the
// images served by a remote gallery daemon. Thumbnailer decodes an image
// from a DirSource, scales it down to a fixed width and encodes it as JPEG,
// keeping the result in a thumbcache.Cache.
//
//	src := imagesource.NewDirSource("/srv/photos",
//	    imagesource.WithBaseURL("http://localhost:3000"))
//	pool := gallery.LoadPool(ctx, src, nil)
//
// Listings are sorted with a locale-aware collator over NFC-normalized
// names, so the order is stable across calls and independent of how the
// file system stores composed characters.
package imagesource
