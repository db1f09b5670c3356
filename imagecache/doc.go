// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package imagecache persists the last selected image collection in SQLite
// so a gallery can reopen on the same images. It implements
// gallery.ImageCache.
//
// Persistence is best effort. Restore returns nil, not an error, when no
// collection was stored, and a handle check can drop descriptors whose
// files disappeared between sessions.
//
//	store, err := imagecache.Open("gallery.db",
//	    imagecache.WithHandleCheck(src.Exists))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	pool := gallery.LoadPool(ctx, src, store)
package imagecache
