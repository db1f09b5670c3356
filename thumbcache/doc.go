// Package thumbcache is a byte-bounded, sharded LRU cache for encoded
// thumbnails.
//
// Keys are strings, values are the encoded image bytes. The cache is split
// into 16 shards by key hash; each shard owns an equal part of the byte
// budget and evicts its least recently used entries when a new thumbnail
// would exceed it.
//
//	c := thumbcache.New(64<<20, thumbcache.WithEvictHook(func(key string, size int) {
//	    log.Printf("evicted %s (%d bytes)", key, size)
//	}))
//	c.Set("photos/a.jpg@300", jpegBytes)
//	data, ok := c.Get("photos/a.jpg@300")
//
// Entries belonging to one collection share a key prefix and are released
// together with DeletePrefix when the collection is replaced.
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
// The eviction hook runs with the shard lock held and must not call back
// into the cache.
package thumbcache
