package gallery

import (
	"context"
	"fmt"
)

// ImageSource lists the images available for display.
//
// List must return a stable order for a single call. Thumbnail returns a
// cheap handle that a presenter can use directly as a display source.
type ImageSource interface {
	List(ctx context.Context) ([]ImageDescriptor, error)
	Thumbnail(d ImageDescriptor) string
}

// ImageCache keeps the last selected descriptor set across sessions.
// It is best effort: Restore returns an empty result, not an error, when
// nothing was persisted.
type ImageCache interface {
	Persist(ctx context.Context, descriptors []ImageDescriptor) error
	Restore(ctx context.Context) ([]ImageDescriptor, error)
}

// LoadPool builds the initial pool. A non-empty cache restore wins;
// otherwise src is listed and the result persisted. Either collaborator
// may be nil. Failures are logged and degrade to an empty pool, which the
// engine renders as its empty state.
func LoadPool(ctx context.Context, src ImageSource, cache ImageCache) *Pool {
	log := ComponentLogger("source")

	if cache != nil {
		restored, err := cache.Restore(ctx)
		switch {
		case err != nil:
			log.Warn("cache restore failed", "err", err)
		case len(restored) > 0:
			log.Info("pool restored from cache", "size", len(restored))
			return NewPool(restored)
		}
	}

	if src == nil {
		return NewPool(nil)
	}
	pool, err := SelectPool(ctx, src, cache)
	if err != nil {
		log.Warn("image listing failed", "err", err)
		return NewPool(nil)
	}
	return pool
}

// SelectPool lists src, fills in missing thumbnail handles and persists
// the result to cache. A persist failure is logged and does not fail the
// selection.
func SelectPool(ctx context.Context, src ImageSource, cache ImageCache) (*Pool, error) {
	items, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("gallery: list images: %w", err)
	}
	for i := range items {
		if items[i].Thumbnail == "" {
			items[i].Thumbnail = src.Thumbnail(items[i])
		}
	}
	if cache != nil {
		if err := cache.Persist(ctx, items); err != nil {
			ComponentLogger("source").Warn("cache persist failed", "err", err)
		}
	}
	return NewPool(items), nil
}
