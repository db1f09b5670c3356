// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagesource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"strconv"

	// Standard decoders.
	_ "image/gif"
	_ "image/png"

	// Extra decoders.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/gallery/thumbcache"
)

// Thumbnail defaults.
const (
	DefaultThumbWidth   = 300
	DefaultThumbQuality = 60
)

// Thumb is an encoded thumbnail.
type Thumb struct {
	Data        []byte
	ContentType string
}

// ThumbOption configures a Thumbnailer.
type ThumbOption func(*Thumbnailer)

// WithWidth sets the maximum thumbnail width. Images are never enlarged.
func WithWidth(w int) ThumbOption {
	return func(t *Thumbnailer) {
		if w > 0 {
			t.width = w
		}
	}
}

// WithQuality sets the JPEG quality, 1 to 100.
func WithQuality(q int) ThumbOption {
	return func(t *Thumbnailer) {
		t.quality = min(max(q, 1), 100)
	}
}

// Thumbnailer produces JPEG thumbnails for the images of a DirSource.
// Concurrent requests for the same thumbnail share one decode.
type Thumbnailer struct {
	src     *DirSource
	cache   *thumbcache.Cache
	width   int
	quality int
	group   singleflight.Group
}

// NewThumbnailer creates a thumbnailer. A nil cache disables caching.
func NewThumbnailer(src *DirSource, cache *thumbcache.Cache, opts ...ThumbOption) *Thumbnailer {
	t := &Thumbnailer{
		src:     src,
		cache:   cache,
		width:   DefaultThumbWidth,
		quality: DefaultThumbQuality,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// cacheKey scopes entries to a directory so Release can drop them together.
func (t *Thumbnailer) cacheKey(dir, name string) string {
	return dirPrefix(dir) + name + "@" + strconv.Itoa(t.width)
}

func dirPrefix(dir string) string {
	return dir + "\x00"
}

// Thumbnail returns the thumbnail for the named image in the source's
// current directory. Formats that cannot be decoded are returned as the
// original bytes with their own content type.
func (t *Thumbnailer) Thumbnail(ctx context.Context, name string) (Thumb, error) {
	dir := t.src.Dir()
	path, err := t.src.pathIn(dir, name)
	if err != nil {
		return Thumb{}, err
	}
	key := t.cacheKey(dir, name)

	if t.cache != nil {
		if data, ok := t.cache.Get(key); ok {
			return Thumb{Data: data, ContentType: "image/jpeg"}, nil
		}
	}

	ch := t.group.DoChan(key, func() (any, error) {
		return t.generate(path, key)
	})
	select {
	case <-ctx.Done():
		return Thumb{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Thumb{}, res.Err
		}
		return res.Val.(Thumb), nil
	}
}

func (t *Thumbnailer) generate(path, key string) (Thumb, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Thumb{}, fmt.Errorf("imagesource: read %s: %w", path, err)
	}

	img, _, err := Decode(bytes.NewReader(raw))
	if errors.Is(err, image.ErrFormat) {
		logger().Debug("serving original for undecodable image", "path", path)
		return Thumb{Data: raw, ContentType: ContentType(path)}, nil
	}
	if err != nil {
		return Thumb{}, fmt.Errorf("imagesource: decode %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Resize(img, t.width), &jpeg.Options{Quality: t.quality}); err != nil {
		return Thumb{}, fmt.Errorf("imagesource: encode %s: %w", path, err)
	}
	data := buf.Bytes()
	if t.cache != nil {
		t.cache.Set(key, data)
	}
	return Thumb{Data: data, ContentType: "image/jpeg"}, nil
}

// Release drops every cached thumbnail of dir and returns how many were
// dropped.
func (t *Thumbnailer) Release(dir string) int {
	if t.cache == nil {
		return 0
	}
	n := t.cache.DeletePrefix(dirPrefix(dir))
	logger().Debug("thumbnails released", "dir", dir, "count", n)
	return n
}

// Decode decodes an image in any registered format: JPEG, PNG, GIF, WebP,
// BMP or TIFF.
func Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}

// Resize scales img down to width, keeping its aspect ratio. Images that
// are already narrow enough are returned unchanged.
func Resize(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	height := max(b.Dy()*width/b.Dx(), 1)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
