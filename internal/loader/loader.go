// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package loader fetches and decodes thumbnails in the background for a
// presenter. Results are collected by the presenter on its own goroutine,
// so GPU uploads stay on the thread that draws.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/gogpu/gallery"
	"github.com/gogpu/gallery/imagesource"
)

// FetchFunc returns the encoded thumbnail of d.
type FetchFunc func(ctx context.Context, d gallery.ImageDescriptor) ([]byte, error)

// Key identifies a texture: a content index within one pool generation.
type Key struct {
	Generation uint64
	Index      int
}

// Result is a finished load. Err is a *gallery.StaleHandleError.
type Result struct {
	Key   Key
	Image image.Image
	Err   error
}

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds the number of fetches in flight. The default is 8.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithMaxWidth downscales decoded images wider than w. The default is 256.
func WithMaxWidth(w int) Option {
	return func(l *Loader) {
		l.maxWidth = w
	}
}

// Loader runs fetches with bounded concurrency. Each key is loaded at most
// once: failed keys are remembered and never retried.
type Loader struct {
	fetch    FetchFunc
	sem      *semaphore.Weighted
	maxWidth int
	results  chan Result

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[Key]struct{}
	failed  map[Key]error
}

// New creates a loader around fetch.
func New(fetch FetchFunc, opts ...Option) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		fetch:    fetch,
		sem:      semaphore.NewWeighted(8),
		maxWidth: 256,
		results:  make(chan Result, 256),
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[Key]struct{}),
		failed:   make(map[Key]error),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Request starts loading d under k unless it is already pending or failed.
// It reports whether a load was started.
func (l *Loader) Request(k Key, d gallery.ImageDescriptor) bool {
	l.mu.Lock()
	if _, ok := l.pending[k]; ok {
		l.mu.Unlock()
		return false
	}
	if _, ok := l.failed[k]; ok {
		l.mu.Unlock()
		return false
	}
	l.pending[k] = struct{}{}
	l.mu.Unlock()

	l.wg.Add(1)
	go l.load(k, d)
	return true
}

func (l *Loader) load(k Key, d gallery.ImageDescriptor) {
	defer l.wg.Done()
	if err := l.sem.Acquire(l.ctx, 1); err != nil {
		return
	}
	img, err := l.decode(d)
	l.sem.Release(1)

	res := Result{Key: k, Image: img}
	if err != nil {
		res.Err = &gallery.StaleHandleError{ID: d.ID, Handle: d.Thumbnail, Err: err}
	}
	select {
	case l.results <- res:
	case <-l.ctx.Done():
	}
}

func (l *Loader) decode(d gallery.ImageDescriptor) (image.Image, error) {
	data, err := l.fetch(l.ctx, d)
	if err != nil {
		return nil, err
	}
	img, _, err := imagesource.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return imagesource.Resize(img, l.maxWidth), nil
}

// Drain returns up to n finished loads without blocking. Failures are
// logged once and remembered.
func (l *Loader) Drain(n int) []Result {
	var out []Result
	for len(out) < n {
		select {
		case r := <-l.results:
			l.mu.Lock()
			delete(l.pending, r.Key)
			if r.Err != nil {
				l.failed[r.Key] = r.Err
			}
			l.mu.Unlock()
			if r.Err != nil {
				logger().Warn("thumbnail unavailable", "err", r.Err)
			}
			out = append(out, r)
		default:
			return out
		}
	}
	return out
}

// Failed reports whether k failed to load.
func (l *Loader) Failed(k Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.failed[k]
	return ok
}

// Pending returns the number of loads not yet drained.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Forget drops failure records of every generation but gen. Loads still in
// flight for old generations are delivered and should be discarded.
func (l *Loader) Forget(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.failed {
		if k.Generation != gen {
			delete(l.failed, k)
		}
	}
}

// Close cancels outstanding loads and waits for their goroutines.
func (l *Loader) Close() {
	l.cancel()
	l.wg.Wait()
}

// HTTPFetch fetches d.Thumbnail over HTTP. A nil client uses one with a
// 15 second timeout.
func HTTPFetch(client *http.Client) FetchFunc {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return func(ctx context.Context, d gallery.ImageDescriptor) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Thumbnail, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("loader: GET %s: %s", d.Thumbnail, resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
}

// ThumbnailerFetch renders thumbnails locally with t, addressing images by
// descriptor ID.
func ThumbnailerFetch(t *imagesource.Thumbnailer) FetchFunc {
	return func(ctx context.Context, d gallery.ImageDescriptor) ([]byte, error) {
		th, err := t.Thumbnail(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		return th.Data, nil
	}
}

// FileFetch reads d.Thumbnail as a file path.
func FileFetch(_ context.Context, d gallery.ImageDescriptor) ([]byte, error) {
	return os.ReadFile(d.Thumbnail)
}

func logger() *slog.Logger {
	return gallery.ComponentLogger("loader")
}
