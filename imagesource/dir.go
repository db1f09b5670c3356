// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagesource

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/gallery"
)

// Option configures a DirSource.
type Option func(*DirSource)

// WithBaseURL makes descriptor handles HTTP URLs under base
// (base/api/image/{name} and base/api/thumb/{name}) instead of file paths.
func WithBaseURL(base string) Option {
	return func(s *DirSource) {
		s.baseURL = strings.TrimRight(base, "/")
	}
}

// WithLanguage sets the collation language used to order listings.
// The default is language.Und, the root collation.
func WithLanguage(tag language.Tag) Option {
	return func(s *DirSource) {
		s.lang = tag
	}
}

// DirSource lists the images of one directory. The directory can be
// switched at runtime with SetDir.
type DirSource struct {
	mu      sync.RWMutex
	dir     string
	baseURL string
	lang    language.Tag
}

// NewDirSource creates a source for dir. The directory is not checked
// until List.
func NewDirSource(dir string, opts ...Option) *DirSource {
	s := &DirSource{dir: dir, lang: language.Und}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the current directory.
func (s *DirSource) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// SetDir switches to dir after checking that it is an existing directory.
func (s *DirSource) SetDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: empty path", ErrNotDirectory)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotDirectory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	s.mu.Lock()
	prev := s.dir
	s.dir = dir
	s.mu.Unlock()

	logger().Info("image directory changed", "from", prev, "to", dir)
	return nil
}

// List returns the directory's images in collation order. Subdirectories
// and files without an image extension are skipped. A missing directory
// lists as empty.
func (s *DirSource) List(ctx context.Context) ([]gallery.ImageDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := s.Dir()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger().Warn("image directory missing", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("imagesource: read %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !isImageEntry(e) {
			continue
		}
		names = append(names, e.Name())
	}

	col := collate.New(s.lang, collate.Numeric)
	slices.SortStableFunc(names, func(a, b string) int {
		if c := col.CompareString(norm.NFC.String(a), norm.NFC.String(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	out := make([]gallery.ImageDescriptor, len(names))
	for i, name := range names {
		out[i] = s.describe(dir, name)
	}
	return out, nil
}

func isImageEntry(e fs.DirEntry) bool {
	if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
		return false
	}
	return IsSupported(e.Name())
}

// describe builds the descriptor for a file name. The ID is the file name
// itself, which is what the HTTP API addresses.
func (s *DirSource) describe(dir, name string) gallery.ImageDescriptor {
	d := gallery.ImageDescriptor{
		ID:          name,
		DisplayName: norm.NFC.String(name),
	}
	if s.baseURL != "" {
		escaped := url.PathEscape(name)
		d.Full = s.baseURL + "/api/image/" + escaped
		d.Thumbnail = s.baseURL + "/api/thumb/" + escaped
	} else {
		d.Full = filepath.Join(dir, name)
		d.Thumbnail = d.Full
	}
	return d
}

// Thumbnail returns the descriptor's thumbnail handle, deriving it from
// the ID when unset.
func (s *DirSource) Thumbnail(d gallery.ImageDescriptor) string {
	if d.Thumbnail != "" {
		return d.Thumbnail
	}
	return s.describe(s.Dir(), d.ID).Thumbnail
}

// Path resolves name inside the current directory. It rejects names that
// would escape the directory, files without an image extension and files
// that do not exist.
func (s *DirSource) Path(name string) (string, error) {
	return s.pathIn(s.Dir(), name)
}

// pathIn resolves name against dir rather than the current directory, so a
// caller that snapshots Dir once keeps the path and any derived key in step
// across a concurrent SetDir.
func (s *DirSource) pathIn(dir, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if !IsSupported(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	p := filepath.Join(dir, name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// Exists reports whether the descriptor still refers to an image in the
// current directory.
func (s *DirSource) Exists(d gallery.ImageDescriptor) bool {
	_, err := s.Path(d.ID)
	return err == nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) ||
		filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func logger() *slog.Logger {
	return gallery.ComponentLogger("imagesource")
}
