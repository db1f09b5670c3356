// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogpu/gallery"
)

// Listing is one entry of the daemon's /api/images response.
type Listing struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

// Descriptor converts the listing entry to a descriptor.
func (l Listing) Descriptor() gallery.ImageDescriptor {
	return gallery.ImageDescriptor{
		ID:          l.ID,
		Thumbnail:   l.Thumbnail,
		Full:        l.URL,
		DisplayName: l.Filename,
	}
}

// HTTPSource lists the images of a remote gallery daemon.
type HTTPSource struct {
	base   string
	client *http.Client
}

// NewHTTPSource creates a source for the daemon at base, for example
// http://localhost:3000. A nil client uses one with a 10 second timeout.
func NewHTTPSource(base string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{base: strings.TrimRight(base, "/"), client: client}
}

// List fetches /api/images in the order the daemon returns.
func (s *HTTPSource) List(ctx context.Context) ([]gallery.ImageDescriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/api/images", nil)
	if err != nil {
		return nil, fmt.Errorf("imagesource: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagesource: list %s: %w", s.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagesource: list %s: status %s", s.base, resp.Status)
	}

	var listing []Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("imagesource: decode listing: %w", err)
	}
	out := make([]gallery.ImageDescriptor, len(listing))
	for i, l := range listing {
		out[i] = l.Descriptor()
	}
	return out, nil
}

// Thumbnail returns the thumbnail URL the daemon advertised.
func (s *HTTPSource) Thumbnail(d gallery.ImageDescriptor) string {
	if d.Thumbnail != "" {
		return d.Thumbnail
	}
	return s.base + "/api/thumb/" + url.PathEscape(d.ID)
}
