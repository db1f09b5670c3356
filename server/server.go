// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package server exposes an image directory over HTTP: the directory
// setting, the image listing, thumbnails and the original files.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gogpu/gallery"
	"github.com/gogpu/gallery/imagesource"
	"github.com/gogpu/gallery/internal/config"
)

// ThumbCacheControl is sent with every thumbnail. Thumbnail URLs name the
// file, and a directory change releases the old thumbnails server side.
const ThumbCacheControl = "public, max-age=31536000"

// Option configures a Server.
type Option func(*Server)

// WithConfigFile makes POST /api/config save the configuration to path.
func WithConfigFile(path string) Option {
	return func(s *Server) {
		s.cfgPath = path
	}
}

// WithImageCache persists every listing served by /api/images.
func WithImageCache(c gallery.ImageCache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// Server serves one DirSource.
type Server struct {
	cfgMu   sync.Mutex
	cfg     *config.Config
	cfgPath string
	src     *imagesource.DirSource
	thumbs  *imagesource.Thumbnailer
	cache   gallery.ImageCache
	router  chi.Router
}

// New creates a server for src. cfg is updated when the directory changes.
func New(cfg *config.Config, src *imagesource.DirSource, thumbs *imagesource.Thumbnailer, opts ...Option) *Server {
	s := &Server{cfg: cfg, src: src, thumbs: thumbs}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handleGetConfig)
		r.Post("/config", s.handleSetConfig)
		r.Get("/images", s.handleImages)
		r.Get("/thumb/{filename}", s.handleThumb)
		r.Get("/image/{filename}", s.handleImage)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type configBody struct {
	Path string `json:"path"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configBody{Path: s.src.Dir()})
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var body configBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Path == "" {
		writeError(w, http.StatusBadRequest, "Path is required")
		return
	}

	prev := s.src.Dir()
	if err := s.src.SetDir(body.Path); err != nil {
		writeError(w, http.StatusBadRequest, "Directory does not exist")
		return
	}
	if prev != body.Path {
		s.thumbs.Release(prev)
	}

	s.cfgMu.Lock()
	s.cfg.ImageDir = body.Path
	if s.cfgPath != "" {
		if err := s.cfg.Save(s.cfgPath); err != nil {
			logger().Warn("config not saved", "path", s.cfgPath, "err", err)
		}
	}
	s.cfgMu.Unlock()

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Path    string `json:"path"`
	}{true, body.Path})
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	ds, err := s.src.List(r.Context())
	if err != nil {
		logger().Error("listing failed", "dir", s.src.Dir(), "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to read directory")
		return
	}
	if s.cache != nil && len(ds) > 0 {
		if err := s.cache.Persist(r.Context(), ds); err != nil {
			logger().Warn("listing not persisted", "err", err)
		}
	}

	out := make([]imagesource.Listing, len(ds))
	for i, d := range ds {
		out[i] = imagesource.Listing{
			ID:        d.ID,
			Filename:  d.DisplayName,
			URL:       d.Full,
			Thumbnail: d.Thumbnail,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleThumb(w http.ResponseWriter, r *http.Request) {
	name, ok := filename(w, r)
	if !ok {
		return
	}
	th, err := s.thumbs.Thumbnail(r.Context(), name)
	switch {
	case isMissing(err):
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	case err != nil:
		logger().Error("thumbnail failed", "name", name, "err", err)
		http.Error(w, "Error generating thumbnail", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", th.ContentType)
	w.Header().Set("Cache-Control", ThumbCacheControl)
	_, _ = w.Write(th.Data)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name, ok := filename(w, r)
	if !ok {
		return
	}
	path, err := s.src.Path(name)
	if err != nil {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", imagesource.ContentType(name))
	http.ServeFile(w, r, path)
}

// filename returns the decoded {filename} route parameter.
// filename returns the decoded {filename} route parameter. chi matches
// against RawPath when the request carries one, so the parameter is still
// escaped in that case and already decoded otherwise.
func filename(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath == "" {
		return name, true
	}
	name, err := url.PathUnescape(name)
	if err != nil {
		http.Error(w, "Image not found", http.StatusNotFound)
		return "", false
	}
	return name, true
}

func isMissing(err error) bool {
	return errors.Is(err, imagesource.ErrNotFound) ||
		errors.Is(err, imagesource.ErrInvalidName) ||
		errors.Is(err, imagesource.ErrUnsupported)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger().Debug("response not written", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{msg})
}

// cors allows any origin. Preflight requests are answered directly.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger().Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func logger() *slog.Logger {
	return gallery.ComponentLogger("server")
}
