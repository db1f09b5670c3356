// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads and saves the gallery daemon configuration.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvImageDir = "IMAGE_DIR"
	EnvPort     = "PORT"
)

// Config is the daemon configuration.
type Config struct {
	// ImageDir is the directory served by the image API.
	ImageDir string `yaml:"image_dir"`
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// BaseURL prefixes the image and thumbnail URLs in listings. Empty
	// means http://localhost plus the listen port.
	BaseURL string `yaml:"base_url,omitempty"`
	// Database is the SQLite file remembering the last listing. Empty
	// disables it.
	Database   string           `yaml:"database"`
	Thumbnails ThumbnailsConfig `yaml:"thumbnails"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// ThumbnailsConfig controls thumbnail generation.
type ThumbnailsConfig struct {
	Width      int   `yaml:"width"`
	Quality    int   `yaml:"quality"`
	CacheBytes int64 `yaml:"cache_bytes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the YAML file at path. A missing file yields the defaults.
// IMAGE_DIR supplies the image directory when the file names none, so a
// directory chosen through the API survives restarts. PORT overrides the
// listen port.
func Load(path string) (*Config, error) {
	c := &Config{ImageDir: os.Getenv(EnvImageDir)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		var file Config
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		file.ImageDir = cmpOr(file.ImageDir, c.ImageDir)
		c = &file
	}

	if port := os.Getenv(EnvPort); port != "" {
		host, _, err := net.SplitHostPort(c.Listen)
		if err != nil {
			host = ""
		}
		c.Listen = net.JoinHostPort(host, port)
	}
	c.applyDefaults()
	return c, nil
}

func cmpOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func (c *Config) applyDefaults() {
	if c.ImageDir == "" {
		c.ImageDir = "sample_images"
	}
	if c.Listen == "" {
		c.Listen = ":3000"
	}
	if c.Database == "" {
		c.Database = "gallery.db"
	}
	if c.Thumbnails.Width <= 0 {
		c.Thumbnails.Width = 300
	}
	if c.Thumbnails.Quality <= 0 || c.Thumbnails.Quality > 100 {
		c.Thumbnails.Quality = 60
	}
	if c.Thumbnails.CacheBytes <= 0 {
		c.Thumbnails.CacheBytes = 64 << 20
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// PublicURL returns BaseURL, or http://localhost:<port> derived from Listen.
func (c *Config) PublicURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	_, port, err := net.SplitHostPort(c.Listen)
	if err != nil || port == "" {
		port = "3000"
	}
	return "http://localhost:" + port
}

// Save writes c to path atomically: a temporary file in the same
// directory is renamed over the target.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	return nil
}
