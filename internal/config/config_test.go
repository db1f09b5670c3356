// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvImageDir, "")
	t.Setenv(EnvPort, "")
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if *c != *Default() {
		t.Errorf("Load(missing) = %+v, want defaults %+v", c, Default())
	}
	if c.PublicURL() != "http://localhost:3000" {
		t.Errorf("PublicURL() = %q", c.PublicURL())
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvImageDir, "/srv/photos")
	t.Setenv(EnvPort, "8080")
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c.ImageDir != "/srv/photos" {
		t.Errorf("ImageDir = %q, want /srv/photos", c.ImageDir)
	}
	if c.Listen != ":8080" {
		t.Errorf("Listen = %q, want :8080", c.Listen)
	}
	if c.PublicURL() != "http://localhost:8080" {
		t.Errorf("PublicURL() = %q", c.PublicURL())
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		env      string
		imageDir string
		listen   string
		width    int
	}{
		{
			name:     "file wins over env",
			yaml:     "image_dir: /data/chosen\nlisten: 127.0.0.1:9000\n",
			env:      "/from/env",
			imageDir: "/data/chosen",
			listen:   "127.0.0.1:9000",
			width:    300,
		},
		{
			name:     "env fills missing dir",
			yaml:     "thumbnails:\n  width: 200\n",
			env:      "/from/env",
			imageDir: "/from/env",
			listen:   ":3000",
			width:    200,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvImageDir, tt.env)
			t.Setenv(EnvPort, "")
			path := filepath.Join(t.TempDir(), "gallery.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			c, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if c.ImageDir != tt.imageDir || c.Listen != tt.listen || c.Thumbnails.Width != tt.width {
				t.Errorf("Load = dir %q listen %q width %d; want %q %q %d",
					c.ImageDir, c.Listen, c.Thumbnails.Width, tt.imageDir, tt.listen, tt.width)
			}
		})
	}
}

func TestLoadPortKeepsHost(t *testing.T) {
	t.Setenv(EnvPort, "7000")
	path := filepath.Join(t.TempDir(), "gallery.yaml")
	if err := os.WriteFile(path, []byte("listen: 0.0.0.0:3000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Listen != "0.0.0.0:7000" {
		t.Errorf("Listen = %q, want 0.0.0.0:7000", c.Listen)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.yaml")
	if err := os.WriteFile(path, []byte("image_dir: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted invalid YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvImageDir, "")
	t.Setenv(EnvPort, "")
	path := filepath.Join(t.TempDir(), "gallery.yaml")

	c := Default()
	c.ImageDir = "/data/new"
	c.BaseURL = "https://photos.example.com/"
	c.Thumbnails.Quality = 80
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *c {
		t.Errorf("round trip = %+v, want %+v", got, c)
	}
	if got.PublicURL() != "https://photos.example.com" {
		t.Errorf("PublicURL() = %q", got.PublicURL())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory holds %d files after Save, want 1", len(entries))
	}
}
