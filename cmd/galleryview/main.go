// Command galleryview is a desktop gallery window.
//
//	galleryview -server http://localhost:3000
//	galleryview -dir ~/Pictures -mode sphere
//
// Keys: 1 2 3 switch between grid, strip and sphere; M cycles the grid
// motion; Space toggles strip auto-scroll; + and - change the strip speed;
// R reloads the image list; Escape returns to the manual grid.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/gallery"
	"github.com/gogpu/gallery/imagecache"
	"github.com/gogpu/gallery/imagesource"
	"github.com/gogpu/gallery/internal/loader"
	"github.com/gogpu/gallery/thumbcache"
)

func main() {
	var (
		remote   = flag.String("server", "http://localhost:3000", "galleryd base URL")
		dir      = flag.String("dir", "", "read images from a local directory instead of a server")
		dbPath   = flag.String("db", "", "SQLite file remembering the last listing")
		modeName = flag.String("mode", "grid", "initial mode: grid, strip or sphere")
		width    = flag.Int("width", 1280, "window width")
		height   = flag.Int("height", 800, "window height")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	gallery.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*remote, *dir, *dbPath, *modeName, *width, *height); err != nil {
		fmt.Fprintln(os.Stderr, "galleryview:", err)
		os.Exit(1)
	}
}

func run(remote, dir, dbPath, modeName string, width, height int) error {
	mode, err := gallery.ParseMode(modeName)
	if err != nil {
		return err
	}

	var (
		src   gallery.ImageSource
		fetch loader.FetchFunc
		check func(gallery.ImageDescriptor) bool
	)
	if dir != "" {
		ds := imagesource.NewDirSource(dir)
		thumbs := imagesource.NewThumbnailer(ds, thumbcache.New(thumbcache.DefaultMaxBytes))
		src, fetch, check = ds, loader.ThumbnailerFetch(thumbs), ds.Exists
	} else {
		src, fetch = imagesource.NewHTTPSource(remote, nil), loader.HTTPFetch(nil)
	}

	var cache gallery.ImageCache
	if dbPath != "" {
		var opts []imagecache.Option
		if check != nil {
			opts = append(opts, imagecache.WithHandleCheck(check))
		}
		store, err := imagecache.Open(dbPath, opts...)
		if err != nil {
			return err
		}
		defer store.Close()
		cache = store
	}

	g := newGame(src, cache, fetch, mode, width, height)
	defer g.close()
	g.engine.SetPool(gallery.LoadPool(context.Background(), src, cache))

	ebiten.SetWindowTitle("gallery")
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
