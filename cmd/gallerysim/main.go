// Command gallerysim drives the gallery engine without a display and
// reports what each mode would have drawn.
//
// The pool comes from a directory, a running galleryd, or is synthetic:
//
//	gallerysim -mode sphere -pool 500 -ticks 3600
//	gallerysim -mode strip -dir ~/Pictures -db gallery.db
//	gallerysim -mode grid -server http://localhost:3000 -realtime 5s
//
// With -realtime the engine's own frame loop runs for the given duration;
// otherwise frames are produced by calling Tick in a tight loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gogpu/gallery"
	"github.com/gogpu/gallery/imagecache"
	"github.com/gogpu/gallery/imagesource"
)

func main() {
	var (
		modeName = flag.String("mode", "grid", "presentation mode: grid, strip or sphere")
		motion   = flag.String("motion", "manual", "grid motion: manual, zen or pilot")
		poolSize = flag.Int("pool", 200, "synthetic pool size when no -dir or -server is given")
		dir      = flag.String("dir", "", "image directory")
		remote   = flag.String("server", "", "galleryd base URL")
		dbPath   = flag.String("db", "", "SQLite file remembering the last listing")
		ticks    = flag.Int("ticks", 600, "frames to produce with Tick")
		realtime = flag.Duration("realtime", 0, "run the frame loop for this long instead of -ticks")
		width    = flag.Float64("width", 1280, "viewport width")
		height   = flag.Float64("height", 800, "viewport height")
		seed     = flag.Uint64("seed", 1, "random seed")
		drag     = flag.Bool("drag", false, "sweep the pointer in a slow circle, pressing and releasing it periodically")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	gallery.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	mode, err := gallery.ParseMode(*modeName)
	if err != nil {
		fatal(err)
	}
	gm, err := gallery.ParseGridMotion(*motion)
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	pool, err := loadPool(ctx, *dir, *remote, *dbPath, *poolSize)
	if err != nil {
		fatal(err)
	}

	e := gallery.New(
		gallery.WithRand(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))),
		gallery.WithViewport(*width, *height),
		gallery.WithMode(mode),
		gallery.WithGridMotion(gm),
	)
	e.SetPool(pool)

	st := newStats(pool.Len())
	pointer := newSweep(*width, *height, *drag)

	start := time.Now()
	if *realtime > 0 {
		runLoop(ctx, e, st, pointer, *realtime)
	} else {
		for range *ticks {
			pointer.feed(e)
			st.observe(e.Tick())
		}
	}
	st.finish(e.Bindings(), time.Since(start))
	st.print(os.Stdout, e.Mode())
}

func loadPool(ctx context.Context, dir, remote, dbPath string, n int) (*gallery.Pool, error) {
	var src gallery.ImageSource
	var exists func(gallery.ImageDescriptor) bool
	switch {
	case dir != "":
		ds := imagesource.NewDirSource(dir)
		src, exists = ds, ds.Exists
	case remote != "":
		src = imagesource.NewHTTPSource(remote, nil)
	default:
		return syntheticPool(n), nil
	}

	if dbPath == "" {
		return gallery.LoadPool(ctx, src, nil), nil
	}
	var opts []imagecache.Option
	if exists != nil {
		opts = append(opts, imagecache.WithHandleCheck(exists))
	}
	store, err := imagecache.Open(dbPath, opts...)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return gallery.LoadPool(ctx, src, store), nil
}

func syntheticPool(n int) *gallery.Pool {
	ds := make([]gallery.ImageDescriptor, n)
	for i := range ds {
		id := fmt.Sprintf("synthetic-%04d", i)
		ds[i] = gallery.ImageDescriptor{ID: id, Thumbnail: id, Full: id, DisplayName: id}
	}
	return gallery.NewPool(ds)
}

// runLoop feeds input from this goroutine while the engine's loop ticks on
// its own.
func runLoop(ctx context.Context, e *gallery.Engine, st *stats, pointer *sweep, d time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	frames := make(chan gallery.Frame, 64)
	if err := e.Run(ctx, func(f gallery.Frame) {
		select {
		case frames <- f:
		default:
			st.dropped++
		}
	}); err != nil {
		fatal(err)
	}

	feed := time.NewTicker(gallery.DefaultFrameInterval)
	defer feed.Stop()
	for {
		select {
		case f := <-frames:
			st.observe(f)
		case <-feed.C:
			pointer.feed(e)
		case <-e.Done():
			for {
				select {
				case f := <-frames:
					st.observe(f)
				default:
					return
				}
			}
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "gallerysim:", err)
	os.Exit(1)
}
