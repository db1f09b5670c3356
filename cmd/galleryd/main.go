// Command galleryd serves an image directory to gallery clients.
//
// Usage:
//
//	galleryd [-config gallery.yaml] [-dir path] [-listen :3000]
//
// The directory can be changed at runtime through POST /api/config; the
// new choice is written back to the configuration file.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gallery"
	"github.com/gogpu/gallery/imagecache"
	"github.com/gogpu/gallery/imagesource"
	"github.com/gogpu/gallery/internal/config"
	"github.com/gogpu/gallery/server"
	"github.com/gogpu/gallery/thumbcache"
)

func main() {
	var (
		cfgPath = flag.String("config", "gallery.yaml", "configuration file")
		dir     = flag.String("dir", "", "image directory (overrides the configuration)")
		listen  = flag.String("listen", "", "listen address (overrides the configuration)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	if *dir != "" {
		cfg.ImageDir = *dir
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	gallery.SetLogger(log)

	if err := run(cfg, *cfgPath, log); err != nil {
		log.Error("galleryd stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, cfgPath string, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := imagesource.NewDirSource(cfg.ImageDir, imagesource.WithBaseURL(cfg.PublicURL()))
	cache := thumbcache.New(cfg.Thumbnails.CacheBytes, thumbcache.WithEvictHook(func(key string, size int) {
		log.Debug("thumbnail evicted", "key", key, "bytes", size)
	}))
	thumbs := imagesource.NewThumbnailer(src, cache,
		imagesource.WithWidth(cfg.Thumbnails.Width),
		imagesource.WithQuality(cfg.Thumbnails.Quality))

	opts := []server.Option{server.WithConfigFile(cfgPath)}
	if cfg.Database != "" {
		store, err := imagecache.Open(cfg.Database, imagecache.WithHandleCheck(src.Exists))
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, server.WithImageCache(store))
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(cfg, src, thumbs, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("galleryd listening", "addr", cfg.Listen, "dir", cfg.ImageDir, "url", cfg.PublicURL())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	st := cache.Stats()
	log.Info("galleryd shut down", "thumbs", st.Len, "hit_rate", st.HitRate)
	return nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
