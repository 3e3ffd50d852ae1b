// Package main is the entry point for the FileHub server.
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/CageChen/filehub/internal/browser"
	"github.com/CageChen/filehub/internal/config"
	"github.com/CageChen/filehub/internal/fileops"
	"github.com/CageChen/filehub/internal/handler"
	"github.com/CageChen/filehub/internal/logging"
	"github.com/CageChen/filehub/internal/metrics"
	"github.com/CageChen/filehub/internal/preview"
	"github.com/CageChen/filehub/internal/recent"
	"github.com/CageChen/filehub/internal/roots"
	"github.com/CageChen/filehub/internal/snapshot"
	"github.com/CageChen/filehub/internal/watcher"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed web/*
var webFS embed.FS

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(2)
	}

	if err := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logging.Sync() }()

	if err := run(cfg); err != nil {
		logging.L().Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	logger := logging.L()

	logger.Info("FileHub - file browser", zap.String("config", cfg.GetConfigFilePath()))
	for i, r := range cfg.Roots {
		logger.Info("storage root",
			zap.Int("index", i),
			zap.String("alias", r.Alias),
			zap.String("path", r.Path),
			zap.String("git_ref", r.GitRef))
	}

	set, err := roots.New(cfg.Roots, cfg.Home)
	if err != nil {
		return err
	}

	// Recent files store
	var store *recent.Store
	if cfg.Recent.Path != "" {
		store, err = recent.Open(cfg.Recent.Path)
		if err != nil {
			logger.Warn("recent files disabled", zap.Error(err))
			store = nil
		} else {
			defer func() { _ = store.Close() }()
		}
	}

	// Setup directory watcher if enabled
	var w *watcher.Watcher
	if cfg.Watch {
		w, err = watcher.New(cfg.IsExcluded)
		if err != nil {
			logger.Warn("failed to create file watcher", zap.Error(err))
			w = nil
		} else {
			w.Start()
			defer func() { _ = w.Stop() }()
			logger.Info("file watcher enabled")
		}
	}

	b := browser.New(set, browser.Options{
		Sort:       cfg.Sort,
		ShowHidden: cfg.ShowHidden,
		Watcher:    w,
	})

	// Create handlers
	wsHandler := handler.NewWSHandler(set, b)
	b.OnSnapshot(wsHandler.OnSnapshot)
	if w != nil {
		w.OnChange(wsHandler.OnFileChange)
	}
	if err := b.Start(); err != nil {
		return err
	}
	defer b.Stop()

	handlers := handler.Handlers{
		List: handler.NewListHandler(set, b, snapshot.Query{Sort: cfg.Sort, ShowHidden: cfg.ShowHidden}),
		File: handler.NewFileHandler(set, preview.NewRenderer(preview.DefaultStyle), store, cfg.Recent.Limit),
		Ops:  handler.NewOpsHandler(set, fileops.Local{}, b),
		WS:   wsHandler,
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware())
	r.Use(corsMiddleware())
	if cfg.Metrics {
		r.Use(metrics.Middleware())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// API routes
	handlers.Register(r.Group("/api"))

	// Serve embedded static files
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("loading web assets: %w", err)
	}
	r.NoRoute(gin.WrapH(http.FileServer(http.FS(webContent))))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Open browser if requested
	if cfg.Open {
		go openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		cmd = "open"
		args = []string{url}
	default: // linux, etc.
		cmd = "xdg-open"
		args = []string{url}
	}

	_ = exec.Command(cmd, args...).Start()
}
