// Package server exposes the gallery over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/gallery"
)

// Item is a record as listed by the API.
type Item struct {
	Index     int `json:"index"`
	gallery.Record
	Thumbnail string `json:"thumbnail"`
}

// Detail is a single record with its viewer descriptor.
type Detail struct {
	Item
	Viewer gallery.Viewer `json:"viewer"`
}

// Server serves the gallery API and, optionally, the media files.
type Server struct {
	cfg    config.ServerConfig
	lib    *gallery.Library
	log    *zap.Logger
	engine *gin.Engine
}

// New builds the routes.
func New(cfg config.ServerConfig, lib *gallery.Library, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		lib:    lib,
		log:    log.Named("server"),
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.accessLog())

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := s.engine.Group("/api")
	api.GET("/media", s.listMedia)
	api.GET("/media/:index", s.getMedia)
	api.GET("/categories", s.listCategories)

	if cfg.MediaDir != "" {
		s.engine.Static("/media", cfg.MediaDir)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gallery service listening", zap.String("addr", s.cfg.Addr), zap.Int("records", s.lib.Len()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Info("shutting down gallery service")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) listMedia(c *gin.Context) {
	var items []Item
	if category := c.Query("category"); category != "" {
		for _, i := range s.lib.ByCategory(category) {
			r, _ := s.lib.At(i)
			items = append(items, s.item(i, r))
		}
	} else {
		for i, r := range s.lib.All() {
			items = append(items, s.item(i, r))
		}
	}
	if items == nil {
		items = []Item{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) getMedia(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	r, ok := s.lib.At(i)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such record"})
		return
	}
	c.JSON(http.StatusOK, Detail{Item: s.item(i, r), Viewer: r.Viewer()})
}

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": s.lib.Categories()})
}

func (s *Server) item(i int, r gallery.Record) Item {
	return Item{Index: i, Record: r, Thumbnail: s.thumbnail(r)}
}

// thumbnail falls back to the document icon when a pdf's preview image is
// missing from the media directory.
func (s *Server) thumbnail(r gallery.Record) string {
	thumb := r.Thumbnail()
	if r.Kind != gallery.PDF || s.cfg.MediaDir == "" {
		return thumb
	}
	if _, err := os.Stat(filepath.Join(s.cfg.MediaDir, thumb)); err != nil {
		return gallery.FallbackIcon
	}
	return thumb
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
