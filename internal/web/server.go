// Package web exposes a task backend over JSON/HTTP (`taskdeck serve`).
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskdeck/internal/remote"
)

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	// Debug keeps gin in debug mode (route table on stderr).
	Debug bool
}

type Server struct {
	cfg     ServerConfig
	backend remote.Backend
	log     zerolog.Logger
	router  *gin.Engine
}

func NewServer(cfg ServerConfig, backend remote.Backend, log zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{cfg: cfg, backend: backend, log: log}
	s.router = gin.New()
	s.router.Use(s.requestLogger(), gin.Recovery())
	s.registerRoutes(s.router)
	return s
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes(router gin.IRouter) {
	router.GET("/health", s.handleHealth)

	api := router.Group("/api/v1")

	tasks := api.Group("/tasks")
	tasks.GET("", s.handleGetTasks)
	tasks.POST("", s.handleCreateTask)
	tasks.POST("/bulk-update", s.handleBulkUpdate)
	tasks.PATCH("/:id", s.handleUpdateTask)
	tasks.DELETE("/:id", s.handleDeleteTask)
	tasks.GET("/:id/description", s.handleDescription)
	tasks.POST("/:id/subtasks", s.handleAddSubtask)
	tasks.PATCH("/:id/subtasks/:sid", s.handleUpdateSubtask)
	tasks.POST("/:id/subtasks/:sid/toggle", s.handleToggleSubtask)
	tasks.DELETE("/:id/subtasks/:sid", s.handleDeleteSubtask)

	cats := api.Group("/categories")
	cats.GET("", s.handleGetCategories)
	cats.POST("", s.handleCreateCategory)
	cats.PATCH("/:id", s.handleUpdateCategory)
	cats.DELETE("/:id", s.handleDeleteCategory)

	rems := api.Group("/reminders")
	rems.GET("", s.handleListReminders)
	rems.POST("", s.handleCreateReminder)
	rems.DELETE("/:id", s.handleDeleteReminder)
	rems.POST("/:id/sent", s.handleMarkReminderSent)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("setting up http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.log.Error().Err(err).Msg("failed to listen and serve http")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("failed to shutdown http server")
		return err
	}
	s.log.Info().Msg("shut down http server")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
