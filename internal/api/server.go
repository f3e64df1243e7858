// Package api serves the tracker over HTTP as plain JSON. Every request is
// scoped to the owner named in the X-Owner-ID header.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/tracker"
)

const ownerKey = "owner"

type Server struct {
	tracker *tracker.Tracker
}

func NewServer(t *tracker.Tracker) *Server {
	return &Server{tracker: t}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": constants.Version})
	})

	api := r.Group("/api")
	api.Use(requireOwner())
	s.setupRoutes(api)
	return r
}

func (s *Server) setupRoutes(router *gin.RouterGroup) {
	router.GET("/period-key", s.periodKey())

	router.GET("/habits", s.listHabits())
	router.POST("/habits", s.createHabit())
	router.GET("/habits/:id", s.getHabit())
	router.DELETE("/habits/:id", s.deleteHabit())

	router.GET("/habits/:id/logs", s.listLogs())
	router.POST("/habits/:id/records", s.record())
	router.GET("/habits/:id/streak", s.streak())
	router.GET("/habits/:id/completion-rate", s.completionRate())

	router.GET("/badges", s.badges())
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetHeader(constants.OwnerHeader)
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + constants.OwnerHeader + " header"})
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
