package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stoik/emailapi/services/email-api/internal/store"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests once its context ends
const ShutdownTimeout = 10 * time.Second

// Server exposes the Emails store over HTTP
type Server struct {
	store  store.Store
	logger *logrus.Logger
	router *gin.Engine

	ready     chan struct{}
	readyOnce sync.Once
	addr      net.Addr
}

func New(st store.Store, logger *logrus.Logger) *Server {
	s := &Server{
		store:  st,
		logger: logger,
		ready:  make(chan struct{}),
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	r.GET("/", s.handleIndex)
	r.GET("/health", s.handleHealth)

	email := r.Group("/email")
	{
		email.GET("", s.handleListEmails)
		email.POST("", s.handleCreateEmail)
		email.POST("/", s.handleCreateEmail)
		email.GET("/:id", s.handleGetEmail)
		email.PUT("/:id", s.handleUpdateEmail)
		email.DELETE("/:id", s.handleDeleteEmail)
	}

	return r
}

// Handler returns the router, for use with httptest or a custom http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Ready is closed once Serve is accepting connections
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr is the bound listener address; nil before Ready is closed
func (s *Server) Addr() net.Addr {
	select {
	case <-s.ready:
		return s.addr
	default:
		return nil
	}
}

// ListenAndServe binds addr (":0" picks a free port) and calls Serve
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(ln)
	}()

	s.readyOnce.Do(func() {
		s.addr = ln.Addr()
		close(s.ready)
	})
	s.logger.WithField("addr", ln.Addr().String()).Info("Email API listening")

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down email API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}
