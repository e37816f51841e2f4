// Package server exposes the risk engine and the record store over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/passagehealth/passage/core"
	"github.com/passagehealth/passage/internal/contract"
	"go.uber.org/zap"
)

const (
	operatorKey     = "operator"
	shutdownTimeout = 10 * time.Second
)

// publicPaths skip token checks.
var publicPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// Options configures identity handling for a Server.
type Options struct {
	// Operator is recorded on saved assessments when token checks are disabled.
	Operator string
	// JWTSecret enables HS256 bearer token checks when non-empty.
	JWTSecret string
	JWTIssuer string
}

// Server routes HTTP requests to the engine and the store.
type Server struct {
	engine   *core.Engine
	store    contract.RecordStore
	logger   *zap.Logger
	auth     *Authenticator
	operator string
	metrics  *metrics
	router   *gin.Engine
}

// New builds a server and registers its routes.
func New(engine *core.Engine, store contract.RecordStore, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   engine,
		store:    store,
		logger:   logger,
		auth:     NewAuthenticator(opts.JWTSecret, opts.JWTIssuer),
		operator: opts.Operator,
		metrics:  newMetrics(),
		router:   gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLogger(), s.metrics.middleware(), s.authenticate())
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr), zap.Bool("auth", s.auth != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.handler()))
	s.router.GET("/policies", s.handlePolicies)
	s.router.POST("/assessments", s.handleAssess)
	s.router.GET("/patients/:id/assessments", s.handleHistory)
	s.router.GET("/population", s.handlePopulation)
}

// requestLogger logs one line per request through zap.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if op, ok := c.Get(operatorKey); ok {
			fields = append(fields, zap.Any(operatorKey, op))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			s.logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			s.logger.Warn("request", fields...)
		default:
			s.logger.Info("request", fields...)
		}
	}
}

// authenticate resolves the operator identity for every request.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, public := publicPaths[c.Request.URL.Path]; public {
			c.Next()
			return
		}
		if s.auth == nil {
			c.Set(operatorKey, s.operator)
			c.Next()
			return
		}

		operator, err := s.auth.Operator(c.GetHeader("Authorization"))
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage(err)})
			return
		}
		c.Set(operatorKey, operator)
		c.Next()
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return ErrMissingToken.Error()
	case errors.Is(err, ErrTokenFormat):
		return ErrTokenFormat.Error()
	default:
		return ErrInvalidToken.Error()
	}
}
