// Package server exposes the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/typeforge/internal/anticheat"
	"github.com/verte-zerg/typeforge/internal/auth"
	"github.com/verte-zerg/typeforge/internal/config"
	"github.com/verte-zerg/typeforge/internal/leaderboard"
	"github.com/verte-zerg/typeforge/internal/live"
	"github.com/verte-zerg/typeforge/internal/mail"
	"github.com/verte-zerg/typeforge/internal/store"
	"github.com/verte-zerg/typeforge/internal/submit"
	"github.com/verte-zerg/typeforge/internal/textsource"
)

const shutdownTimeout = 10 * time.Second

// Options wires the server dependencies. Mailer and Hub are optional.
type Options struct {
	Store    *store.Store
	Policy   anticheat.Policy
	Signer   *auth.Signer
	Mailer   mail.Mailer
	Hub      *live.Hub
	Settings config.Server
	Logger   *slog.Logger
}

// Server holds the API services.
type Server struct {
	store       *store.Store
	signer      *auth.Signer
	mailer      mail.Mailer
	hub         *live.Hub
	settings    config.Server
	logger      *slog.Logger
	submit      *submit.Service
	leaderboard *leaderboard.Service
	prompts     *textsource.Provider
}

// New builds a Server.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Signer == nil {
		return nil, errors.New("server: signer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var submitOpts []submit.Option
	if opts.Hub != nil {
		submitOpts = append(submitOpts, submit.WithNotifier(opts.Hub))
	}
	return &Server{
		store:       opts.Store,
		signer:      opts.Signer,
		mailer:      opts.Mailer,
		hub:         opts.Hub,
		settings:    opts.Settings,
		logger:      logger,
		submit:      submit.NewService(opts.Policy, opts.Store, submitOpts...),
		leaderboard: leaderboard.NewService(opts.Store),
		prompts:     textsource.NewProvider(opts.Store),
	}, nil
}

// Handler returns the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(corsMiddleware(s.settings.CORSOrigins))
	r.Use(s.identityMiddleware())

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.POST("/results", s.postResult)
		api.GET("/results", s.listResults)
		api.GET("/results/export", s.exportResults)
		api.GET("/leaderboard", s.getLeaderboard)
		api.GET("/text/source", s.getTextSource)
		api.POST("/follows", s.postFollow)
		api.DELETE("/follows", s.deleteFollow)
		api.GET("/dashboard", s.getDashboard)
		api.GET("/wordlists", s.listWordLists)
		api.POST("/wordlists", s.postWordList)

		authAPI := api.Group("/auth")
		authAPI.POST("/register", s.register)
		authAPI.POST("/login", s.login)
		authAPI.POST("/email-link", s.emailLink)
		authAPI.GET("/verify", s.verify)

		admin := api.Group("/admin")
		admin.Use(s.requireAdmin())
		admin.POST("/flags", s.postFlag)
		admin.GET("/users", s.listUsers)
	}

	if s.hub != nil {
		r.GET("/ws/leaderboard", func(c *gin.Context) {
			s.hub.ServeWS(c.Writer, c.Request)
		})
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.hub != nil {
		go s.hub.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
