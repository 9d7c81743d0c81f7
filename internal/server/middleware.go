package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/typeforge/internal/auth"
	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/store"
)

const identityKey = "typeforge.identity"

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// identityMiddleware resolves the bearer token to a user. Requests without a
// valid token continue as guests.
func (s *Server) identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}
		claims, err := s.signer.ParseSession(token)
		if err != nil {
			c.Next()
			return
		}
		u, err := s.store.UserByID(c.Request.Context(), claims.Subject)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.logger.Error("load identity", "user_id", claims.Subject, "error", err)
			}
			c.Next()
			return
		}
		c.Set(identityKey, u.Identity())
		c.Next()
	}
}

// identity returns the caller, or nil for guests.
func identity(c *gin.Context) *model.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*model.Identity)
	return id
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identity(c)
		if id == nil || !s.settings.IsAdmin(id.Email) {
			errorJSON(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Next()
	}
}
