package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/typeforge/internal/auth"
	"github.com/verte-zerg/typeforge/internal/mail"
	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/store"
)

const timeFormat = time.RFC3339

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailLinkRequest struct {
	Email string `json:"email"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsPremium bool   `json:"isPremium"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, IsPremium: u.Subscription.Premium()}
}

func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\n")
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	email := store.NormalizeEmail(req.Email)
	if !validEmail(email) || len(req.Password) < auth.MinPasswordLength || len(req.Name) > 80 {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	u, err := s.store.CreateUser(c.Request.Context(), model.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrConflict) {
		errorJSON(c, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		s.logger.Error("create user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.respondWithSession(c, http.StatusCreated, u)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	u, err := s.store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("load user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err != nil || auth.CheckPassword(u.PasswordHash, req.Password) != nil {
		errorJSON(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.respondWithSession(c, http.StatusOK, u)
}

func (s *Server) emailLink(c *gin.Context) {
	if s.mailer == nil {
		errorJSON(c, http.StatusServiceUnavailable, "Email sign-in is not configured")
		return
	}
	var req emailLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	email := store.NormalizeEmail(req.Email)
	if !validEmail(email) {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	ctx := c.Request.Context()
	u, err := s.store.EnsureUser(ctx, email, "")
	if err != nil {
		s.logger.Error("ensure user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	token, err := s.signer.IssueSignInLink(u.ID, u.Email)
	if err != nil {
		s.logger.Error("issue sign-in link", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	link := s.settings.AppURL + "/api/auth/verify?token=" + url.QueryEscape(token)
	if err := s.mailer.Send(ctx, mail.SignInLink(u.Email, link)); err != nil {
		s.logger.Error("send sign-in link", "error", err)
		errorJSON(c, http.StatusBadGateway, "Could not send email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) verify(c *gin.Context) {
	claims, err := s.signer.ParseSignInLink(c.Query("token"))
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "Invalid or expired link")
		return
	}
	u, err := s.store.UserByID(c.Request.Context(), claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		errorJSON(c, http.StatusUnauthorized, "Invalid or expired link")
		return
	}
	if err != nil {
		s.logger.Error("load user", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.respondWithSession(c, http.StatusOK, u)
}

func (s *Server) respondWithSession(c *gin.Context, status int, u model.User) {
	token, err := s.signer.IssueSession(u.ID)
	if err != nil {
		s.logger.Error("issue session", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(status, gin.H{"token": token, "user": toUserResponse(u)})
}
