package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/typeforge/internal/leaderboard"
	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/store"
	"github.com/verte-zerg/typeforge/internal/textsource"
)

// leaderboardQuery reads the query string, applying defaults for absent keys.
func leaderboardQuery(c *gin.Context) (model.LeaderboardQuery, error) {
	q := model.DefaultLeaderboardQuery()
	if v := c.Query("mode"); v != "" {
		q.Mode = v
	}
	if v := c.Query("duration"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return q, err
		}
		q.DurationSeconds = d
	}
	var err error
	if v := c.Query("source"); v != "" {
		if q.TextSource, err = model.ParseTextSource(v); err != nil {
			return q, err
		}
	}
	if v := c.Query("window"); v != "" {
		if q.Window, err = model.ParseWindow(v); err != nil {
			return q, err
		}
	}
	if v := c.Query("scope"); v != "" {
		if q.Scope, err = model.ParseScope(v); err != nil {
			return q, err
		}
	}
	return q, nil
}

func (s *Server) getLeaderboard(c *gin.Context) {
	q, err := leaderboardQuery(c)
	if err == nil {
		err = leaderboard.ValidateQuery(q)
	}
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid query")
		return
	}
	board, err := s.leaderboard.Fetch(c.Request.Context(), identity(c), q)
	if err != nil {
		s.logger.Error("fetch leaderboard", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (s *Server) getTextSource(c *gin.Context) {
	source, err := model.ParseTextSource(c.DefaultQuery("source", string(model.TextSourceWords)))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid query.")
		return
	}
	count := textsource.DefaultWordCount
	if v := c.Query("wordCount"); v != "" {
		count, err = strconv.Atoi(v)
		if err != nil || !textsource.ValidWordCount(count) {
			errorJSON(c, http.StatusBadRequest, "Invalid query.")
			return
		}
	}
	opts := textsource.Options{WordCount: count}
	if id := c.Query("listId"); id != "" && source == model.TextSourceWords {
		words, ok := s.customWords(c, id)
		if !ok {
			return
		}
		opts.Words = words
	}
	prompt, err := s.prompts.Prompt(c.Request.Context(), source, opts)
	if err != nil {
		s.logger.Error("load prompt", "source", string(source), "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if prompt.Source == model.TextSourceQuote {
		c.JSON(http.StatusOK, gin.H{"source": prompt.Source, "content": prompt.Text, "author": prompt.Author})
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": prompt.Source, "text": prompt.Text})
}

type followRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) followTarget(c *gin.Context) (*model.Identity, string, bool) {
	caller := identity(c)
	if !caller.Premium() {
		errorJSON(c, http.StatusForbidden, "Premium and sign in required")
		return nil, "", false
	}
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return nil, "", false
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return nil, "", false
	}
	if req.UserID == caller.UserID {
		errorJSON(c, http.StatusBadRequest, "Cannot follow yourself")
		return nil, "", false
	}
	return caller, req.UserID, true
}

func (s *Server) postFollow(c *gin.Context) {
	caller, target, ok := s.followTarget(c)
	if !ok {
		return
	}
	if _, err := s.store.UserByID(c.Request.Context(), target); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error("load follow target", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := s.store.Follow(c.Request.Context(), caller.UserID, target); err != nil {
		s.logger.Error("follow", "user_id", caller.UserID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) deleteFollow(c *gin.Context) {
	caller, target, ok := s.followTarget(c)
	if !ok {
		return
	}
	if err := s.store.Unfollow(c.Request.Context(), caller.UserID, target); err != nil {
		s.logger.Error("unfollow", "user_id", caller.UserID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
