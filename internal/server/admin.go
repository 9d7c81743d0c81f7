package server

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/typeforge/internal/store"
)

type flagRequest struct {
	ResultID string `json:"resultId"`
	Reason   string `json:"reason"`
	Remove   bool   `json:"remove"`
}

func (s *Server) postFlag(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	req.ResultID = strings.TrimSpace(req.ResultID)
	reasonLen := utf8.RuneCountInString(req.Reason)
	if req.ResultID == "" || reasonLen < 4 || reasonLen > 240 {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	err := s.store.FlagResult(c.Request.Context(), req.ResultID, req.Reason, req.Remove)
	if errors.Is(err, store.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "Result not found")
		return
	}
	if err != nil {
		s.logger.Error("flag result", "result_id", req.ResultID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.logger.Info("result flagged", "result_id", req.ResultID, "removed", req.Remove, "admin", identity(c).Email)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type adminUser struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	IsPremium          bool   `json:"isPremium"`
	SubscriptionStatus string `json:"subscriptionStatus"`
	CreatedAt          string `json:"createdAt"`
	Results            int    `json:"results"`
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context(), 200)
	if err != nil {
		s.logger.Error("list users", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	out := make([]adminUser, 0, len(users))
	for _, u := range users {
		out = append(out, adminUser{
			ID:                 u.ID,
			Email:              u.Email,
			Name:               u.Name,
			IsPremium:          u.Subscription.Premium(),
			SubscriptionStatus: string(u.Subscription),
			CreatedAt:          u.CreatedAt.UTC().Format(timeFormat),
			Results:            u.Results,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}
