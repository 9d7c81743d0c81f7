package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/typeforge/internal/anticheat"
	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/stats"
	"github.com/verte-zerg/typeforge/internal/store"
)

const resultHistoryLimit = 50

const (
	takenIDMessage       = "Result id already belongs to another player"
	removedResultMessage = "Result was removed by moderation"
)

func (s *Server) postResult(c *gin.Context) {
	var payload model.ResultPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid result payload")
		return
	}

	caller := identity(c)
	out, err := s.submit.Submit(c.Request.Context(), caller, payload)
	if err != nil {
		if errors.Is(err, anticheat.ErrInvalidPayload) {
			errorJSON(c, http.StatusBadRequest, "Invalid result payload")
			return
		}
		s.logger.Error("submit result", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch {
	case !out.Accepted:
		s.logger.Info("result rejected", "rule", string(out.Rule), "reason", out.Reason)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"ok":       false,
			"accepted": false,
			"rule":     string(out.Rule),
			"reason":   out.Reason,
			"error":    "Rejected by anti-cheat: " + out.Reason,
		})
	case errors.Is(out.SaveErr, store.ErrRemoved):
		s.logger.Warn("resubmit of removed result", "user_id", caller.UserID, "id", payload.ID)
		c.JSON(http.StatusConflict, gin.H{"ok": false, "accepted": true, "saved": false, "error": removedResultMessage})
	case errors.Is(out.SaveErr, store.ErrConflict):
		s.logger.Warn("result id owned by another user", "user_id", caller.UserID, "id", payload.ID)
		c.JSON(http.StatusConflict, gin.H{"ok": false, "accepted": true, "saved": false, "error": takenIDMessage})
	case out.SaveErr != nil:
		s.logger.Error("save result", "user_id", caller.UserID, "error", out.SaveErr)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": true, "accepted": true, "saved": false, "message": out.Message})
	case !out.Saved:
		c.JSON(http.StatusOK, gin.H{"ok": true, "accepted": true, "saved": false, "message": out.Message})
	default:
		c.JSON(http.StatusCreated, gin.H{"ok": true, "accepted": true, "saved": true, "result": out.Record})
	}
}

func (s *Server) listResults(c *gin.Context) {
	caller := identity(c)
	if caller == nil {
		c.JSON(http.StatusOK, gin.H{"results": []model.Result{}})
		return
	}
	results, err := s.store.ListUserResults(c.Request.Context(), model.StatsConfig{UserID: caller.UserID, Limit: resultHistoryLimit})
	if err != nil {
		s.logger.Error("list results", "user_id", caller.UserID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if results == nil {
		results = []model.Result{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) exportResults(c *gin.Context) {
	caller := identity(c)
	if !caller.Premium() {
		errorJSON(c, http.StatusForbidden, "Premium required")
		return
	}
	results, err := s.store.ExportUserResults(c.Request.Context(), caller.UserID)
	if err != nil {
		s.logger.Error("export results", "user_id", caller.UserID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=typeforge-results.csv")
	c.Status(http.StatusOK)
	if err := stats.WriteCSV(c.Writer, results); err != nil {
		s.logger.Error("write csv", "user_id", caller.UserID, "error", err)
	}
}

func (s *Server) getDashboard(c *gin.Context) {
	caller := identity(c)
	if caller == nil {
		errorJSON(c, http.StatusUnauthorized, "Sign in required")
		return
	}
	report, err := stats.BuildReport(c.Request.Context(), s.store, model.StatsConfig{UserID: caller.UserID})
	if err != nil {
		s.logger.Error("build dashboard", "user_id", caller.UserID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, report.Dashboard)
}
