package server

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/store"
	"github.com/verte-zerg/typeforge/internal/wordlist"
)

// Word list limits, in characters.
const (
	minListName  = 2
	maxListName  = 60
	minListWords = 4
	maxListWords = 50000
)

type wordListRequest struct {
	Name     string `json:"name"`
	Words    string `json:"words"`
	IsPublic bool   `json:"isPublic"`
}

func (r wordListRequest) valid() bool {
	name := utf8.RuneCountInString(strings.TrimSpace(r.Name))
	words := utf8.RuneCountInString(r.Words)
	return name >= minListName && name <= maxListName &&
		words >= minListWords && words <= maxListWords &&
		len(wordlist.ParseText(r.Words)) > 0
}

func (s *Server) listWordLists(c *gin.Context) {
	caller := identity(c)
	if caller == nil {
		c.JSON(http.StatusOK, gin.H{"lists": []model.WordList{}})
		return
	}
	lists, err := s.store.ListWordLists(c.Request.Context(), caller.UserID)
	if err != nil {
		s.logger.Error("list word lists", "user_id", caller.UserID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if lists == nil {
		lists = []model.WordList{}
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

func (s *Server) postWordList(c *gin.Context) {
	caller := identity(c)
	if caller == nil {
		errorJSON(c, http.StatusUnauthorized, "Sign in required")
		return
	}
	if !caller.Premium() {
		errorJSON(c, http.StatusForbidden, "Premium required")
		return
	}
	var req wordListRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		errorJSON(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	created, err := s.store.CreateWordList(c.Request.Context(), model.WordList{
		UserID:   caller.UserID,
		Name:     strings.TrimSpace(req.Name),
		Words:    req.Words,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		s.logger.Error("create word list", "user_id", caller.UserID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": created})
}

// customWords loads the words of list id for the caller. Private lists are
// visible to their owner only. ok is false once a response has been written.
func (s *Server) customWords(c *gin.Context, id string) ([]string, bool) {
	l, err := s.store.WordList(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "Word list not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("load word list", "id", id, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	caller := identity(c)
	if !l.IsPublic && (caller == nil || caller.UserID != l.UserID) {
		errorJSON(c, http.StatusNotFound, "Word list not found")
		return nil, false
	}
	return wordlist.ParseText(l.Words), true
}
