package httpserver

import (
	"context"
	"errors"
	"net/http"

	"menubasket/internal/domain"
	branchrepo "menubasket/internal/repository/branch"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const (
	branchCtxKey  ctxKey = "branch"
	sessionCtxKey ctxKey = "sessionID"
)

const sessionHeader = "X-Session-ID"

// branchMiddleware resolves :branchKey to a branch and stores it in the
// request context. Unknown keys end the request with 404.
func branchMiddleware(repo branchrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("branchKey")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "branch key required"})
			return
		}
		branch, err := repo.GetByKey(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "branch not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), branchCtxKey, branch)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// sessionMiddleware reads the caller's session id from the X-Session-ID
// header, minting a fresh one when absent, and always echoes it back so
// clients can persist it.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		c.Header(sessionHeader, sessionID)
		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, sessionID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func branchFromContext(c *gin.Context) *domain.Branch {
	branch, _ := c.Request.Context().Value(branchCtxKey).(*domain.Branch)
	return branch
}

func sessionFromContext(c *gin.Context) string {
	sessionID, _ := c.Request.Context().Value(sessionCtxKey).(string)
	return sessionID
}
