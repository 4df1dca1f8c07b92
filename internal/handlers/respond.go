package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pointplay-backend/internal/logger"
	"pointplay-backend/internal/middleware"
	"pointplay-backend/internal/models"
	"pointplay-backend/internal/services"
)

// currentSession resolves the session named by the auth middleware. It
// writes the error response itself when the session is gone.
func currentSession(c *gin.Context, sessions *services.SessionManager) (*services.Session, bool) {
	sessionID := c.GetString(middleware.ContextSessionID)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session not found"})
		return nil, false
	}

	session, err := sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired or invalid"})
		return nil, false
	}
	return session, true
}

// respondError maps rejections to 400 with the user facing message and
// everything else to 500.
func respondError(c *gin.Context, err error) {
	if rej, ok := models.AsRejection(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   rej.Message,
			"kind":    rej.KindName(),
			"surface": rej.Surface,
		})
		return
	}
	if errors.Is(err, models.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"kind":  "validation",
		})
		return
	}

	logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}
