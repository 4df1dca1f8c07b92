package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pointplay-backend/internal/middleware"
	"pointplay-backend/internal/models"
	"pointplay-backend/internal/services"
)

type AuthHandler struct {
	sessions   *services.SessionManager
	jwtService *services.JWTService
}

func NewAuthHandler(sessions *services.SessionManager, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		sessions:   sessions,
		jwtService: jwtService,
	}
}

// StartSession is the equivalent of a page load: it opens a session for the
// given profile, or a fresh profile when none is supplied.
func (h *AuthHandler) StartSession(c *gin.Context) {
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	profileID := strings.TrimSpace(req.ProfileID)
	if profileID == "" {
		profileID = models.GenerateProfileID()
	}

	session, err := h.sessions.Start(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, err)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(profileID, session.ID())
	if err != nil {
		_ = h.sessions.End(session.ID())
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"session":    session.Snapshot(),
	})
}

type UserHandler struct {
	sessions *services.SessionManager
}

func NewUserHandler(sessions *services.SessionManager) *UserHandler {
	return &UserHandler{sessions: sessions}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.Snapshot()})
}

func (h *UserHandler) SetUsername(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}

	var req models.UsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	name, err := session.SetUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": name,
		"message":  "Username saved as \"" + name + "\".",
	})
}

func (h *UserHandler) GetActivity(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}

	activity := session.Activity()
	c.JSON(http.StatusOK, gin.H{
		"activity": activity,
		"count":    len(activity),
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	sessionID := c.GetString(middleware.ContextSessionID)
	if err := h.sessions.End(sessionID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired or invalid"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
