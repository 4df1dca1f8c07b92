package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pointplay-backend/internal/models"
	"pointplay-backend/internal/services"
)

type GameHandler struct {
	sessions *services.SessionManager
}

func NewGameHandler(sessions *services.SessionManager) *GameHandler {
	return &GameHandler{sessions: sessions}
}

func (h *GameHandler) SelectCoinSide(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}

	var req models.CoinChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	side, err := session.SelectSide(req.Side)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"selected_side": side})
}

func (h *GameHandler) PlayCoinFlip(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}

	var req models.CoinFlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := session.PlayCoinFlip(c.Request.Context(), req.Bet.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *GameHandler) PlayDiceRoll(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}

	var req models.DiceRollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := session.PlayDiceRoll(c.Request.Context(), req.Bet.String(), req.Number.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *GameHandler) ClaimBonus(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}

	result, err := session.ClaimBonus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bonus":   result,
	})
}

func (h *GameHandler) Reset(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}

	result, err := session.Reset(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reset":   result,
	})
}

func (h *GameHandler) GetFairness(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}

	data, ok := session.Fairness()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Fairness data unavailable for this session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (h *GameHandler) VerifyDraw(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := services.VerifyDraw(req.ServerSeed, req.ClientSeed, req.Nonce)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Verification failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"verification": result,
	})
}
