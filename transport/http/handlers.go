package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talaria-id/talaria/core"
	"github.com/talaria-id/talaria/service"
)

// AuthHandlers contains HTTP handlers for the QR login flow
type AuthHandlers struct {
	authService *service.AuthService
	sessions    *SessionBridge
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, sessions *SessionBridge) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		sessions:    sessions,
	}
}

// Challenge issues a new challenge, binds its state to the caller's session
// and returns the scan request URI for QR rendering.
func (h *AuthHandlers) Challenge(c *gin.Context) {
	request, state, err := h.authService.Issue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	if err := h.sessions.SetPendingState(c.Writer, c.Request, state); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qr":    request.URI(),
		"state": state,
	})
}

// Callback receives the wallet's signed assertion. Any verification or
// freshness failure is a bare 401; nothing about the record leaks back.
func (h *AuthHandlers) Callback(c *gin.Context) {
	var req struct {
		Data string `form:"Data" json:"Data" binding:"required"`
		Sign string `form:"Sign" json:"Sign" binding:"required"`
	}

	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if err := h.authService.HandleCallback(c.Request.Context(), req.Data, req.Sign); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	c.Status(http.StatusOK)
}

// Poll is the browser-side poll. Not-yet-verified and unknown states share
// one response body on purpose.
func (h *AuthHandlers) Poll(c *gin.Context) {
	state := h.sessions.PendingState(c.Request)
	if state == "" {
		c.JSON(http.StatusNotFound, false)
		return
	}

	result, err := h.authService.Poll(c.Request.Context(), state)
	if err != nil {
		// Only the merged not-found/not-yet-verified surface is a 404; a
		// backend failure must not read as "keep polling"
		if errors.Is(err, core.ErrChallengeNotFound) || errors.Is(err, core.ErrNoPendingChallenge) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Token not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	if err := h.sessions.SetResolvedChallenge(c.Writer, c.Request, result.Challenge); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect": result.Redirect})
}

// Login completes the flow for a known identity: consumes the session
// snapshot, deletes the record and hands out session tokens.
func (h *AuthHandlers) Login(c *gin.Context) {
	challenge, err := h.sessions.ResolvedChallenge(c.Request)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/auth/challenge")
		return
	}

	accessToken, refreshToken, err := h.authService.CompleteLogin(c.Request.Context(), challenge)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if err := h.sessions.Clear(c.Writer, c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Register completes the flow for an unknown identity: creates the account
// from asserted attributes, then behaves like Login.
func (h *AuthHandlers) Register(c *gin.Context) {
	challenge, err := h.sessions.ResolvedChallenge(c.Request)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/auth/challenge")
		return
	}

	accessToken, refreshToken, err := h.authService.CompleteRegister(c.Request.Context(), challenge)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if err := h.sessions.Clear(c.Writer, c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Refresh rotates a refresh token into a new access/refresh pair.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	accessToken, refreshToken, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Me returns the identity of the authenticated caller
func (h *AuthHandlers) Me(c *gin.Context) {
	did, exists := c.Get("did")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"did": did})
}
