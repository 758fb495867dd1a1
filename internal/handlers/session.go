package handlers

import (
	"net/http"

	"remindme/internal/services"

	"github.com/gin-gonic/gin"
)

// SessionHandler exposes the WhatsApp session lifecycle to the UI
type SessionHandler struct {
	manager *services.SessionManager
}

func NewSessionHandler(manager *services.SessionManager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// Start begins connecting the user's WhatsApp session. Returns the
// status row immediately; the UI polls Status while the user scans the
// pairing code.
func (h *SessionHandler) Start(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	session, err := h.manager.StartSession(username)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to start session", err)
		return
	}

	c.JSON(http.StatusAccepted, session)
}

// Stop closes the user's live session without unlinking the account
func (h *SessionHandler) Stop(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	found, err := h.manager.StopSession(username)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to stop session", err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"stopped": false, "message": "no active session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stopped": true})
}

// Logout unlinks the user's WhatsApp account entirely
func (h *SessionHandler) Logout(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if err := h.manager.Logout(username); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to log out session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

// Status is the UI polling read path for session state, including the
// pairing code while the session is code_pending
func (h *SessionHandler) Status(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	session, err := h.manager.GetStatus(username)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to read session status", err)
		return
	}

	c.JSON(http.StatusOK, session)
}
