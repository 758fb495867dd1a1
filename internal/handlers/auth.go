package handlers

import (
	"net/http"

	"remindme/internal/auth"
	"remindme/internal/database"
	"remindme/internal/models"

	"github.com/gin-gonic/gin"
)

// LoginHandler redirects to Google OAuth login
func LoginHandler(c *gin.Context) {
	url, err := auth.GetLoginURL(c)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate login URL", err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallbackHandler processes the OAuth callback from Google
func GoogleCallbackHandler(c *gin.Context) {
	auth.HandleGoogleCallback(c)
}

// LogoutHandler handles user logout
func LogoutHandler(c *gin.Context) {
	auth.LogoutHandler(c)
}

// GetCurrentUser returns the logged-in user's account, or a marker that
// the profile still needs to be completed
func GetCurrentUser(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusOK, gin.H{
			"profile_complete": false,
			"email":            c.GetString("email"),
		})
		return
	}

	db := database.GetDB()
	var account models.Account
	if err := db.Where("username = ?", username).First(&account).Error; err != nil {
		handleError(c, http.StatusNotFound, "Account not found", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile_complete": true,
		"account":          account,
	})
}
