package handlers

import (
	"fmt"
	"log"
	"net/http"

	"remindme/internal/auth"
	"remindme/internal/database"
	"remindme/internal/models"

	"github.com/gin-gonic/gin"
)

// CompleteProfile finishes account setup for a freshly logged-in user
func CompleteProfile(c *gin.Context) {
	var request models.CompleteProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error: Invalid input: %s", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid input: %s", err.Error())})
		return
	}

	if c.GetString("username") != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Profile already completed"})
		return
	}

	googleID := c.GetString("sub")
	if googleID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	db := database.GetDB()

	var taken models.Account
	if err := db.Where("username = ?", request.Username).First(&taken).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	}

	account := models.Account{
		Username:       request.Username,
		GoogleID:       googleID,
		Email:          c.GetString("email"),
		WhatsAppNumber: request.WhatsAppNumber,
	}

	if err := db.Create(&account).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	// Attach the username to the live session so subsequent requests see it
	if err := auth.LinkSessionToUser(c.GetString("session_id"), account.Username); err != nil {
		log.Printf("Warning: Failed to link session to %s: %v", account.Username, err)
	}

	c.JSON(http.StatusCreated, account)
}

// GetAccount returns the authenticated user's account
func GetAccount(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	db := database.GetDB()
	var account models.Account
	if err := db.Where("username = ?", username).First(&account).Error; err != nil {
		handleError(c, http.StatusNotFound, "Account not found", err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateAccount updates notification settings on the account
func UpdateAccount(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var request models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error: Invalid input: %s", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid input: %s", err.Error())})
		return
	}

	db := database.GetDB()
	var account models.Account
	if err := db.Where("username = ?", username).First(&account).Error; err != nil {
		handleError(c, http.StatusNotFound, "Account not found", err)
		return
	}

	if request.WhatsAppNumber != nil {
		account.WhatsAppNumber = *request.WhatsAppNumber
	}
	if request.WebhookURL != nil {
		account.WebhookURL = *request.WebhookURL
	}
	if request.AlertEmails != nil {
		account.AlertEmails = *request.AlertEmails
	}

	if err := db.Save(&account).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update account", err)
		return
	}

	c.JSON(http.StatusOK, account)
}
