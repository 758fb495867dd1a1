package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"remindme/internal/database"
	"remindme/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateReminder handles the creation of a new reminder
func CreateReminder(c *gin.Context) {
	var request models.CreateReminderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error: Invalid input: %s", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid input: %s", err.Error())})
		return
	}

	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	repeat := request.Repeat
	if repeat == "" {
		repeat = models.RepeatOnce
	}
	if repeat == models.RepeatWeekly && len(request.Weekdays) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Weekly reminders need at least one weekday"})
		return
	}
	if repeat.IsRecurring() && request.AnchorTime == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recurring reminders need an anchor time (HH:MM)"})
		return
	}

	reminder := models.Reminder{
		OwnerID:          username,
		Title:            request.Title,
		Body:             request.Body,
		NotificationText: request.NotificationText,
		NextTriggerAt:    request.NextTriggerAt,
		Repeat:           repeat,
		AnchorTime:       request.AnchorTime,
		Weekdays:         models.WeekdaySet(request.Weekdays),
	}

	db := database.GetDB()
	if err := db.Create(&reminder).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create reminder", err)
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// ListReminders lists the authenticated user's reminders
func ListReminders(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	db := database.GetDB()
	query := db.Where("owner_id = ?", username)

	if completed := c.Query("completed"); completed != "" {
		query = query.Where("completed = ?", completed == "true")
	}

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	var reminders []models.Reminder
	if err := query.
		Order("next_trigger_at asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reminders).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list reminders", err)
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// GetReminder returns one of the authenticated user's reminders
func GetReminder(c *gin.Context) {
	reminder, ok := ownedReminder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// UpdateReminder applies a partial edit to a reminder
func UpdateReminder(c *gin.Context) {
	reminder, ok := ownedReminder(c)
	if !ok {
		return
	}

	var request models.UpdateReminderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error: Invalid input: %s", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid input: %s", err.Error())})
		return
	}

	if request.Title != nil {
		reminder.Title = *request.Title
	}
	if request.Body != nil {
		reminder.Body = *request.Body
	}
	if request.NotificationText != nil {
		reminder.NotificationText = *request.NotificationText
	}
	if request.NextTriggerAt != nil {
		reminder.NextTriggerAt = *request.NextTriggerAt
		// An explicit reschedule starts a fresh occurrence
		reminder.LastNotifiedAt = nil
	}
	if request.Repeat != nil {
		reminder.Repeat = *request.Repeat
	}
	if request.AnchorTime != nil {
		reminder.AnchorTime = *request.AnchorTime
	}
	if request.Weekdays != nil {
		reminder.Weekdays = models.WeekdaySet(request.Weekdays)
	}
	if request.Completed != nil {
		reminder.Completed = *request.Completed
	}

	if reminder.Repeat == models.RepeatWeekly && len(reminder.Weekdays) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Weekly reminders need at least one weekday"})
		return
	}

	db := database.GetDB()
	if err := db.Save(&reminder).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update reminder", err)
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// DeleteReminder removes one of the authenticated user's reminders
func DeleteReminder(c *gin.Context) {
	reminder, ok := ownedReminder(c)
	if !ok {
		return
	}

	db := database.GetDB()
	if err := db.Delete(&reminder).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete reminder", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListDeliveries returns the delivery history of one reminder
func ListDeliveries(c *gin.Context) {
	reminder, ok := ownedReminder(c)
	if !ok {
		return
	}

	db := database.GetDB()
	var records []models.DeliveryRecord
	if err := db.
		Where("reminder_id = ?", reminder.ID).
		Order("attempted_at desc").
		Limit(100).
		Find(&records).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list deliveries", err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// ownedReminder loads the reminder in the path and checks ownership
func ownedReminder(c *gin.Context) (models.Reminder, bool) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return models.Reminder{}, false
	}

	db := database.GetDB()
	var reminder models.Reminder
	if err := db.Where("id = ? AND owner_id = ?", c.Param("id"), username).First(&reminder).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return models.Reminder{}, false
	}

	return reminder, true
}
