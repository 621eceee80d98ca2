package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stories-platform-api/config"
	"stories-platform-api/models"
	"stories-platform-api/services"
)

func logAccountAction(c *gin.Context, userID int, action, description string) {
	desc := description
	agent := c.Request.UserAgent()
	entry := models.AuditLog{
		UserID:      userID,
		Action:      action,
		EntityType:  "user",
		EntityID:    &userID,
		Description: &desc,
		IPAddress:   c.ClientIP(),
		UserAgent:   &agent,
		CreatedAt:   time.Now(),
	}
	config.DB.Create(&entry)
}

// ExportAccountData returns everything the platform stores about the
// caller as a single JSON document.
func ExportAccountData(c *gin.Context) {
	userID, _ := currentUserID(c)

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var submissions []models.Submission
	config.DB.Preload("History").
		Where("author_id = ? AND deleted_at IS NULL", userID).
		Order("created_at ASC").
		Find(&submissions)

	var comments []models.Comment
	config.DB.Where("author_id = ?", userID).Order("created_at ASC").Find(&comments)

	var notifications []models.Notification
	config.DB.Where("user_id = ?", userID).Order("create_at ASC").Find(&notifications)

	var memberships []models.ClassMember
	config.DB.Preload("Class").Where("user_id = ?", userID).Find(&memberships)

	var achievements []models.UserAchievement
	config.DB.Where("user_id = ?", userID).Order("awarded_at ASC").Find(&achievements)

	var uploads []models.MediaFile
	config.DB.Where("uploaded_by = ? AND delete_at IS NULL", userID).Find(&uploads)

	exportID := uuid.New().String()
	logAccountAction(c, user.UserID, "account_data_export", fmt.Sprintf("export %s", exportID))

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=account-data-%d-%s.json", user.UserID, time.Now().Format("2006-01-02")))
	c.JSON(http.StatusOK, gin.H{
		"export_id":     exportID,
		"exported_at":   time.Now(),
		"account":       user,
		"submissions":   submissions,
		"comments":      comments,
		"notifications": notifications,
		"classes":       memberships,
		"achievements":  achievements,
		"uploads":       uploads,
	})
}

type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
	Reason   string `json:"reason" binding:"omitempty,max=500"`
}

// DeleteAccount starts the 30-day recovery window. The account is hidden
// immediately; logging back in before the window ends recovers it, the
// purge job removes it afterwards.
func DeleteAccount(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if !CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Password is incorrect"})
		return
	}

	if err := services.MarkAccountDeleted(config.DB, userID, req.Reason, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	logAccountAction(c, userID, "account_delete_requested", "deletion scheduled, 30 day recovery window")

	services.SendMailSafe(
		[]string{user.Email},
		"Your account has been scheduled for deletion",
		"<p>Your account will be permanently removed in 30 days. Log in again before then to recover it.</p>",
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account scheduled for deletion; log in within 30 days to recover it",
	})
}
