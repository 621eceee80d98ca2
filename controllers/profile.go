package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stories-platform-api/config"
	"stories-platform-api/models"
	"stories-platform-api/utils"
)

// GetDashboard returns the profile header: story counts per status plus
// earned achievements.
func GetDashboard(c *gin.Context) {
	userID, _ := currentUserID(c)

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	type statusCount struct {
		Status models.SubmissionStatus `json:"status"`
		Count  int64                   `json:"count"`
	}
	var counts []statusCount
	if err := config.DB.Model(&models.Submission{}).
		Select("status, COUNT(*) as count").
		Where("author_id = ? AND deleted_at IS NULL", userID).
		Group("status").
		Scan(&counts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	var total int64
	for _, sc := range counts {
		total += sc.Count
	}

	var achievements []models.UserAchievement
	if err := config.DB.Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&achievements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch achievements"})
		return
	}

	var classes int64
	config.DB.Model(&models.ClassMember{}).Where("user_id = ?", userID).Count(&classes)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": gin.H{
			"user_id":      user.UserID,
			"display_name": user.DisplayName(),
			"role":         user.Role,
			"bio":          user.Bio,
			"avatar_file":  user.AvatarFileID,
			"member_since": user.CreateAt,
		},
		"stats": gin.H{
			"total_submissions": total,
			"by_status":         counts,
			"classes_joined":    classes,
		},
		"achievements": achievements,
	})
}

type ProfileUpdateRequest struct {
	UserFname    *string `json:"user_fname" binding:"omitempty,max=100"`
	UserLname    *string `json:"user_lname" binding:"omitempty,max=100"`
	Bio          *string `json:"bio" binding:"omitempty,max=1000"`
	AvatarFileID *int    `json:"avatar_file_id"`
}

// UpdateProfile edits the caller's own display fields. Email and role are
// not editable here.
func UpdateProfile(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{"update_at": time.Now()}
	if req.UserFname != nil {
		updates["user_fname"] = utils.SanitizeInput(*req.UserFname)
	}
	if req.UserLname != nil {
		updates["user_lname"] = utils.SanitizeInput(*req.UserLname)
	}
	if req.Bio != nil {
		updates["bio"] = utils.SanitizeInput(*req.Bio)
	}
	if req.AvatarFileID != nil {
		var media models.MediaFile
		if err := config.DB.Where("file_id = ? AND delete_at IS NULL", *req.AvatarFileID).
			First(&media).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file not found"})
			return
		}
		if !media.IsValidImageType() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar must be an image"})
			return
		}
		updates["avatar_file_id"] = *req.AvatarFileID
	}

	if err := config.DB.Model(&models.User{}).
		Where("user_id = ? AND delete_at IS NULL", userID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated"})
}

// GetPublicProfile shows another user's published stories and public bio.
func GetPublicProfile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var published []models.Submission
	if err := config.DB.Select("submission_id, submission_number, title, summary, language, published_at").
		Where("author_id = ? AND status = ? AND deleted_at IS NULL", user.UserID, models.StatusPublished).
		Order("published_at DESC").
		Find(&published).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": gin.H{
			"user_id":      user.UserID,
			"display_name": user.DisplayName(),
			"bio":          user.Bio,
			"avatar_file":  user.AvatarFileID,
		},
		"published_stories": published,
	})
}
