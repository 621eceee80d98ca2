// controllers/submission.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"stories-platform-api/config"
	"stories-platform-api/models"
	"stories-platform-api/utils"
)

// ===================== SUBMISSION MANAGEMENT =====================

// GetSubmissions returns the caller's submissions; reviewer roles see the
// whole pipeline, optionally filtered by status.
func GetSubmissions(c *gin.Context) {
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	status := c.Query("status")

	var submissions []models.Submission
	query := config.DB.Preload("Author").
		Where("deleted_at IS NULL")

	if !role.IsReviewer() {
		query = query.Where("author_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmission returns a specific submission with its workflow history.
func GetSubmission(c *gin.Context) {
	submissionID := c.Param("id")
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var submission models.Submission
	query := config.DB.Preload("Author").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("History.Performer")

	if !role.IsReviewer() {
		query = query.Where("author_id = ?", userID)
	}

	if err := query.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

type SubmissionRequest struct {
	Title    string  `json:"title" binding:"required,max=255"`
	Summary  *string `json:"summary" binding:"omitempty,max=1000"`
	Content  string  `json:"content" binding:"required"`
	Language *string `json:"language" binding:"omitempty,max=10"`
}

// CreateSubmission creates a new draft owned by the caller.
func CreateSubmission(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Language != nil && !utils.ValidLanguage(*req.Language) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid language tag"})
		return
	}

	submission := models.Submission{
		SubmissionNumber: generateSubmissionNumber(),
		AuthorID:         userID,
		Title:            utils.SanitizeInput(req.Title),
		Summary:          req.Summary,
		Content:          req.Content,
		Language:         req.Language,
		Status:           models.StatusDraft,
		CreatedAt:        time.Now(),
	}

	if err := config.DB.Create(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// UpdateSubmission lets the author edit title/content while the submission
// is in an editable status. Status itself never changes here.
func UpdateSubmission(c *gin.Context) {
	submissionID := c.Param("id")
	userID, _ := currentUserID(c)

	var req SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	if submission.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit a submission"})
		return
	}
	if !submission.Status.Editable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission can only be edited in DRAFT or NEEDS_REVISION"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"title":      utils.SanitizeInput(req.Title),
		"content":    req.Content,
		"updated_at": now,
	}
	if req.Summary != nil {
		updates["summary"] = *req.Summary
	}
	if req.Language != nil {
		if !utils.ValidLanguage(*req.Language) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid language tag"})
			return
		}
		updates["language"] = *req.Language
	}

	if err := config.DB.Model(&submission).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission updated"})
}

// DeleteSubmission soft-deletes a draft. Submissions already in review are
// withdrawn through the workflow instead.
func DeleteSubmission(c *gin.Context) {
	submissionID := c.Param("id")
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	if submission.AuthorID != userID && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete a submission"})
		return
	}
	if submission.Status != models.StatusDraft {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only drafts can be deleted; withdraw instead"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&submission).Update("deleted_at", now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission deleted"})
}

// AssignReviewer sets the reviewer currently responsible for a submission.
func AssignReviewer(c *gin.Context) {
	submissionID := c.Param("id")

	var req struct {
		ReviewerID int `json:"reviewer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reviewer models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", req.ReviewerID).First(&reviewer).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reviewer not found"})
		return
	}
	if !reviewer.Role.IsReviewer() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a reviewer"})
		return
	}

	result := config.DB.Model(&models.Submission{}).
		Where("submission_id = ? AND deleted_at IS NULL", submissionID).
		Update("assigned_reviewer_id", req.ReviewerID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign reviewer"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Reviewer assigned"})
}

// generateSubmissionNumber builds ST-<year>-<seq> from a per-year counter.
func generateSubmissionNumber() string {
	year := time.Now().Year()
	prefix := fmt.Sprintf("ST-%d-", year)

	var last models.Submission
	seq := 1
	err := config.DB.Where("submission_number LIKE ?", prefix+"%").
		Order("submission_id DESC").
		First(&last).Error
	if err == nil {
		if n, convErr := strconv.Atoi(last.SubmissionNumber[len(prefix):]); convErr == nil {
			seq = n + 1
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		// fall through with seq=1; uniqueness is not load-bearing for drafts
		seq = 1
	}

	return fmt.Sprintf("%s%04d", prefix, seq)
}
