package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stories-platform-api/config"
	"stories-platform-api/models"
)

type CommentRequest struct {
	Body            string `json:"body" binding:"required,max=2000"`
	StartOffset     int    `json:"start_offset" binding:"min=0"`
	EndOffset       int    `json:"end_offset" binding:"min=0"`
	HighlightedText string `json:"highlighted_text" binding:"max=500"`
}

// CreateComment attaches a review comment to a text range. Reviewer roles
// only; the submission author reads them but does not create them.
func CreateComment(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	userID, _ := currentUserID(c)
	role, _ := currentRole(c)
	if !role.IsReviewer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only reviewers can comment"})
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.EndOffset < req.StartOffset {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_offset must not be before start_offset"})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	comment := models.Comment{
		SubmissionID:    submission.SubmissionID,
		AuthorID:        userID,
		Body:            req.Body,
		StartOffset:     req.StartOffset,
		EndOffset:       req.EndOffset,
		HighlightedText: req.HighlightedText,
		Status:          models.CommentOpen,
		CreatedAt:       time.Now(),
	}
	if err := config.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "comment": comment})
}

// GetComments lists a submission's comments. The author and reviewers see
// them; other users do not.
func GetComments(c *gin.Context) {
	submissionID := c.Param("id")
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	if submission.AuthorID != userID && !role.IsReviewer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No access to this submission's comments"})
		return
	}

	status := c.Query("status")
	query := config.DB.Preload("Author").Where("submission_id = ?", submission.SubmissionID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var comments []models.Comment
	if err := query.Order("start_offset ASC, created_at ASC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "comments": comments, "total": len(comments)})
}

// ResolveComment marks a comment resolved; reviewers and the submission
// author may resolve.
func ResolveComment(c *gin.Context) {
	updateCommentStatus(c, models.CommentResolved)
}

// ReopenComment puts a resolved comment back to OPEN.
func ReopenComment(c *gin.Context) {
	updateCommentStatus(c, models.CommentOpen)
}

// ArchiveComment hides a comment from the default view without deleting it.
func ArchiveComment(c *gin.Context) {
	updateCommentStatus(c, models.CommentArchived)
}

func updateCommentStatus(c *gin.Context, target models.CommentStatus) {
	commentID := c.Param("comment_id")
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var comment models.Comment
	if err := config.DB.First(&comment, "comment_id = ?", commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", comment.SubmissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	if !role.IsReviewer() && submission.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to change this comment"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     target,
		"updated_at": now,
	}
	if target == models.CommentResolved {
		updates["resolved_by"] = userID
		updates["resolved_at"] = now
	} else {
		updates["resolved_by"] = nil
		updates["resolved_at"] = nil
	}

	if err := config.DB.Model(&comment).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": target})
}

// DeleteComment hard-deletes a comment; only its author or an admin may.
func DeleteComment(c *gin.Context) {
	commentID := c.Param("comment_id")
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var comment models.Comment
	if err := config.DB.First(&comment, "comment_id = ?", commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID != userID && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the comment author or an admin can delete"})
		return
	}

	if err := config.DB.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
}
