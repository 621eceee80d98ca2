// controllers/workflow.go — HTTP surface of the submission workflow engine.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stories-platform-api/config"
	"stories-platform-api/models"
	"stories-platform-api/services"
)

type WorkflowRequest struct {
	Comment    string `json:"comment" binding:"omitempty,max=2000"`
	Decision   string `json:"decision" binding:"omitempty,oneof=TEXT BOOK COLLECTION"`
	TargetRole string `json:"target_role" binding:"omitempty,oneof=WRITER STORY_MANAGER"`
}

// Named per-action handlers, mirroring the route layout.
func SubmitSubmission(c *gin.Context)   { applyWorkflowAction(c, services.ActionSubmit) }
func BeginReview(c *gin.Context)        { applyWorkflowAction(c, services.ActionBeginReview) }
func ApproveSubmission(c *gin.Context)  { applyWorkflowAction(c, services.ActionApprove) }
func RequestRevision(c *gin.Context)    { applyWorkflowAction(c, services.ActionRequestRevision) }
func BeginFormatReview(c *gin.Context)  { applyWorkflowAction(c, services.ActionBeginFormatReview) }
func FormatDecision(c *gin.Context)     { applyWorkflowAction(c, services.ActionFormatDecision) }
func RejectSubmission(c *gin.Context)   { applyWorkflowAction(c, services.ActionReject) }
func ResubmitSubmission(c *gin.Context) { applyWorkflowAction(c, services.ActionResubmit) }
func WithdrawSubmission(c *gin.Context) { applyWorkflowAction(c, services.ActionWithdraw) }
func ReopenSubmission(c *gin.Context)   { applyWorkflowAction(c, services.ActionReopen) }

func applyWorkflowAction(c *gin.Context, action services.WorkflowAction) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req WorkflowRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	payload, err := buildPayload(action, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := services.NewWorkflowStore(config.DB)
	result, err := services.ApplyTransition(store, submissionID, actor, action, payload)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	// Email mirror of the in-app notification, after commit, best effort.
	go mirrorNotificationEmail(result)

	services.CheckWorkflowAchievements(config.DB, authorOf(result.SubmissionID), result.To)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"from_status": result.From,
		"to_status":   result.To,
	})
}

func buildPayload(action services.WorkflowAction, req WorkflowRequest) (services.TransitionPayload, error) {
	payload := services.TransitionPayload{Comment: req.Comment}

	if action == services.ActionFormatDecision && req.Decision != "" {
		decision, ok := models.ParseBookDecision(req.Decision)
		if !ok {
			return payload, errors.New("decision must be TEXT, BOOK or COLLECTION")
		}
		payload.Decision = &decision
	}

	if action == services.ActionRequestRevision {
		var target services.RevisionTarget
		switch req.TargetRole {
		case "", string(models.RoleWriter):
			target = services.RevisionTargetWriter()
		default:
			role, ok := models.ParseRole(req.TargetRole)
			if !ok {
				return payload, errors.New("invalid target_role")
			}
			var err error
			target, err = services.RevisionTargetReviewer(role)
			if err != nil {
				return payload, err
			}
		}
		payload.RevisionTarget = &target
	}

	return payload, nil
}

func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to perform this action"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "This submission is no longer in a state that allows this action"})
	case errors.Is(err, services.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply workflow action"})
	}
}

func mirrorNotificationEmail(result *services.TransitionResult) {
	var recipient models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", result.NotifiedUserID).First(&recipient).Error; err != nil {
		return
	}
	if recipient.Email == "" {
		return
	}
	services.SendMailSafe(
		[]string{recipient.Email},
		result.Notification.Title,
		"<p>"+result.Notification.Message+"</p>",
	)
}

func authorOf(submissionID int) int {
	var submission models.Submission
	if err := config.DB.Select("author_id").
		Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		return 0
	}
	return submission.AuthorID
}

// GetWorkflowHistory returns the append-only transition trail.
func GetWorkflowHistory(c *gin.Context) {
	submissionID := c.Param("id")
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var submission models.Submission
	query := config.DB.Where("submission_id = ? AND deleted_at IS NULL", submissionID)
	if !role.IsReviewer() {
		query = query.Where("author_id = ?", userID)
	}
	if err := query.First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	var history []models.WorkflowHistory
	if err := config.DB.Preload("Performer").
		Where("submission_id = ?", submission.SubmissionID).
		Order("created_at ASC").
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
		"total":   len(history),
	})
}

// GetAllowedActions tells the UI which workflow buttons to show.
func GetAllowedActions(c *gin.Context) {
	submissionID := c.Param("id")

	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	actions := services.AllowedActions(submission.Status, actor, submission.AuthorID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  submission.Status,
		"actions": actions,
	})
}
