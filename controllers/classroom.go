package controllers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"stories-platform-api/config"
	"stories-platform-api/models"
	"stories-platform-api/services"
	"stories-platform-api/utils"
)

// joinLimiter throttles join-code guesses. Lazily built so tests and
// redis-less deployments don't need it.
var joinLimiter *services.FixedWindowLimiter

func joinRateLimiter() *services.FixedWindowLimiter {
	if joinLimiter != nil {
		return joinLimiter
	}
	if config.Redis == nil {
		return nil
	}
	limit := 5
	if v := os.Getenv("CLASS_JOIN_RATE_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	limiter, err := services.NewFixedWindowLimiter(config.Redis, "stories:class-join", limit, time.Minute)
	if err != nil {
		return nil
	}
	joinLimiter = limiter
	return joinLimiter
}

type ClassRequest struct {
	ClassName   string  `json:"class_name" binding:"required,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// CreateClass creates a classroom with a fresh join code. Teachers only.
func CreateClass(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := generateJoinCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate join code"})
		return
	}

	class := models.Class{
		ClassName:   utils.SanitizeInput(req.ClassName),
		Description: req.Description,
		TeacherID:   userID,
		JoinCode:    code,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	if err := config.DB.Create(&class).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create class"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "class": class})
}

// GetClasses lists classes the caller teaches or attends.
func GetClasses(c *gin.Context) {
	userID, _ := currentUserID(c)
	role, _ := currentRole(c)

	var classes []models.Class
	query := config.DB.Preload("Teacher").Where("deleted_at IS NULL")

	if role == models.RoleTeacher || role == models.RoleAdmin {
		query = query.Where("teacher_id = ?", userID)
	} else {
		query = query.Joins("JOIN class_members ON class_members.class_id = classes.class_id").
			Where("class_members.user_id = ?", userID)
	}

	if err := query.Order("classes.created_at DESC").Find(&classes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch classes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "classes": classes, "total": len(classes)})
}

// GetClassRoster returns class members; the owning teacher only.
func GetClassRoster(c *gin.Context) {
	classID := c.Param("id")
	userID, _ := currentUserID(c)

	var class models.Class
	if err := config.DB.Where("class_id = ? AND deleted_at IS NULL", classID).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}
	if class.TeacherID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the class teacher can view the roster"})
		return
	}

	var members []models.ClassMember
	if err := config.DB.Preload("User").
		Where("class_id = ?", class.ClassID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roster"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "members": members, "total": len(members)})
}

type JoinClassRequest struct {
	JoinCode string `json:"join_code" binding:"required,min=6,max=10"`
}

// JoinClass adds the caller to the class matching the join code. Attempts
// are rate limited per user+IP so codes cannot be brute forced.
func JoinClass(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req JoinClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if limiter := joinRateLimiter(); limiter != nil {
		key := fmt.Sprintf("%d:%s", userID, c.ClientIP())
		if !limiter.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many join attempts, try again later"})
			return
		}
	}

	var class models.Class
	if err := config.DB.Where("join_code = ? AND is_active = 1 AND deleted_at IS NULL", req.JoinCode).
		First(&class).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No class with that code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up class"})
		return
	}

	var existing models.ClassMember
	if err := config.DB.Where("class_id = ? AND user_id = ?", class.ClassID, userID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already a member of this class"})
		return
	}

	member := models.ClassMember{
		ClassID:  class.ClassID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	if err := config.DB.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join class"})
		return
	}

	// Best effort side effects; joining already succeeded.
	if err := services.AwardAchievement(config.DB, userID, models.AchievementClassJoined); err != nil {
		log.Printf("class_joined achievement failed for user %d: %v", userID, err)
	}
	if err := services.NotifyUser(uint(class.TeacherID), "New class member",
		fmt.Sprintf("A student joined %s", class.ClassName), "info", nil); err != nil {
		log.Printf("join notification failed for class %d: %v", class.ClassID, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "class": class})
}

// RemoveClassMember kicks a member; the owning teacher only.
func RemoveClassMember(c *gin.Context) {
	classID := c.Param("id")
	memberUserID := c.Param("user_id")
	userID, _ := currentUserID(c)

	var class models.Class
	if err := config.DB.Where("class_id = ? AND deleted_at IS NULL", classID).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}
	if class.TeacherID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the class teacher can remove members"})
		return
	}

	result := config.DB.Where("class_id = ? AND user_id = ?", class.ClassID, memberUserID).
		Delete(&models.ClassMember{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Member removed"})
}

// RegenerateJoinCode invalidates the current code, e.g. after it leaked.
func RegenerateJoinCode(c *gin.Context) {
	classID := c.Param("id")
	userID, _ := currentUserID(c)

	var class models.Class
	if err := config.DB.Where("class_id = ? AND deleted_at IS NULL", classID).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}
	if class.TeacherID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the class teacher can regenerate the code"})
		return
	}

	code, err := generateJoinCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate join code"})
		return
	}

	if err := config.DB.Model(&class).Update("join_code", code).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update join code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "join_code": code})
}

// generateJoinCode returns an 8-char code from an unambiguous alphabet
// (no 0/O/1/I).
func generateJoinCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
