package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"stories-platform-api/models"
)

// achievementTitles feed the notification shown when an award lands.
var achievementTitles = map[string]string{
	models.AchievementFirstSubmission: "First story submitted",
	models.AchievementFirstPublished:  "First story published",
	models.AchievementFivePublished:   "Five stories published",
	models.AchievementClassJoined:     "Joined a classroom",
}

// AwardAchievement records an achievement once per user. Duplicate awards
// are silently skipped via the (user_id, code) unique index.
func AwardAchievement(db *gorm.DB, userID int, code string) error {
	var existing models.UserAchievement
	err := db.Where("user_id = ? AND code = ?", userID, code).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	award := models.UserAchievement{
		UserID:    userID,
		Code:      code,
		AwardedAt: time.Now(),
	}
	if err := db.Create(&award).Error; err != nil {
		return err
	}

	title, ok := achievementTitles[code]
	if !ok {
		title = "Achievement unlocked"
	}
	if err := NotifyUser(uint(userID), "Achievement unlocked", title, "success", nil); err != nil {
		log.Printf("achievement notification failed for user %d: %v", userID, err)
	}
	return nil
}

// CheckWorkflowAchievements awards milestone achievements after a
// successful workflow transition. Best effort: failures are logged,
// never propagated into the request.
func CheckWorkflowAchievements(db *gorm.DB, authorID int, to models.SubmissionStatus) {
	if to == models.StatusPending {
		if err := AwardAchievement(db, authorID, models.AchievementFirstSubmission); err != nil {
			log.Printf("award first_submission failed for user %d: %v", authorID, err)
		}
		return
	}
	if to != models.StatusPublished {
		return
	}

	var published int64
	if err := db.Model(&models.Submission{}).
		Where("author_id = ? AND status = ? AND deleted_at IS NULL", authorID, models.StatusPublished).
		Count(&published).Error; err != nil {
		log.Printf("count published stories failed for user %d: %v", authorID, err)
		return
	}

	if published >= 1 {
		if err := AwardAchievement(db, authorID, models.AchievementFirstPublished); err != nil {
			log.Printf("award first_published failed for user %d: %v", authorID, err)
		}
	}
	if published >= 5 {
		if err := AwardAchievement(db, authorID, models.AchievementFivePublished); err != nil {
			log.Printf("award five_published failed for user %d: %v", authorID, err)
		}
	}
}
