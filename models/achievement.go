package models

import "time"

// Achievement codes awarded by services.Achievements.
const (
	AchievementFirstSubmission = "first_submission"
	AchievementFirstPublished  = "first_published"
	AchievementFivePublished   = "five_published"
	AchievementClassJoined     = "class_joined"
)

// UserAchievement records a single award. (user_id, code) is unique, so
// re-awarding is a no-op at the database level.
type UserAchievement struct {
	AchievementID int       `gorm:"primaryKey;column:achievement_id" json:"achievement_id"`
	UserID        int       `gorm:"column:user_id;uniqueIndex:uq_user_achievement" json:"user_id"`
	Code          string    `gorm:"column:code;uniqueIndex:uq_user_achievement" json:"code"`
	AwardedAt     time.Time `gorm:"column:awarded_at" json:"awarded_at"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
