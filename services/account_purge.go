package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"stories-platform-api/models"
)

// RecoveryWindow is how long a soft-deleted account can still be recovered
// by logging back in before the purge job removes it for good.
const RecoveryWindow = 30 * 24 * time.Hour

// StartPurgeScheduler runs PurgeExpiredAccounts daily. Returns the cron
// runner so main can stop it on shutdown.
func StartPurgeScheduler(db *gorm.DB) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("@daily", func() {
		if err := PurgeExpiredAccounts(db, time.Now()); err != nil {
			log.Printf("account purge run failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("failed to schedule account purge: %v", err)
		return c
	}
	c.Start()
	log.Println("Account purge scheduler started (daily)")
	return c
}

// PurgeExpiredAccounts hard-deletes accounts whose recovery window has
// passed. Published submissions survive with the author reference
// anonymized; everything else belonging to the user is removed.
func PurgeExpiredAccounts(db *gorm.DB, now time.Time) error {
	var users []models.User
	if err := db.Where("delete_at IS NOT NULL AND purge_after IS NOT NULL AND purge_after <= ?", now).
		Find(&users).Error; err != nil {
		return err
	}

	for _, user := range users {
		if err := purgeAccount(db, user); err != nil {
			log.Printf("purge of user %d failed: %v", user.UserID, err)
			continue
		}
		log.Printf("purged account %d (deleted %v)", user.UserID, user.DeleteAt)
	}
	return nil
}

func purgeAccount(db *gorm.DB, user models.User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Published stories stay available in the library and shop; the
		// author link is blanked instead of cascading the delete.
		if err := tx.Model(&models.Submission{}).
			Where("author_id = ? AND status = ?", user.UserID, models.StatusPublished).
			Update("author_id", 0).Error; err != nil {
			return err
		}

		if err := tx.Where("author_id = ? AND status != ?", user.UserID, models.StatusPublished).
			Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", user.UserID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.UserID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.UserID).Delete(&models.ClassMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.UserID).Delete(&models.UserAchievement{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.UserID).Delete(&models.User{}).Error
	})
}

// MarkAccountDeleted starts the recovery window for a user.
func MarkAccountDeleted(db *gorm.DB, userID int, reason string, now time.Time) error {
	purgeAfter := now.Add(RecoveryWindow)
	updates := map[string]interface{}{
		"delete_at":   now,
		"purge_after": purgeAfter,
	}
	if reason != "" {
		updates["deleted_reason"] = reason
	}
	return db.Model(&models.User{}).
		Where("user_id = ? AND delete_at IS NULL", userID).
		Updates(updates).Error
}

// RecoverAccount clears the deletion markers if the user is still inside
// the recovery window. Returns false when the window has already passed.
func RecoverAccount(db *gorm.DB, user *models.User, now time.Time) (bool, error) {
	if user.DeleteAt == nil {
		return true, nil
	}
	if user.PurgeAfter != nil && now.After(*user.PurgeAfter) {
		return false, nil
	}
	err := db.Model(&models.User{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]interface{}{
			"delete_at":      nil,
			"purge_after":    nil,
			"deleted_reason": nil,
		}).Error
	if err != nil {
		return false, err
	}
	user.DeleteAt = nil
	user.PurgeAfter = nil
	return true, nil
}
