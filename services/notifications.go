package services

import (
	"log"
	"strings"
	"time"

	"stories-platform-api/config"
	"stories-platform-api/models"
)

func applyTemplatePlaceholders(text string, data map[string]string) string {
	result := text
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// NotifyUser writes an in-app notification row outside the workflow engine
// (class events, account events).
func NotifyUser(userID uint, title, message, notifType string, submissionID *uint) error {
	n := models.Notification{
		UserID:              userID,
		Title:               title,
		Message:             message,
		Type:                notifType,
		RelatedSubmissionID: submissionID,
		CreateAt:            time.Now(),
	}
	return config.DB.Create(&n).Error
}

// SendMailSafe mirrors a notification over email without letting mail
// failures propagate. Runs in its own goroutine.
func SendMailSafe(to []string, subject, html string) {
	if len(to) == 0 {
		return
	}
	go func() {
		if err := config.SendMail(to, subject, html); err != nil {
			log.Printf("mail send failed (subject=%q): %v", subject, err)
		}
	}()
}
