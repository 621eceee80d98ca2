package models

import "time"

// Notification is an in-app message row. Workflow transitions write exactly
// one per transition inside the same transaction; services write others
// (class events, achievements, account events) outside it.
type Notification struct {
	NotificationID      uint       `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID              uint       `gorm:"column:user_id" json:"user_id"`
	Title               string     `gorm:"column:title" json:"title"`
	Message             string     `gorm:"column:message" json:"message"`
	Type                string     `gorm:"column:type" json:"type"` // info|success|warning|error
	RelatedSubmissionID *uint      `gorm:"column:related_submission_id" json:"related_submission_id,omitempty"`
	IsRead              bool       `gorm:"column:is_read" json:"is_read"`
	ReadAt              *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreateAt            time.Time  `gorm:"column:create_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
