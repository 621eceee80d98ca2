package models

import "time"

type CommentStatus string

const (
	CommentOpen     CommentStatus = "OPEN"
	CommentResolved CommentStatus = "RESOLVED"
	CommentArchived CommentStatus = "ARCHIVED"
)

// Comment is a review note anchored to a text range in the submission
// content. Offsets are rune offsets into the content at creation time.
type Comment struct {
	CommentID       int           `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	SubmissionID    int           `gorm:"column:submission_id" json:"submission_id"`
	AuthorID        int           `gorm:"column:author_id" json:"author_id"`
	Body            string        `gorm:"column:body" json:"body"`
	StartOffset     int           `gorm:"column:start_offset" json:"start_offset"`
	EndOffset       int           `gorm:"column:end_offset" json:"end_offset"`
	HighlightedText string        `gorm:"column:highlighted_text" json:"highlighted_text"`
	Status          CommentStatus `gorm:"column:status" json:"status"`
	ResolvedBy      *int          `gorm:"column:resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time    `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       *time.Time    `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}
