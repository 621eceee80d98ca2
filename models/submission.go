package models

import "time"

// SubmissionStatus is the review pipeline status. Transitions go through
// services.ApplyTransition only; nothing else writes this column.
type SubmissionStatus string

const (
	StatusDraft         SubmissionStatus = "DRAFT"
	StatusPending       SubmissionStatus = "PENDING"
	StatusStoryReview   SubmissionStatus = "STORY_REVIEW"
	StatusStoryApproved SubmissionStatus = "STORY_APPROVED"
	StatusFormatReview  SubmissionStatus = "FORMAT_REVIEW"
	StatusContentReview SubmissionStatus = "CONTENT_REVIEW"
	StatusNeedsRevision SubmissionStatus = "NEEDS_REVISION"
	StatusPublished     SubmissionStatus = "PUBLISHED"
	StatusRejected      SubmissionStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed except an
// explicit reopen.
func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusPublished || s == StatusRejected
}

// Editable reports whether the author may still change title/content.
func (s SubmissionStatus) Editable() bool {
	return s == StatusDraft || s == StatusNeedsRevision
}

// BookDecision is set during FORMAT_REVIEW and drives shop conversion.
type BookDecision string

const (
	DecisionText       BookDecision = "TEXT"
	DecisionBook       BookDecision = "BOOK"
	DecisionCollection BookDecision = "COLLECTION"
)

func ParseBookDecision(s string) (BookDecision, bool) {
	switch BookDecision(s) {
	case DecisionText, DecisionBook, DecisionCollection:
		return BookDecision(s), true
	}
	return "", false
}

type Submission struct {
	SubmissionID       int              `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionNumber   string           `gorm:"column:submission_number" json:"submission_number"`
	AuthorID           int              `gorm:"column:author_id" json:"author_id"`
	Title              string           `gorm:"column:title" json:"title"`
	Summary            *string          `gorm:"column:summary" json:"summary,omitempty"`
	Content            string           `gorm:"column:content" json:"content"`
	Language           *string          `gorm:"column:language" json:"language,omitempty"`
	Status             SubmissionStatus `gorm:"column:status" json:"status"`
	BookDecision       *BookDecision    `gorm:"column:book_decision" json:"book_decision,omitempty"`
	AssignedReviewerID *int             `gorm:"column:assigned_reviewer_id" json:"assigned_reviewer_id,omitempty"`
	CoverFileID        *int             `gorm:"column:cover_file_id" json:"cover_file_id,omitempty"`
	SubmittedAt        *time.Time       `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	PublishedAt        *time.Time       `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt          time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          *time.Time       `gorm:"column:updated_at" json:"updated_at,omitempty"`
	DeletedAt          *time.Time       `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Author  *User              `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	History []WorkflowHistory  `gorm:"foreignKey:SubmissionID" json:"history,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// WorkflowHistory is the append-only audit trail of status transitions.
// Rows are written exactly once per successful transition and never
// updated or deleted.
type WorkflowHistory struct {
	HistoryID    int              `gorm:"primaryKey;column:history_id" json:"history_id"`
	SubmissionID int              `gorm:"column:submission_id" json:"submission_id"`
	FromStatus   SubmissionStatus `gorm:"column:from_status" json:"from_status"`
	ToStatus     SubmissionStatus `gorm:"column:to_status" json:"to_status"`
	Action       string           `gorm:"column:action" json:"action"`
	PerformedBy  int              `gorm:"column:performed_by" json:"performed_by"`
	Comment      *string          `gorm:"column:comment" json:"comment,omitempty"`
	CreatedAt    time.Time        `gorm:"column:created_at" json:"created_at"`

	Performer *User `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
}

func (WorkflowHistory) TableName() string {
	return "workflow_history"
}
