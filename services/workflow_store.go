package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stories-platform-api/models"
)

// WorkflowStore is the persistence boundary of the workflow engine. The
// production implementation wraps gorm; tests supply an in-memory fake.
type WorkflowStore interface {
	// InTransaction runs fn atomically. Any error rolls everything back.
	InTransaction(fn func(tx WorkflowTx) error) error
}

// WorkflowTx is the narrow set of writes a transition needs. All calls
// happen inside a single transaction.
type WorkflowTx interface {
	// GetSubmissionForUpdate loads and row-locks the submission so that two
	// concurrent transitions serialize; the loser sees the new status and
	// fails the table lookup. Returns (nil, nil) when the row is missing.
	GetSubmissionForUpdate(id int) (*models.Submission, error)
	UpdateSubmissionStatus(sub *models.Submission) error
	AppendHistory(h *models.WorkflowHistory) error
	CreateNotification(n *models.Notification) error
	LogAudit(a *models.AuditLog) error
	// ReviewerForRole picks a notification recipient holding the role.
	ReviewerForRole(role models.Role) (int, bool, error)
}

type gormWorkflowStore struct {
	db *gorm.DB
}

// NewWorkflowStore wraps a gorm handle as a WorkflowStore.
func NewWorkflowStore(db *gorm.DB) WorkflowStore {
	return &gormWorkflowStore{db: db}
}

func (s *gormWorkflowStore) InTransaction(fn func(tx WorkflowTx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormWorkflowTx{tx: tx})
	})
}

type gormWorkflowTx struct {
	tx *gorm.DB
}

func (t *gormWorkflowTx) GetSubmissionForUpdate(id int) (*models.Submission, error) {
	var sub models.Submission
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("submission_id = ? AND deleted_at IS NULL", id).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (t *gormWorkflowTx) UpdateSubmissionStatus(sub *models.Submission) error {
	updates := map[string]interface{}{
		"status":       sub.Status,
		"updated_at":   sub.UpdatedAt,
		"submitted_at": sub.SubmittedAt,
		"published_at": sub.PublishedAt,
	}
	if sub.BookDecision != nil {
		updates["book_decision"] = *sub.BookDecision
	}
	return t.tx.Model(&models.Submission{}).
		Where("submission_id = ?", sub.SubmissionID).
		Updates(updates).Error
}

func (t *gormWorkflowTx) AppendHistory(h *models.WorkflowHistory) error {
	return t.tx.Create(h).Error
}

func (t *gormWorkflowTx) CreateNotification(n *models.Notification) error {
	return t.tx.Create(n).Error
}

func (t *gormWorkflowTx) LogAudit(a *models.AuditLog) error {
	return t.tx.Create(a).Error
}

func (t *gormWorkflowTx) ReviewerForRole(role models.Role) (int, bool, error) {
	var user models.User
	err := t.tx.Where("role = ? AND delete_at IS NULL", role).
		Order("user_id ASC").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return user.UserID, true, nil
}
