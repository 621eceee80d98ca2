package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stories-platform-api/models"
)

// Typed engine errors. Controllers map these onto HTTP status codes:
// 404, 403, 400, 400.
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrForbidden          = errors.New("role not authorized for this action")
	ErrInvalidTransition  = errors.New("action not allowed in current status")
	ErrInvalidPayload     = errors.New("invalid transition payload")
)

// WorkflowAction names a row in the transition table.
type WorkflowAction string

const (
	ActionSubmit            WorkflowAction = "submit"
	ActionBeginReview       WorkflowAction = "begin_review"
	ActionApprove           WorkflowAction = "approve"
	ActionRequestRevision   WorkflowAction = "request_revision"
	ActionBeginFormatReview WorkflowAction = "begin_format_review"
	ActionFormatDecision    WorkflowAction = "format_decision"
	ActionReject            WorkflowAction = "reject"
	ActionResubmit          WorkflowAction = "resubmit"
	ActionWithdraw          WorkflowAction = "withdraw"
	ActionReopen            WorkflowAction = "reopen"
)

// Actor is the acting user, passed explicitly on every call. The engine
// never reads ambient session state.
type Actor struct {
	ID   int
	Role models.Role
}

// RevisionTarget says who a request_revision sends the submission back to.
// The zero value is not valid; use the constructors.
type RevisionTarget struct {
	role models.Role
	set  bool
}

func RevisionTargetWriter() RevisionTarget {
	return RevisionTarget{role: models.RoleWriter, set: true}
}

// RevisionTargetReviewer targets a reviewer stage. Only STORY_MANAGER is a
// legal reviewer target (format review can bounce back to story review).
func RevisionTargetReviewer(role models.Role) (RevisionTarget, error) {
	if role != models.RoleStoryManager {
		return RevisionTarget{}, fmt.Errorf("%w: %q is not a valid revision target", ErrInvalidPayload, role)
	}
	return RevisionTarget{role: role, set: true}, nil
}

func (t RevisionTarget) IsWriter() bool    { return t.set && t.role == models.RoleWriter }
func (t RevisionTarget) Role() models.Role { return t.role }
func (t RevisionTarget) Valid() bool       { return t.set }

// TransitionPayload carries the optional per-action data.
type TransitionPayload struct {
	Comment        string
	Decision       *models.BookDecision // format_decision only
	RevisionTarget *RevisionTarget      // request_revision only
}

// TransitionResult reports what a successful transition did.
type TransitionResult struct {
	SubmissionID   int
	From           models.SubmissionStatus
	To             models.SubmissionStatus
	NotifiedUserID int
	Notification   models.Notification
}

type transitionRule struct {
	target models.SubmissionStatus
	roles  []models.Role
	// authorOnly additionally requires actor.ID == submission.AuthorID.
	authorOnly bool
	// revisionTargets lists legal RevisionTarget roles for request_revision.
	revisionTargets []models.Role
}

func (r transitionRule) roleAllowed(role models.Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var authorRoles = []models.Role{models.RoleWriter, models.RoleTeacher}

// transitionTable is the sole definition of which (status, action) pairs
// are legal, who may perform them, and where they lead.
var transitionTable = map[models.SubmissionStatus]map[WorkflowAction]transitionRule{
	models.StatusDraft: {
		ActionSubmit: {target: models.StatusPending, roles: authorRoles, authorOnly: true},
	},
	models.StatusPending: {
		ActionBeginReview: {target: models.StatusStoryReview, roles: []models.Role{models.RoleStoryManager}},
	},
	models.StatusStoryReview: {
		ActionApprove: {target: models.StatusStoryApproved, roles: []models.Role{models.RoleStoryManager}},
		ActionRequestRevision: {
			target:          models.StatusNeedsRevision,
			roles:           []models.Role{models.RoleStoryManager},
			revisionTargets: []models.Role{models.RoleWriter},
		},
	},
	models.StatusStoryApproved: {
		ActionBeginFormatReview: {target: models.StatusFormatReview, roles: []models.Role{models.RoleBookManager}},
	},
	models.StatusFormatReview: {
		ActionFormatDecision: {target: models.StatusContentReview, roles: []models.Role{models.RoleBookManager}},
		ActionRequestRevision: {
			target:          models.StatusNeedsRevision,
			roles:           []models.Role{models.RoleBookManager},
			revisionTargets: []models.Role{models.RoleWriter, models.RoleStoryManager},
		},
	},
	models.StatusContentReview: {
		ActionApprove: {target: models.StatusPublished, roles: []models.Role{models.RoleContentAdmin}},
		ActionReject:  {target: models.StatusRejected, roles: []models.Role{models.RoleContentAdmin}},
	},
	models.StatusNeedsRevision: {
		// Resubmit always restarts the pipeline from PENDING. Whether it
		// should instead resume at the stage that requested revision is an
		// open product question; restart is the current behavior.
		ActionResubmit: {target: models.StatusPending, roles: authorRoles, authorOnly: true},
	},
	models.StatusPublished: {
		ActionReopen: {target: models.StatusNeedsRevision, roles: []models.Role{models.RoleContentAdmin}},
	},
	models.StatusRejected: {
		ActionReopen: {target: models.StatusNeedsRevision, roles: []models.Role{models.RoleContentAdmin}},
	},
}

func init() {
	// Withdraw is legal from every non-terminal status.
	withdraw := transitionRule{target: models.StatusRejected, roles: authorRoles, authorOnly: true}
	for _, status := range []models.SubmissionStatus{
		models.StatusDraft,
		models.StatusPending,
		models.StatusStoryReview,
		models.StatusStoryApproved,
		models.StatusFormatReview,
		models.StatusContentReview,
		models.StatusNeedsRevision,
	} {
		transitionTable[status][ActionWithdraw] = withdraw
	}
}

// reviewerRoleForStage maps a status onto the role responsible for acting
// on it, used to address notifications for author-initiated actions.
var reviewerRoleForStage = map[models.SubmissionStatus]models.Role{
	models.StatusDraft:         models.RoleStoryManager,
	models.StatusPending:       models.RoleStoryManager,
	models.StatusStoryReview:   models.RoleStoryManager,
	models.StatusStoryApproved: models.RoleBookManager,
	models.StatusFormatReview:  models.RoleBookManager,
	models.StatusContentReview: models.RoleContentAdmin,
	models.StatusNeedsRevision: models.RoleStoryManager,
}

// ApplyTransition validates and applies a single workflow action. Status
// write, history entry, notification row and audit entry commit in one
// transaction or not at all. Email mirroring happens outside the engine,
// after commit, best effort.
func ApplyTransition(store WorkflowStore, submissionID int, actor Actor, action WorkflowAction, payload TransitionPayload) (*TransitionResult, error) {
	if _, ok := models.ParseRole(string(actor.Role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrForbidden, actor.Role)
	}

	var result *TransitionResult
	err := store.InTransaction(func(tx WorkflowTx) error {
		sub, err := tx.GetSubmissionForUpdate(submissionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrSubmissionNotFound
		}

		rule, ok := transitionTable[sub.Status][action]
		if !ok {
			return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, sub.Status)
		}
		if !rule.roleAllowed(actor.Role) {
			return fmt.Errorf("%w: %s may not %s", ErrForbidden, actor.Role, action)
		}
		if rule.authorOnly && actor.ID != sub.AuthorID {
			return fmt.Errorf("%w: only the author may %s", ErrForbidden, action)
		}
		if err := validatePayload(action, rule, payload); err != nil {
			return err
		}

		now := time.Now()
		from := sub.Status
		sub.Status = rule.target
		sub.UpdatedAt = &now
		switch action {
		case ActionSubmit, ActionResubmit:
			sub.SubmittedAt = &now
		case ActionFormatDecision:
			sub.BookDecision = payload.Decision
		}
		if rule.target == models.StatusPublished {
			sub.PublishedAt = &now
		}

		if err := tx.UpdateSubmissionStatus(sub); err != nil {
			return fmt.Errorf("update submission: %w", err)
		}

		history := models.WorkflowHistory{
			SubmissionID: sub.SubmissionID,
			FromStatus:   from,
			ToStatus:     rule.target,
			Action:       string(action),
			PerformedBy:  actor.ID,
			CreatedAt:    now,
		}
		if payload.Comment != "" {
			comment := payload.Comment
			history.Comment = &comment
		}
		if err := tx.AppendHistory(&history); err != nil {
			return fmt.Errorf("append history: %w", err)
		}

		recipient, err := resolveRecipient(tx, sub, actor, rule)
		if err != nil {
			return fmt.Errorf("resolve notification recipient: %w", err)
		}

		submissionRef := uint(sub.SubmissionID)
		notification := models.Notification{
			UserID:              uint(recipient),
			Title:               notificationTitle(action, sub),
			Message:             notificationMessage(action, sub, payload),
			Type:                notificationType(rule.target),
			RelatedSubmissionID: &submissionRef,
			CreateAt:            now,
		}
		if err := tx.CreateNotification(&notification); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		audit := buildAudit(actor, sub, action, from, rule.target, payload)
		if err := tx.LogAudit(&audit); err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}

		result = &TransitionResult{
			SubmissionID:   sub.SubmissionID,
			From:           from,
			To:             rule.target,
			NotifiedUserID: recipient,
			Notification:   notification,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validatePayload(action WorkflowAction, rule transitionRule, payload TransitionPayload) error {
	switch action {
	case ActionFormatDecision:
		if payload.Decision == nil {
			return fmt.Errorf("%w: format_decision requires a decision", ErrInvalidPayload)
		}
		if _, ok := models.ParseBookDecision(string(*payload.Decision)); !ok {
			return fmt.Errorf("%w: unknown decision %q", ErrInvalidPayload, *payload.Decision)
		}
	case ActionRequestRevision:
		target := payload.RevisionTarget
		if target == nil || !target.Valid() {
			return fmt.Errorf("%w: request_revision requires a target", ErrInvalidPayload)
		}
		allowed := false
		for _, role := range rule.revisionTargets {
			if target.Role() == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: %q is not a valid revision target here", ErrInvalidPayload, target.Role())
		}
	}
	return nil
}

// resolveRecipient picks the single counterpart party: reviewer-initiated
// actions notify the author; author-initiated actions notify the assigned
// reviewer, falling back to any user holding the stage's reviewer role,
// and finally to the author themselves (confirmation) when no reviewer
// exists yet.
func resolveRecipient(tx WorkflowTx, sub *models.Submission, actor Actor, rule transitionRule) (int, error) {
	if !rule.authorOnly {
		return sub.AuthorID, nil
	}
	if sub.AssignedReviewerID != nil {
		return *sub.AssignedReviewerID, nil
	}
	stageRole, ok := reviewerRoleForStage[rule.target]
	if !ok {
		stageRole = models.RoleStoryManager
	}
	reviewerID, found, err := tx.ReviewerForRole(stageRole)
	if err != nil {
		return 0, err
	}
	if found {
		return reviewerID, nil
	}
	return sub.AuthorID, nil
}

func notificationTitle(action WorkflowAction, sub *models.Submission) string {
	switch action {
	case ActionSubmit:
		return "New story submitted"
	case ActionBeginReview:
		return "Your story is under review"
	case ActionApprove:
		if sub.Status == models.StatusPublished {
			return "Your story has been published"
		}
		return "Your story passed review"
	case ActionRequestRevision:
		return "Revision requested"
	case ActionBeginFormatReview:
		return "Your story entered format review"
	case ActionFormatDecision:
		return "Format decided for your story"
	case ActionReject:
		return "Your story was not accepted"
	case ActionResubmit:
		return "Story resubmitted"
	case ActionWithdraw:
		return "Story withdrawn"
	case ActionReopen:
		return "Your story was reopened for revision"
	}
	return "Story update"
}

func notificationMessage(action WorkflowAction, sub *models.Submission, payload TransitionPayload) string {
	data := map[string]string{
		"number": sub.SubmissionNumber,
		"title":  sub.Title,
	}
	msg := applyTemplatePlaceholders("Submission {{number}} ({{title}}): ", data) + string(action)
	if payload.Comment != "" {
		msg += ". Comment: " + payload.Comment
	}
	return msg
}

func notificationType(target models.SubmissionStatus) string {
	switch target {
	case models.StatusPublished:
		return "success"
	case models.StatusRejected:
		return "error"
	case models.StatusNeedsRevision:
		return "warning"
	}
	return "info"
}

func buildAudit(actor Actor, sub *models.Submission, action WorkflowAction, from, to models.SubmissionStatus, payload TransitionPayload) models.AuditLog {
	values := map[string]interface{}{
		"action":      string(action),
		"from_status": string(from),
		"to_status":   string(to),
	}
	if payload.Comment != "" {
		values["comment"] = payload.Comment
	}
	if payload.Decision != nil {
		values["decision"] = string(*payload.Decision)
	}
	serialized, _ := json.Marshal(values)
	raw := string(serialized)
	description := fmt.Sprintf("workflow %s: %s -> %s", action, from, to)
	entityID := sub.SubmissionID
	number := sub.SubmissionNumber

	return models.AuditLog{
		UserID:       actor.ID,
		Action:       "workflow_transition",
		EntityType:   "submission",
		EntityID:     &entityID,
		EntityNumber: &number,
		NewValues:    &raw,
		Description:  &description,
	}
}

// AllowedActions returns the actions the actor could attempt from the
// submission's current status, for UI affordances.
func AllowedActions(status models.SubmissionStatus, actor Actor, authorID int) []WorkflowAction {
	var actions []WorkflowAction
	for action, rule := range transitionTable[status] {
		if !rule.roleAllowed(actor.Role) {
			continue
		}
		if rule.authorOnly && actor.ID != authorID {
			continue
		}
		actions = append(actions, action)
	}
	return actions
}
