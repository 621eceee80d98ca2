package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stories-platform-api/models"
)

// fakeWorkflowStore keeps everything in memory and emulates transactional
// rollback by snapshotting state before each InTransaction call.
type fakeWorkflowStore struct {
	submissions   map[int]*models.Submission
	reviewers     map[models.Role]int
	history       []models.WorkflowHistory
	notifications []models.Notification
	audits        []models.AuditLog

	failNotification bool
	failHistory      bool
}

func newFakeStore(subs ...*models.Submission) *fakeWorkflowStore {
	store := &fakeWorkflowStore{
		submissions: make(map[int]*models.Submission),
		reviewers:   make(map[models.Role]int),
	}
	for _, sub := range subs {
		copied := *sub
		store.submissions[sub.SubmissionID] = &copied
	}
	return store
}

func (s *fakeWorkflowStore) InTransaction(fn func(tx WorkflowTx) error) error {
	snapshot := s.clone()
	if err := fn(&fakeWorkflowTx{store: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *fakeWorkflowStore) clone() *fakeWorkflowStore {
	copied := &fakeWorkflowStore{
		submissions:   make(map[int]*models.Submission, len(s.submissions)),
		reviewers:     s.reviewers,
		history:       append([]models.WorkflowHistory(nil), s.history...),
		notifications: append([]models.Notification(nil), s.notifications...),
		audits:        append([]models.AuditLog(nil), s.audits...),
	}
	for id, sub := range s.submissions {
		dup := *sub
		copied.submissions[id] = &dup
	}
	return copied
}

func (s *fakeWorkflowStore) restore(snapshot *fakeWorkflowStore) {
	s.submissions = snapshot.submissions
	s.history = snapshot.history
	s.notifications = snapshot.notifications
	s.audits = snapshot.audits
}

type fakeWorkflowTx struct {
	store *fakeWorkflowStore
}

func (t *fakeWorkflowTx) GetSubmissionForUpdate(id int) (*models.Submission, error) {
	sub, ok := t.store.submissions[id]
	if !ok {
		return nil, nil
	}
	dup := *sub
	return &dup, nil
}

func (t *fakeWorkflowTx) UpdateSubmissionStatus(sub *models.Submission) error {
	dup := *sub
	t.store.submissions[sub.SubmissionID] = &dup
	return nil
}

func (t *fakeWorkflowTx) AppendHistory(h *models.WorkflowHistory) error {
	if t.store.failHistory {
		return errors.New("history insert failed")
	}
	t.store.history = append(t.store.history, *h)
	return nil
}

func (t *fakeWorkflowTx) CreateNotification(n *models.Notification) error {
	if t.store.failNotification {
		return errors.New("notification insert failed")
	}
	t.store.notifications = append(t.store.notifications, *n)
	return nil
}

func (t *fakeWorkflowTx) LogAudit(a *models.AuditLog) error {
	t.store.audits = append(t.store.audits, *a)
	return nil
}

func (t *fakeWorkflowTx) ReviewerForRole(role models.Role) (int, bool, error) {
	id, ok := t.store.reviewers[role]
	return id, ok, nil
}

const (
	authorID       = 10
	storyManagerID = 20
	bookManagerID  = 30
	contentAdminID = 40
)

func draftSubmission(status models.SubmissionStatus) *models.Submission {
	return &models.Submission{
		SubmissionID:     1,
		SubmissionNumber: "ST-2026-0001",
		AuthorID:         authorID,
		Title:            "The River and the Lantern",
		Content:          "Once upon a time...",
		Status:           status,
	}
}

func author() Actor       { return Actor{ID: authorID, Role: models.RoleWriter} }
func storyManager() Actor { return Actor{ID: storyManagerID, Role: models.RoleStoryManager} }
func bookManager() Actor  { return Actor{ID: bookManagerID, Role: models.RoleBookManager} }
func contentAdmin() Actor { return Actor{ID: contentAdminID, Role: models.RoleContentAdmin} }

func TestSubmitDraft(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusDraft))
	store.reviewers[models.RoleStoryManager] = storyManagerID

	result, err := ApplyTransition(store, 1, author(), ActionSubmit, TransitionPayload{})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, store.submissions[1].Status)
	require.Len(t, store.history, 1)
	assert.Equal(t, models.StatusDraft, store.history[0].FromStatus)
	assert.Equal(t, models.StatusPending, store.history[0].ToStatus)
	assert.Equal(t, authorID, store.history[0].PerformedBy)
	require.Len(t, store.notifications, 1)
	assert.Equal(t, uint(storyManagerID), store.notifications[0].UserID)
	assert.Equal(t, storyManagerID, result.NotifiedUserID)
	assert.NotNil(t, store.submissions[1].SubmittedAt)
}

func TestRequestRevisionNotifiesAuthor(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusStoryReview))
	target := RevisionTargetWriter()

	_, err := ApplyTransition(store, 1, storyManager(), ActionRequestRevision, TransitionPayload{
		Comment:        "Please tighten the opening paragraph.",
		RevisionTarget: &target,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusNeedsRevision, store.submissions[1].Status)
	require.Len(t, store.notifications, 1)
	assert.Equal(t, uint(authorID), store.notifications[0].UserID)
	require.Len(t, store.history, 1)
	require.NotNil(t, store.history[0].Comment)
	assert.Equal(t, "Please tighten the opening paragraph.", *store.history[0].Comment)
}

func TestWriterCannotApproveContentReview(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusContentReview))

	_, err := ApplyTransition(store, 1, author(), ActionApprove, TransitionPayload{})
	require.ErrorIs(t, err, ErrForbidden)

	assert.Equal(t, models.StatusContentReview, store.submissions[1].Status)
	assert.Empty(t, store.history)
	assert.Empty(t, store.notifications)
}

func TestSubmitPublishedIsInvalid(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusPublished))

	_, err := ApplyTransition(store, 1, author(), ActionSubmit, TransitionPayload{})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.StatusPublished, store.submissions[1].Status)
}

func TestReplayedActionFailsSecondTime(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusStoryReview))

	_, err := ApplyTransition(store, 1, storyManager(), ActionApprove, TransitionPayload{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusStoryApproved, store.submissions[1].Status)

	_, err = ApplyTransition(store, 1, storyManager(), ActionApprove, TransitionPayload{})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, store.history, 1)
	assert.Len(t, store.notifications, 1)
}

func TestUnknownSubmission(t *testing.T) {
	store := newFakeStore()

	_, err := ApplyTransition(store, 99, author(), ActionSubmit, TransitionPayload{})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestUndefinedPairsAreRejected(t *testing.T) {
	statuses := []models.SubmissionStatus{
		models.StatusDraft, models.StatusPending, models.StatusStoryReview,
		models.StatusStoryApproved, models.StatusFormatReview, models.StatusContentReview,
		models.StatusNeedsRevision, models.StatusPublished, models.StatusRejected,
	}
	actions := []WorkflowAction{
		ActionSubmit, ActionBeginReview, ActionApprove, ActionRequestRevision,
		ActionBeginFormatReview, ActionFormatDecision, ActionReject,
		ActionResubmit, ActionWithdraw, ActionReopen,
	}
	admin := Actor{ID: 999, Role: models.RoleAdmin}

	for _, status := range statuses {
		for _, action := range actions {
			if _, defined := transitionTable[status][action]; defined {
				continue
			}
			store := newFakeStore(draftSubmission(status))
			_, err := ApplyTransition(store, 1, admin, action, TransitionPayload{})
			require.ErrorIs(t, err, ErrInvalidTransition, "status=%s action=%s", status, action)
			assert.Equal(t, status, store.submissions[1].Status)
			assert.Empty(t, store.history)
		}
	}
}

func TestFormatDecisionSetsBookDecision(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusFormatReview))
	decision := models.DecisionBook

	_, err := ApplyTransition(store, 1, bookManager(), ActionFormatDecision, TransitionPayload{
		Decision: &decision,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusContentReview, store.submissions[1].Status)
	require.NotNil(t, store.submissions[1].BookDecision)
	assert.Equal(t, models.DecisionBook, *store.submissions[1].BookDecision)
}

func TestFormatDecisionRequiresDecision(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusFormatReview))

	_, err := ApplyTransition(store, 1, bookManager(), ActionFormatDecision, TransitionPayload{})
	require.ErrorIs(t, err, ErrInvalidPayload)
	assert.Equal(t, models.StatusFormatReview, store.submissions[1].Status)
}

func TestRequestRevisionTargetValidation(t *testing.T) {
	// Story review may only target the writer.
	store := newFakeStore(draftSubmission(models.StatusStoryReview))
	target, err := RevisionTargetReviewer(models.RoleStoryManager)
	require.NoError(t, err)

	_, err = ApplyTransition(store, 1, storyManager(), ActionRequestRevision, TransitionPayload{
		RevisionTarget: &target,
	})
	require.ErrorIs(t, err, ErrInvalidPayload)

	// Format review may bounce back to the story manager.
	store = newFakeStore(draftSubmission(models.StatusFormatReview))
	_, err = ApplyTransition(store, 1, bookManager(), ActionRequestRevision, TransitionPayload{
		RevisionTarget: &target,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNeedsRevision, store.submissions[1].Status)
}

func TestRevisionTargetRejectsIllegalRole(t *testing.T) {
	_, err := RevisionTargetReviewer(models.RoleContentAdmin)
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestContentReviewPublishAndReject(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusContentReview))
	_, err := ApplyTransition(store, 1, contentAdmin(), ActionApprove, TransitionPayload{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, store.submissions[1].Status)
	assert.NotNil(t, store.submissions[1].PublishedAt)
	assert.Equal(t, "success", store.notifications[0].Type)

	store = newFakeStore(draftSubmission(models.StatusContentReview))
	_, err = ApplyTransition(store, 1, contentAdmin(), ActionReject, TransitionPayload{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, store.submissions[1].Status)
	assert.Equal(t, "error", store.notifications[0].Type)
}

func TestWithdrawByAuthorOnly(t *testing.T) {
	for _, status := range []models.SubmissionStatus{
		models.StatusDraft, models.StatusPending, models.StatusStoryReview,
		models.StatusStoryApproved, models.StatusFormatReview,
		models.StatusContentReview, models.StatusNeedsRevision,
	} {
		store := newFakeStore(draftSubmission(status))
		_, err := ApplyTransition(store, 1, author(), ActionWithdraw, TransitionPayload{})
		require.NoError(t, err, "withdraw from %s", status)
		assert.Equal(t, models.StatusRejected, store.submissions[1].Status)
	}

	store := newFakeStore(draftSubmission(models.StatusPending))
	other := Actor{ID: 77, Role: models.RoleWriter}
	_, err := ApplyTransition(store, 1, other, ActionWithdraw, TransitionPayload{})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestResubmitRestartsPipeline(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusNeedsRevision))
	store.reviewers[models.RoleStoryManager] = storyManagerID

	_, err := ApplyTransition(store, 1, author(), ActionResubmit, TransitionPayload{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, store.submissions[1].Status)
	assert.Equal(t, uint(storyManagerID), store.notifications[0].UserID)
}

func TestReopenTerminalStates(t *testing.T) {
	for _, status := range []models.SubmissionStatus{models.StatusPublished, models.StatusRejected} {
		store := newFakeStore(draftSubmission(status))
		_, err := ApplyTransition(store, 1, contentAdmin(), ActionReopen, TransitionPayload{})
		require.NoError(t, err)
		assert.Equal(t, models.StatusNeedsRevision, store.submissions[1].Status)
	}
}

func TestNotificationFailureRollsBackEverything(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusDraft))
	store.reviewers[models.RoleStoryManager] = storyManagerID
	store.failNotification = true

	_, err := ApplyTransition(store, 1, author(), ActionSubmit, TransitionPayload{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, models.StatusDraft, store.submissions[1].Status)
	assert.Empty(t, store.history)
	assert.Empty(t, store.notifications)
	assert.Empty(t, store.audits)
}

func TestHistoryFailureRollsBackStatus(t *testing.T) {
	store := newFakeStore(draftSubmission(models.StatusPending))
	store.failHistory = true

	_, err := ApplyTransition(store, 1, storyManager(), ActionBeginReview, TransitionPayload{})
	require.Error(t, err)
	assert.Equal(t, models.StatusPending, store.submissions[1].Status)
	assert.Empty(t, store.notifications)
}

func TestAssignedReviewerGetsAuthorInitiatedNotifications(t *testing.T) {
	sub := draftSubmission(models.StatusDraft)
	reviewer := 55
	sub.AssignedReviewerID = &reviewer
	store := newFakeStore(sub)

	result, err := ApplyTransition(store, 1, author(), ActionSubmit, TransitionPayload{})
	require.NoError(t, err)
	assert.Equal(t, reviewer, result.NotifiedUserID)
}

func TestAllowedActions(t *testing.T) {
	actions := AllowedActions(models.StatusDraft, author(), authorID)
	assert.ElementsMatch(t, []WorkflowAction{ActionSubmit, ActionWithdraw}, actions)

	// A different writer gets nothing on someone else's draft.
	actions = AllowedActions(models.StatusDraft, Actor{ID: 2, Role: models.RoleWriter}, authorID)
	assert.Empty(t, actions)

	actions = AllowedActions(models.StatusContentReview, contentAdmin(), authorID)
	assert.ElementsMatch(t, []WorkflowAction{ActionApprove, ActionReject}, actions)
}
