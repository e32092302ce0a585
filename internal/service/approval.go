package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/delivery"
	"github.com/internmatch/placement-engine/internal/store"
	"github.com/internmatch/placement-engine/internal/store/model"
	"github.com/internmatch/placement-engine/pkg/metrics"
	"go.uber.org/zap"
)

const (
	urgentDeadlineWindow = 3 * 24 * time.Hour
	highDeadlineWindow   = 7 * 24 * time.Hour
	highWaitingWindow    = 5 * 24 * time.Hour
	mediumWaitingWindow  = 2 * 24 * time.Hour
)

type ApprovalService struct {
	store    store.Store
	producer *delivery.Producer
	nowFn    func() time.Time
}

func NewApprovalService(store store.Store, producer *delivery.Producer) *ApprovalService {
	return &ApprovalService{store: store, producer: producer, nowFn: time.Now}
}

// WithClock overrides the service clock. Used by tests.
func (s *ApprovalService) WithClock(now func() time.Time) *ApprovalService {
	s.nowFn = now
	return s
}

type SubmitResult struct {
	RequestID      uuid.UUID      `json:"request_id"`
	ReviewerID     uuid.UUID      `json:"reviewer_id"`
	Priority       model.Priority `json:"priority"`
	ResponseWindow time.Duration  `json:"response_window"`
}

// Submit routes an application into mentor review: it computes the request
// priority, assigns the least-loaded eligible reviewer and advances the
// application to MENTOR_REVIEW. Reviewer selection and request creation share
// one transaction so two concurrent submissions cannot both pick the same
// least-loaded reviewer based on stale counts.
func (s *ApprovalService) Submit(ctx context.Context, applicationID uuid.UUID) (*SubmitResult, error) {
	now := s.nowFn()

	application, err := s.store.Application().Get(ctx, applicationID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrApplicationNotFound(applicationID)
		}
		return nil, err
	}

	existing, err := s.store.Approval().List(ctx, store.NewApprovalQueryFilter().ByApplicationID(applicationID), store.Unsorted)
	if err != nil {
		return nil, err
	}
	for _, request := range existing {
		if !request.Status.IsTerminal() {
			return nil, NewErrDuplicateSubmission(applicationID)
		}
	}

	if _, err := model.NextStatus(application.Status, model.ApplicationStatusMentorReview); err != nil {
		return nil, err
	}

	var deadline *time.Time
	if application.Opportunity != nil {
		deadline = application.Opportunity.Deadline
	}
	priority := computePriority(now, deadline, application.SubmittedAt)

	ctx, err = s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}

	group := ""
	if application.Candidate != nil {
		group = application.Candidate.EligibilityGroup
	}

	reviewer, err := s.pickLeastLoadedReviewer(ctx, group)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	request := model.ApprovalRequest{
		ID:            uuid.New(),
		ApplicationID: application.ID,
		CandidateID:   application.CandidateID,
		ReviewerID:    &reviewer.ID,
		Status:        model.ApprovalStatusPending,
		Priority:      priority,
		AutoAssigned:  true,
		SubmittedAt:   now,
	}

	created, err := s.store.Approval().Create(ctx, request)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	if _, err := s.store.Application().UpdateStatus(ctx, application.ID, model.ApplicationStatusMentorReview); err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.IncreaseApprovalRequestsMetric(string(priority))

	return &SubmitResult{
		RequestID:      created.ID,
		ReviewerID:     reviewer.ID,
		Priority:       priority,
		ResponseWindow: priority.ResponseWindow(),
	}, nil
}

// pickLeastLoadedReviewer selects the active reviewer of the group with the
// fewest PENDING requests, stable order on ties.
func (s *ApprovalService) pickLeastLoadedReviewer(ctx context.Context, group string) (*model.Reviewer, error) {
	reviewers, err := s.store.Reviewer().List(ctx, store.NewReviewerQueryFilter().ByEligibilityGroup(group).ByActive(true))
	if err != nil {
		return nil, err
	}
	if len(reviewers) == 0 {
		return nil, NewErrNoReviewerAvailable(group)
	}

	ids := make([]uuid.UUID, 0, len(reviewers))
	for _, reviewer := range reviewers {
		ids = append(ids, reviewer.ID)
	}

	counts, err := s.store.Approval().PendingCountByReviewer(ctx, ids)
	if err != nil {
		return nil, err
	}

	best := reviewers[0]
	for _, reviewer := range reviewers[1:] {
		if counts[reviewer.ID] < counts[best.ID] {
			best = reviewer
		}
	}
	return &best, nil
}

// Decide processes the assigned reviewer's decision and advances the owning
// application. Deciding on an already-terminal request is rejected without
// side effects.
func (s *ApprovalService) Decide(ctx context.Context, requestID, reviewerID uuid.UUID, decision, comments string) (model.ApplicationStatus, error) {
	now := s.nowFn()

	var status model.ApprovalStatus
	switch decision {
	case string(model.ApprovalStatusApproved):
		status = model.ApprovalStatusApproved
	case string(model.ApprovalStatusRejected):
		status = model.ApprovalStatusRejected
	default:
		return "", NewErrInvalidDecision(decision)
	}

	request, err := s.store.Approval().Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return "", NewErrApprovalRequestNotFound(requestID)
		}
		return "", err
	}

	if request.Status.IsTerminal() {
		return "", NewErrRequestAlreadyDecided(requestID)
	}
	if request.ReviewerID == nil || *request.ReviewerID != reviewerID {
		return "", NewErrNotAssignedReviewer(requestID, reviewerID)
	}

	application, err := s.store.Application().Get(ctx, request.ApplicationID)
	if err != nil {
		return "", err
	}

	nextStatus := model.ApplicationStatusMentorRejected
	if status == model.ApprovalStatusApproved {
		// the approved branch passes through MENTOR_APPROVED to employer review
		if _, err := model.NextStatus(application.Status, model.ApplicationStatusMentorApproved); err != nil {
			return "", err
		}
		nextStatus = model.ApplicationStatusEmployerReview
		if _, err := model.NextStatus(model.ApplicationStatusMentorApproved, nextStatus); err != nil {
			return "", err
		}
	} else {
		if _, err := model.NextStatus(application.Status, nextStatus); err != nil {
			return "", err
		}
	}

	ctx, err = s.store.NewTransactionContext(ctx)
	if err != nil {
		return "", err
	}

	decided, err := s.store.Approval().Decide(ctx, requestID, status, now, comments)
	if err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrRecordNotFound) {
			// a concurrent invocation won the compare-and-set
			return "", NewErrRequestAlreadyDecided(requestID)
		}
		return "", err
	}

	if _, err := s.store.Application().UpdateStatus(ctx, application.ID, nextStatus); err != nil {
		_, _ = store.Rollback(ctx)
		return "", err
	}

	if _, err := store.Commit(ctx); err != nil {
		return "", err
	}

	// observational only, never blocking
	responseSeconds := int64(now.Sub(decided.SubmittedAt).Seconds())
	if err := s.store.Reviewer().RecordDecision(ctx, reviewerID, status == model.ApprovalStatusApproved, responseSeconds); err != nil {
		zap.S().Named("approval").Warnw("failed to record reviewer decision stats", "reviewer", reviewerID, "error", err)
	}

	if s.producer != nil {
		event := delivery.DecisionEvent{
			RequestID:     requestID.String(),
			ApplicationID: application.ID.String(),
			CandidateID:   application.CandidateID.String(),
			Decision:      string(status),
			NextStatus:    string(nextStatus),
			Comments:      comments,
		}
		if err := s.producer.Write(ctx, delivery.DecisionMessageKind, event); err != nil {
			zap.S().Named("approval").Warnw("failed to emit decision event", "request", requestID, "error", err)
		}
	}

	return nextStatus, nil
}

type WorkqueueItem struct {
	model.ApprovalRequest
	Overdue bool `json:"overdue"`
}

// Workqueue lists a reviewer's PENDING requests, priority desc then
// submission time asc, flagging those past their response window.
func (s *ApprovalService) Workqueue(ctx context.Context, reviewerID uuid.UUID) ([]WorkqueueItem, error) {
	now := s.nowFn()

	requests, err := s.store.Approval().List(ctx,
		store.NewApprovalQueryFilter().ByReviewerID(reviewerID).ByStatus(model.ApprovalStatusPending),
		store.SortByPriorityThenSubmitted)
	if err != nil {
		return nil, err
	}

	items := make([]WorkqueueItem, 0, len(requests))
	for _, request := range requests {
		items = append(items, WorkqueueItem{
			ApprovalRequest: request,
			Overdue:         now.Sub(request.SubmittedAt) > request.Priority.ResponseWindow(),
		})
	}
	return items, nil
}

// computePriority is evaluated at submission time only.
func computePriority(now time.Time, deadline *time.Time, waitingSince time.Time) model.Priority {
	waiting := now.Sub(waitingSince)

	if deadline != nil && deadline.Sub(now) < urgentDeadlineWindow {
		return model.PriorityUrgent
	}
	if (deadline != nil && deadline.Sub(now) < highDeadlineWindow) || waiting > highWaitingWindow {
		return model.PriorityHigh
	}
	if waiting > mediumWaitingWindow {
		return model.PriorityMedium
	}
	return model.PriorityLow
}
