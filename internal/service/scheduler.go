package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/config"
	"github.com/internmatch/placement-engine/internal/delivery"
	"github.com/internmatch/placement-engine/internal/store"
	"github.com/internmatch/placement-engine/internal/store/model"
	"github.com/internmatch/placement-engine/pkg/metrics"
	"go.uber.org/zap"
)

const (
	approvalNudgeAge   = 24 * time.Hour
	feedbackRequestAge = 3 * 24 * time.Hour
)

var deadlineOffsetsDays = []int{1, 7}

// SchedulerService owns the ScheduledNotification lifecycle: scanners and the
// recommendation fan-out create rows through Schedule, FlushDue delivers the
// due ones. It holds no timer; an external trigger calls RunOnce.
type SchedulerService struct {
	store           store.Store
	writer          delivery.Writer
	deliveryTimeout time.Duration
}

func NewSchedulerService(store store.Store, writer delivery.Writer, cfg *config.Config) *SchedulerService {
	return &SchedulerService{
		store:           store,
		writer:          writer,
		deliveryTimeout: cfg.Engine.DeliveryTimeout,
	}
}

type FlushReport struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

type DiscoverReport struct {
	Created int `json:"created"`
}

type RunReport struct {
	Flush    FlushReport    `json:"flush"`
	Discover DiscoverReport `json:"discover"`
}

// Schedule inserts a notification subject to the de-duplication invariant.
// Returns false when an unsent notification already covers the same
// (recipient, category, subject, window) tuple.
func (s *SchedulerService) Schedule(ctx context.Context, notification model.ScheduledNotification) (bool, error) {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}

	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return false, err
	}

	if _, err := s.store.Notification().CreateIfAbsent(ctx, notification); err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrDuplicateKey) {
			return false, nil
		}
		return false, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return false, err
	}

	metrics.IncreaseNotificationsScheduledMetric(string(notification.Category))
	return true, nil
}

// FlushDue delivers every unsent notification due at now, priority desc then
// scheduled_for asc. A failed delivery leaves the row pending so the next
// invocation retries it naturally; one failure never blocks the rest.
func (s *SchedulerService) FlushDue(ctx context.Context, now time.Time) (FlushReport, error) {
	report := FlushReport{}

	due, err := s.store.Notification().List(ctx,
		store.NewNotificationQueryFilter().Unsent().DueBefore(now),
		store.SortByPriorityThenDue)
	if err != nil {
		return report, err
	}

	for _, notification := range due {
		deliverCtx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
		err := delivery.Deliver(deliverCtx, s.writer, notification)
		cancel()

		if err != nil {
			report.Failed++
			metrics.IncreaseNotificationsFailedMetric(string(notification.Category))
			zap.S().Named("scheduler").Warnw("notification delivery failed",
				"notification", notification.ID, "category", notification.Category, "error", err)
			continue
		}

		if err := s.store.Notification().MarkSent(ctx, notification.ID, now); err != nil {
			// already sent by a concurrent invocation; the delivery contract
			// is at-least-once, so count it processed
			if !errors.Is(err, store.ErrRecordNotFound) {
				report.Failed++
				zap.S().Named("scheduler").Errorw("failed to mark notification sent",
					"notification", notification.ID, "error", err)
				continue
			}
		}

		report.Processed++
		metrics.IncreaseNotificationsSentMetric(string(notification.Category))
	}

	return report, nil
}

// Discover runs the scanners, each producing zero or more new notifications.
// A scanner failure is logged and does not prevent the others from running.
func (s *SchedulerService) Discover(ctx context.Context, now time.Time) (DiscoverReport, error) {
	report := DiscoverReport{}

	scanners := []struct {
		name string
		scan func(ctx context.Context, now time.Time) (int, error)
	}{
		{"deadline", s.scanDeadlines},
		{"interview", s.scanInterviews},
		{"approval_aging", s.scanStaleApprovals},
		{"feedback", s.scanMissingFeedback},
	}

	for _, scanner := range scanners {
		created, err := s.runScanner(ctx, now, scanner.name, scanner.scan)
		if err != nil {
			zap.S().Named("scheduler").Errorw("scanner failed", "scanner", scanner.name, "error", err)
			continue
		}
		report.Created += created
	}

	return report, nil
}

// RunOnce is the engine's external invocation contract: flush due
// notifications, then discover new ones, returning counts for observability.
func (s *SchedulerService) RunOnce(ctx context.Context) (RunReport, error) {
	now := time.Now()

	flush, err := s.FlushDue(ctx, now)
	if err != nil {
		return RunReport{Flush: flush}, err
	}

	discover, err := s.Discover(ctx, now)
	if err != nil {
		return RunReport{Flush: flush, Discover: discover}, err
	}

	metrics.IncreaseEngineRunsMetric()
	zap.S().Named("scheduler").Infow("engine run completed",
		"processed", flush.Processed, "failed", flush.Failed, "created", discover.Created)

	return RunReport{Flush: flush, Discover: discover}, nil
}

func (s *SchedulerService) runScanner(ctx context.Context, now time.Time, name string, scan func(context.Context, time.Time) (int, error)) (created int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scanner %s panicked: %v", name, r)
		}
	}()
	return scan(ctx, now)
}

// scanDeadlines schedules DEADLINE reminders for applications whose
// opportunity deadline falls exactly 1 or 7 days from now, day granularity.
func (s *SchedulerService) scanDeadlines(ctx context.Context, now time.Time) (int, error) {
	created := 0

	for _, offsetDays := range deadlineOffsetsDays {
		target := now.AddDate(0, 0, offsetDays)
		dayStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)

		opportunities, err := s.store.Opportunity().List(ctx,
			store.NewOpportunityQueryFilter().ByActive(true).ByDeadlineBetween(dayStart, dayEnd))
		if err != nil {
			return created, err
		}

		priority := model.PriorityMedium
		if offsetDays == 1 {
			priority = model.PriorityHigh
		}

		for _, opportunity := range opportunities {
			applications, err := s.store.Application().List(ctx,
				store.NewApplicationQueryFilter().ByOpportunityID(opportunity.ID))
			if err != nil {
				return created, err
			}

			for _, application := range applications {
				if application.Status.IsTerminal() || application.Status.IsRejected() {
					continue
				}

				payload, _ := json.Marshal(map[string]any{
					"opportunity_id": opportunity.ID,
					"title":          opportunity.Title,
					"deadline":       opportunity.Deadline,
					"days_left":      offsetDays,
				})

				ok, err := s.Schedule(ctx, model.ScheduledNotification{
					RecipientID:   application.CandidateID,
					Category:      model.CategoryDeadline,
					SubjectID:     application.ID,
					TriggerWindow: fmt.Sprintf("deadline-%dd", offsetDays),
					Payload:       payload,
					ScheduledFor:  opportunity.Deadline.Add(-time.Duration(offsetDays) * 24 * time.Hour),
					Priority:      priority,
				})
				if err != nil {
					return created, err
				}
				if ok {
					created++
				}
			}
		}
	}

	return created, nil
}

// scanInterviews schedules INTERVIEW reminders at the 24-hour and 1-hour
// marks for interviews happening within the next 24 hours, to both the
// candidate and the interviewer.
func (s *SchedulerService) scanInterviews(ctx context.Context, now time.Time) (int, error) {
	created := 0

	interviews, err := s.store.Interview().List(ctx,
		store.NewInterviewQueryFilter().ScheduledBetween(now, now.Add(24*time.Hour)))
	if err != nil {
		return created, err
	}

	marks := []struct {
		offset   time.Duration
		window   string
		priority model.Priority
	}{
		{24 * time.Hour, "interview-24h", model.PriorityMedium},
		{time.Hour, "interview-1h", model.PriorityHigh},
	}

	for _, interview := range interviews {
		payload, _ := json.Marshal(map[string]any{
			"interview_id": interview.ID,
			"scheduled_at": interview.ScheduledAt,
			"location":     interview.Location,
		})

		for _, mark := range marks {
			for _, recipient := range []uuid.UUID{interview.CandidateID, interview.InterviewerID} {
				ok, err := s.Schedule(ctx, model.ScheduledNotification{
					RecipientID:   recipient,
					Category:      model.CategoryInterview,
					SubjectID:     interview.ID,
					TriggerWindow: mark.window,
					Payload:       payload,
					ScheduledFor:  interview.ScheduledAt.Add(-mark.offset),
					Priority:      mark.priority,
				})
				if err != nil {
					return created, err
				}
				if ok {
					created++
				}
			}
		}
	}

	return created, nil
}

// scanStaleApprovals nudges reviewers holding PENDING requests older than 24
// hours. Fires once per request; the de-dup invariant prevents repeats.
func (s *SchedulerService) scanStaleApprovals(ctx context.Context, now time.Time) (int, error) {
	created := 0

	requests, err := s.store.Approval().List(ctx,
		store.NewApprovalQueryFilter().
			ByStatus(model.ApprovalStatusPending).
			SubmittedBefore(now.Add(-approvalNudgeAge)),
		store.SortBySubmittedTime)
	if err != nil {
		return created, err
	}

	for _, request := range requests {
		if request.ReviewerID == nil {
			continue
		}

		payload, _ := json.Marshal(map[string]any{
			"request_id":   request.ID,
			"submitted_at": request.SubmittedAt,
			"priority":     request.Priority,
		})

		ok, err := s.Schedule(ctx, model.ScheduledNotification{
			RecipientID:   *request.ReviewerID,
			Category:      model.CategoryApproval,
			SubjectID:     request.ID,
			TriggerWindow: "approval-nudge",
			Payload:       payload,
			ScheduledFor:  now,
			Priority:      request.Priority,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, nil
}

// scanMissingFeedback requests feedback from the deciding reviewer for
// engagements completed more than 3 days ago that have none.
func (s *SchedulerService) scanMissingFeedback(ctx context.Context, now time.Time) (int, error) {
	created := 0

	applications, err := s.store.Application().List(ctx,
		store.NewApplicationQueryFilter().ByStatuses([]model.ApplicationStatus{model.ApplicationStatusCompleted}))
	if err != nil {
		return created, err
	}

	for _, application := range applications {
		if now.Sub(application.UpdatedAt) < feedbackRequestAge {
			continue
		}

		exists, err := s.store.Feedback().ExistsForApplication(ctx, application.ID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		reviewer, err := s.decidingReviewer(ctx, application.ID)
		if err != nil {
			return created, err
		}
		if reviewer == nil {
			continue
		}

		payload, _ := json.Marshal(map[string]any{
			"application_id": application.ID,
			"completed_at":   application.UpdatedAt,
		})

		ok, err := s.Schedule(ctx, model.ScheduledNotification{
			RecipientID:   *reviewer,
			Category:      model.CategoryFeedback,
			SubjectID:     application.ID,
			TriggerWindow: "feedback-request",
			Payload:       payload,
			ScheduledFor:  now,
			Priority:      model.PriorityLow,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, nil
}

func (s *SchedulerService) decidingReviewer(ctx context.Context, applicationID uuid.UUID) (*uuid.UUID, error) {
	requests, err := s.store.Approval().List(ctx,
		store.NewApprovalQueryFilter().ByApplicationID(applicationID),
		store.SortBySubmittedTime)
	if err != nil {
		return nil, err
	}
	for _, request := range requests {
		if request.Status.IsTerminal() && request.ReviewerID != nil {
			return request.ReviewerID, nil
		}
	}
	return nil, nil
}
