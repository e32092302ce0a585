package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/store/model"
	"gorm.io/gorm"
)

// priorityOrderExpr sorts the textual priority column highest first.
const priorityOrderExpr = "CASE priority WHEN 'URGENT' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC"

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortByCreatedTime
	SortBySubmittedTime
	SortByPriorityThenSubmitted
	SortByPriorityThenDue
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type CandidateQueryFilter BaseQuerier

func NewCandidateQueryFilter() *CandidateQueryFilter {
	return &CandidateQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *CandidateQueryFilter) ByEligibilityGroups(groups []string) *CandidateQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("eligibility_group IN ?", groups)
	})
	return qf
}

type ReviewerQueryFilter BaseQuerier

func NewReviewerQueryFilter() *ReviewerQueryFilter {
	return &ReviewerQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *ReviewerQueryFilter) ByEligibilityGroup(group string) *ReviewerQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("eligibility_group = ?", group)
	})
	return qf
}

func (qf *ReviewerQueryFilter) ByActive(active bool) *ReviewerQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		if active {
			return tx.Where("active IS TRUE")
		}
		return tx.Where("active IS NOT TRUE")
	})
	return qf
}

type OpportunityQueryFilter BaseQuerier

func NewOpportunityQueryFilter() *OpportunityQueryFilter {
	return &OpportunityQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *OpportunityQueryFilter) ByActive(active bool) *OpportunityQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		if active {
			return tx.Where("active IS TRUE")
		}
		return tx.Where("active IS NOT TRUE")
	})
	return qf
}

func (qf *OpportunityQueryFilter) ByVerified(verified bool) *OpportunityQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		if verified {
			return tx.Where("verified IS TRUE")
		}
		return tx.Where("verified IS NOT TRUE")
	})
	return qf
}

func (qf *OpportunityQueryFilter) ByDeadlineBetween(from, to time.Time) *OpportunityQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("deadline >= ? AND deadline < ?", from, to)
	})
	return qf
}

type ApplicationQueryFilter BaseQuerier

func NewApplicationQueryFilter() *ApplicationQueryFilter {
	return &ApplicationQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *ApplicationQueryFilter) ByCandidateID(id uuid.UUID) *ApplicationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("candidate_id = ?", id)
	})
	return qf
}

func (qf *ApplicationQueryFilter) ByOpportunityID(id uuid.UUID) *ApplicationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("opportunity_id = ?", id)
	})
	return qf
}

func (qf *ApplicationQueryFilter) ByStatuses(statuses []model.ApplicationStatus) *ApplicationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status IN ?", statuses)
	})
	return qf
}

func (qf *ApplicationQueryFilter) ExcludingStatuses(statuses []model.ApplicationStatus) *ApplicationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status NOT IN ?", statuses)
	})
	return qf
}

type ApprovalQueryFilter BaseQuerier

func NewApprovalQueryFilter() *ApprovalQueryFilter {
	return &ApprovalQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *ApprovalQueryFilter) ByReviewerID(id uuid.UUID) *ApprovalQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("reviewer_id = ?", id)
	})
	return qf
}

func (qf *ApprovalQueryFilter) ByApplicationID(id uuid.UUID) *ApprovalQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("application_id = ?", id)
	})
	return qf
}

func (qf *ApprovalQueryFilter) ByStatus(status model.ApprovalStatus) *ApprovalQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return qf
}

func (qf *ApprovalQueryFilter) SubmittedBefore(t time.Time) *ApprovalQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("submitted_at < ?", t)
	})
	return qf
}

type NotificationQueryFilter BaseQuerier

func NewNotificationQueryFilter() *NotificationQueryFilter {
	return &NotificationQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *NotificationQueryFilter) Unsent() *NotificationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("sent_at IS NULL")
	})
	return qf
}

func (qf *NotificationQueryFilter) DueBefore(t time.Time) *NotificationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("scheduled_for <= ?", t)
	})
	return qf
}

func (qf *NotificationQueryFilter) ByRecipientID(id uuid.UUID) *NotificationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("recipient_id = ?", id)
	})
	return qf
}

func (qf *NotificationQueryFilter) ByCategory(category model.NotificationCategory) *NotificationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("category = ?", category)
	})
	return qf
}

type InterviewQueryFilter BaseQuerier

func NewInterviewQueryFilter() *InterviewQueryFilter {
	return &InterviewQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *InterviewQueryFilter) ScheduledBetween(from, to time.Time) *InterviewQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("scheduled_at >= ? AND scheduled_at < ?", from, to)
	})
	return qf
}
