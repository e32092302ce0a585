package store

import (
	"context"

	"github.com/internmatch/placement-engine/internal/store/model"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Candidate() Candidate
	Reviewer() Reviewer
	Opportunity() Opportunity
	Application() Application
	Approval() Approval
	Notification() Notification
	Interview() Interview
	Feedback() Feedback
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db           *gorm.DB
	candidate    Candidate
	reviewer     Reviewer
	opportunity  Opportunity
	application  Application
	approval     Approval
	notification Notification
	interview    Interview
	feedback     Feedback
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:           db,
		candidate:    NewCandidateStore(db),
		reviewer:     NewReviewerStore(db),
		opportunity:  NewOpportunityStore(db),
		application:  NewApplicationStore(db),
		approval:     NewApprovalStore(db),
		notification: NewNotificationStore(db),
		interview:    NewInterviewStore(db),
		feedback:     NewFeedbackStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Candidate() Candidate {
	return s.candidate
}

func (s *DataStore) Reviewer() Reviewer {
	return s.reviewer
}

func (s *DataStore) Opportunity() Opportunity {
	return s.opportunity
}

func (s *DataStore) Application() Application {
	return s.application
}

func (s *DataStore) Approval() Approval {
	return s.approval
}

func (s *DataStore) Notification() Notification {
	return s.notification
}

func (s *DataStore) Interview() Interview {
	return s.interview
}

func (s *DataStore) Feedback() Feedback {
	return s.feedback
}

// InitialMigration creates the schema for dev/sqlite setups. Production
// deployments run the goose migrations instead (pkg/migrations).
func (s *DataStore) InitialMigration() error {
	if err := s.db.AutoMigrate(
		&model.Candidate{},
		&model.Reviewer{},
		&model.ReviewerStats{},
		&model.Opportunity{},
		&model.Application{},
		&model.ApprovalRequest{},
		&model.ScheduledNotification{},
		&model.Interview{},
		&model.Feedback{},
	); err != nil {
		return err
	}

	// partial unique index backing the notification de-dup invariant
	return s.db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS notifications_dedup
		ON scheduled_notifications (recipient_id, category, subject_id, trigger_window)
		WHERE sent_at IS NULL`).Error
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
