package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationCategory string

const (
	CategoryDeadline      NotificationCategory = "DEADLINE"
	CategoryInterview     NotificationCategory = "INTERVIEW"
	CategoryApproval      NotificationCategory = "APPROVAL"
	CategoryFeedback      NotificationCategory = "FEEDBACK"
	CategoryCrossCategory NotificationCategory = "CROSS_CATEGORY"
	CategoryGeneral       NotificationCategory = "GENERAL"
)

// ScheduledNotification rows are created by the discovery scanners and the
// recommendation fan-out, and mutated exactly once when the flush step sets
// SentAt. Rows are never deleted, forming an audit trail.
//
// At most one unsent row may exist per (recipient, category, subject, window);
// the partial unique index notifications_dedup backs the scanners'
// check-then-insert against concurrent engine invocations.
type ScheduledNotification struct {
	gorm.Model
	ID            uuid.UUID            `gorm:"primaryKey"`
	RecipientID   uuid.UUID            `gorm:"not null;index"`
	Category      NotificationCategory `gorm:"type:VARCHAR(20);not null"`
	SubjectID     uuid.UUID            `gorm:"not null"`
	TriggerWindow string               `gorm:"type:VARCHAR(40);not null"`
	Payload       []byte               `gorm:"type:jsonb"`
	ScheduledFor  time.Time            `gorm:"not null;index"`
	Priority      Priority             `gorm:"type:VARCHAR(20);not null"`
	SentAt        *time.Time
}

type ScheduledNotificationList []ScheduledNotification

func (n ScheduledNotification) String() string {
	v, _ := json.Marshal(n)
	return string(v)
}

type Interview struct {
	gorm.Model
	ID            uuid.UUID `gorm:"primaryKey"`
	ApplicationID uuid.UUID `gorm:"not null;index"`
	CandidateID   uuid.UUID `gorm:"not null"`
	InterviewerID uuid.UUID `gorm:"not null"`
	ScheduledAt   time.Time `gorm:"not null;index"`
	Location      string
}

type InterviewList []Interview

// Feedback records that a reviewer filed feedback for a completed
// engagement. The engine only ever checks existence.
type Feedback struct {
	gorm.Model
	ID            uuid.UUID `gorm:"primaryKey"`
	ApplicationID uuid.UUID `gorm:"not null;index"`
	ReviewerID    uuid.UUID `gorm:"not null"`
	Comments      string
}
