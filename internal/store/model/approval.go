package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "PENDING"
	ApprovalStatusApproved  ApprovalStatus = "APPROVED"
	ApprovalStatusRejected  ApprovalStatus = "REJECTED"
	ApprovalStatusEscalated ApprovalStatus = "ESCALATED"
)

// IsTerminal reports whether the request can no longer be decided.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Weight orders priorities for sorting, higher first.
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// ResponseWindow is the maximum waiting time before a pending request
// of this priority is flagged overdue.
func (p Priority) ResponseWindow() time.Duration {
	switch p {
	case PriorityUrgent:
		return 12 * time.Hour
	case PriorityHigh:
		return 24 * time.Hour
	case PriorityMedium:
		return 48 * time.Hour
	default:
		return 72 * time.Hour
	}
}

type ApprovalRequest struct {
	gorm.Model
	ID            uuid.UUID `gorm:"primaryKey"`
	ApplicationID uuid.UUID `gorm:"not null;index"`
	CandidateID   uuid.UUID `gorm:"not null"`
	ReviewerID    *uuid.UUID
	Status        ApprovalStatus `gorm:"type:VARCHAR(20);not null;index"`
	Priority      Priority       `gorm:"type:VARCHAR(20);not null"`
	AutoAssigned  bool
	SubmittedAt   time.Time `gorm:"not null"`
	ReviewedAt    *time.Time
	Comments      string
}

type ApprovalRequestList []ApprovalRequest

func (a ApprovalRequest) String() string {
	v, _ := json.Marshal(a)
	return string(v)
}

// ReviewerStats is an observational per-reviewer decision record. It is
// updated after a decision and never consulted on the blocking path.
type ReviewerStats struct {
	ReviewerID      uuid.UUID `gorm:"primaryKey"`
	Decided         int64
	Approved        int64
	ResponseSeconds int64
	UpdatedAt       time.Time
}

// ApprovalRate returns the fraction of decided requests that were approved.
func (s ReviewerStats) ApprovalRate() float64 {
	if s.Decided == 0 {
		return 0
	}
	return float64(s.Approved) / float64(s.Decided)
}

// AverageResponse returns the mean time between submission and decision.
func (s ReviewerStats) AverageResponse() time.Duration {
	if s.Decided == 0 {
		return 0
	}
	return time.Duration(s.ResponseSeconds/s.Decided) * time.Second
}
