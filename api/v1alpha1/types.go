// Package v1alpha1 holds the wire types of the placement engine API.
package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

type Error struct {
	Message string `json:"message"`
}

// DecisionForm is the body of a reviewer decision.
type DecisionForm struct {
	ReviewerID string `json:"reviewerId" validate:"required,reviewerId"`
	Decision   string `json:"decision" validate:"required,decision"`
	Comments   string `json:"comments" validate:"max=2000"`
}

type SubmitReply struct {
	ApplicationID uuid.UUID  `json:"applicationId"`
	RequestID     uuid.UUID  `json:"requestId"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	ReviewerID    *uuid.UUID `json:"reviewerId,omitempty"`
}

type DecisionReply struct {
	RequestID         uuid.UUID `json:"requestId"`
	ApplicationStatus string    `json:"applicationStatus"`
}

type WorkqueueItem struct {
	RequestID     uuid.UUID `json:"requestId"`
	ApplicationID uuid.UUID `json:"applicationId"`
	CandidateID   uuid.UUID `json:"candidateId"`
	Priority      string    `json:"priority"`
	SubmittedAt   time.Time `json:"submittedAt"`
	Overdue       bool      `json:"overdue"`
}

type Workqueue struct {
	ReviewerID uuid.UUID       `json:"reviewerId"`
	Items      []WorkqueueItem `json:"items"`
}

type Recommendation struct {
	OpportunityID        uuid.UUID `json:"opportunityId"`
	Score                int       `json:"score"`
	SkillMatchPercentage int       `json:"skillMatchPercentage"`
	Reasons              []string  `json:"reasons"`
	New                  bool      `json:"new"`
	Trending             float64   `json:"trending"`
}

type RecommendationList struct {
	CandidateID     uuid.UUID        `json:"candidateId"`
	Recommendations []Recommendation `json:"recommendations"`
}

type FanOutReply struct {
	OpportunityID uuid.UUID `json:"opportunityId"`
	Matched       int       `json:"matched"`
	Notified      int       `json:"notified"`
	Failed        int       `json:"failed"`
}

type EngineRunReply struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Created   int `json:"created"`
}

type HealthReply struct {
	Status string `json:"status"`
}
