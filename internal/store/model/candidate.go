package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OpportunityTypePlacement  = "placement"
	OpportunityTypeInternship = "internship"
	TypePreferenceEither      = "either"
)

// Candidate is owned by the profile subsystem and read-only to the engine.
type Candidate struct {
	gorm.Model
	ID               uuid.UUID `gorm:"primaryKey"`
	Name             string    `gorm:"not null"`
	EligibilityGroup string    `gorm:"not null;index"`
	Skills           StringArray
	ExperienceLevel  int
	MinCompensation  *int64
	WorkMode         string
	TypePreference   string
}

type CandidateList []Candidate

func (c Candidate) String() string {
	v, _ := json.Marshal(c)
	return string(v)
}

// Reviewer is a mentor able to decide approval requests for its eligibility group.
type Reviewer struct {
	gorm.Model
	ID               uuid.UUID `gorm:"primaryKey"`
	Name             string    `gorm:"not null"`
	EligibilityGroup string    `gorm:"not null;index"`
	Active           bool      `gorm:"not null;default:true"`
}

type ReviewerList []Reviewer
