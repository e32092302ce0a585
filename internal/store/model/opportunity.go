package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Opportunity is owned by the listings subsystem and read-only to the engine.
type Opportunity struct {
	gorm.Model
	ID                uuid.UUID `gorm:"primaryKey"`
	Title             string    `gorm:"not null"`
	EligibilityGroups StringArray
	RequiredSkills    StringArray
	CompensationMin   *int64
	CompensationMax   *int64
	Type              string `gorm:"type:VARCHAR(20)"`
	Active            bool   `gorm:"not null;default:true"`
	Verified          bool
	Deadline          *time.Time `gorm:"index"`
}

type OpportunityList []Opportunity

func (o Opportunity) String() string {
	v, _ := json.Marshal(o)
	return string(v)
}

// AgeInDays is the opportunity age at now, never below 1 so it can be
// used as a trending divisor.
func (o Opportunity) AgeInDays(now time.Time) float64 {
	age := now.Sub(o.CreatedAt).Hours() / 24
	if age < 1 {
		return 1
	}
	return age
}

type Application struct {
	gorm.Model
	ID            uuid.UUID         `gorm:"primaryKey"`
	CandidateID   uuid.UUID         `gorm:"not null;uniqueIndex:applications_candidate_opportunity"`
	OpportunityID uuid.UUID         `gorm:"not null;uniqueIndex:applications_candidate_opportunity"`
	Status        ApplicationStatus `gorm:"type:VARCHAR(30);not null;index"`
	SubmittedAt   time.Time         `gorm:"not null"`

	Opportunity *Opportunity `gorm:"foreignKey:OpportunityID"`
	Candidate   *Candidate   `gorm:"foreignKey:CandidateID"`
}

type ApplicationList []Application

func (a Application) String() string {
	v, _ := json.Marshal(a)
	return string(v)
}
