package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/config"
	"github.com/internmatch/placement-engine/internal/store/model"
	"github.com/thoas/go-funk"
)

// Score contributions on the 100-point scale.
const (
	eligibilityPoints   = 40
	skillPointsMax      = 30
	seniorPoints        = 15
	midPoints           = 10
	juniorPoints        = 5
	typeExactPoints     = 10
	typeFlexiblePoints  = 5
	compensationPoints  = 5
	compensationUnknown = 2
)

// MatchResult is an ephemeral scoring value. The engine never persists it;
// callers may cache it if they wish.
type MatchResult struct {
	OpportunityID        uuid.UUID `json:"opportunity_id"`
	Score                int       `json:"score"`
	Reasons              []string  `json:"reasons"`
	SkillMatchPercentage int       `json:"skill_match_percentage"`
	Eligible             bool      `json:"eligible"`
	New                  bool      `json:"new,omitempty"`
	Trending             float64   `json:"trending,omitempty"`
}

type MatcherConfig struct {
	SeniorExperienceLevel int
	MidExperienceLevel    int
}

func NewMatcherConfig(cfg *config.Config) MatcherConfig {
	return MatcherConfig{
		SeniorExperienceLevel: cfg.Engine.SeniorExperienceLevel,
		MidExperienceLevel:    cfg.Engine.MidExperienceLevel,
	}
}

// Score computes the compatibility of a candidate with an opportunity.
// Pure and deterministic, no I/O.
func Score(candidate model.Candidate, opportunity model.Opportunity, cfg MatcherConfig) MatchResult {
	result := MatchResult{OpportunityID: opportunity.ID}

	// hard gate, not a weighted rule
	if !funk.ContainsString(opportunity.EligibilityGroups, candidate.EligibilityGroup) {
		result.Reasons = []string{fmt.Sprintf("not eligible: %s is not among the opportunity's groups", candidate.EligibilityGroup)}
		return result
	}

	result.Eligible = true
	result.Score += eligibilityPoints
	result.Reasons = append(result.Reasons, fmt.Sprintf("eligible via group %s", candidate.EligibilityGroup))

	if matched, total := skillOverlap(candidate.Skills, opportunity.RequiredSkills); total > 0 {
		fraction := float64(matched) / float64(total)
		result.SkillMatchPercentage = int(math.Round(fraction * 100))
		points := int(fraction * skillPointsMax)
		if points > 0 {
			result.Score += points
			result.Reasons = append(result.Reasons, fmt.Sprintf("matches %d of %d required skills", matched, total))
		}
	}

	switch {
	case candidate.ExperienceLevel >= cfg.SeniorExperienceLevel:
		result.Score += seniorPoints
		result.Reasons = append(result.Reasons, "senior experience level")
	case candidate.ExperienceLevel >= cfg.MidExperienceLevel:
		result.Score += midPoints
		result.Reasons = append(result.Reasons, "mid experience level")
	default:
		// any experience is useful
		result.Score += juniorPoints
		result.Reasons = append(result.Reasons, "entry experience level")
	}

	switch candidate.TypePreference {
	case "", model.TypePreferenceEither:
		result.Score += typeFlexiblePoints
		result.Reasons = append(result.Reasons, "open to any opportunity type")
	case opportunity.Type:
		result.Score += typeExactPoints
		result.Reasons = append(result.Reasons, fmt.Sprintf("matches preferred type %s", opportunity.Type))
	}

	switch {
	case candidate.MinCompensation == nil && opportunity.CompensationMax != nil:
		// small credit for having compensation data at all
		result.Score += compensationUnknown
		result.Reasons = append(result.Reasons, "compensation information available")
	case candidate.MinCompensation != nil && opportunity.CompensationMax != nil && *opportunity.CompensationMax >= *candidate.MinCompensation:
		result.Score += compensationPoints
		result.Reasons = append(result.Reasons, "compensation meets your minimum")
	}

	if result.Score > 100 {
		result.Score = 100
	}
	return result
}

// skillOverlap counts the required skills fuzzy-matched by any candidate
// skill. The match is a case-insensitive substring test in either direction,
// so "react" covers "React.js" and vice versa.
func skillOverlap(candidateSkills, requiredSkills []string) (matched, total int) {
	total = len(requiredSkills)
	for _, required := range requiredSkills {
		req := strings.ToLower(strings.TrimSpace(required))
		if req == "" {
			total--
			continue
		}
		for _, skill := range candidateSkills {
			have := strings.ToLower(strings.TrimSpace(skill))
			if have == "" {
				continue
			}
			if strings.Contains(req, have) || strings.Contains(have, req) {
				matched++
				break
			}
		}
	}
	return matched, total
}
