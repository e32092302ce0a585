package delivery

// DecisionEvent is emitted when a reviewer decides an approval request.
type DecisionEvent struct {
	RequestID     string `json:"request_id"`
	ApplicationID string `json:"application_id"`
	CandidateID   string `json:"candidate_id"`
	Decision      string `json:"decision"`
	NextStatus    string `json:"next_status"`
	Comments      string `json:"comments,omitempty"`
}

// MatchEvent is emitted by the recommendation fan-out for high-scoring matches.
type MatchEvent struct {
	CandidateID   string   `json:"candidate_id"`
	OpportunityID string   `json:"opportunity_id"`
	Score         int      `json:"score"`
	Reasons       []string `json:"reasons"`
}
