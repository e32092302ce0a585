package model

import "fmt"

// ApplicationStatus is the single authoritative lifecycle value of an application.
// The only allowed mutation path is NextStatus via the transition table below.
type ApplicationStatus string

const (
	ApplicationStatusApplied            ApplicationStatus = "APPLIED"
	ApplicationStatusMentorReview       ApplicationStatus = "MENTOR_REVIEW"
	ApplicationStatusMentorApproved     ApplicationStatus = "MENTOR_APPROVED"
	ApplicationStatusMentorRejected     ApplicationStatus = "MENTOR_REJECTED"
	ApplicationStatusEmployerReview     ApplicationStatus = "EMPLOYER_REVIEW"
	ApplicationStatusInterviewScheduled ApplicationStatus = "INTERVIEW_SCHEDULED"
	ApplicationStatusInterviewed        ApplicationStatus = "INTERVIEWED"
	ApplicationStatusOffered            ApplicationStatus = "OFFERED"
	ApplicationStatusOfferAccepted      ApplicationStatus = "OFFER_ACCEPTED"
	ApplicationStatusOfferRejected      ApplicationStatus = "OFFER_REJECTED"
	ApplicationStatusNotOffered         ApplicationStatus = "NOT_OFFERED"
	ApplicationStatusCompleted          ApplicationStatus = "COMPLETED"
	ApplicationStatusWithdrawn          ApplicationStatus = "WITHDRAWN"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusApplied:            {ApplicationStatusMentorReview},
	ApplicationStatusMentorReview:       {ApplicationStatusMentorApproved, ApplicationStatusMentorRejected},
	ApplicationStatusMentorApproved:     {ApplicationStatusEmployerReview},
	ApplicationStatusEmployerReview:     {ApplicationStatusInterviewScheduled},
	ApplicationStatusInterviewScheduled: {ApplicationStatusInterviewed},
	ApplicationStatusInterviewed:        {ApplicationStatusOffered, ApplicationStatusNotOffered},
	ApplicationStatusOffered:            {ApplicationStatusOfferAccepted, ApplicationStatusOfferRejected},
	ApplicationStatusOfferAccepted:      {ApplicationStatusCompleted},
}

type InvalidTransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid application transition %s -> %s", e.From, e.To)
}

// IsTerminal reports whether no further transition is allowed from s.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusMentorRejected,
		ApplicationStatusOfferRejected,
		ApplicationStatusNotOffered,
		ApplicationStatusCompleted,
		ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// IsRejected reports whether s is one of the rejected terminal branches.
func (s ApplicationStatus) IsRejected() bool {
	return s == ApplicationStatusMentorRejected || s == ApplicationStatusOfferRejected
}

// NextStatus validates the transition from -> to against the transition table.
// Withdrawal is allowed from any non-terminal status.
func NextStatus(from, to ApplicationStatus) (ApplicationStatus, error) {
	if to == ApplicationStatusWithdrawn && !from.IsTerminal() {
		return to, nil
	}

	for _, allowed := range applicationTransitions[from] {
		if allowed == to {
			return to, nil
		}
	}
	return from, &InvalidTransitionError{From: from, To: to}
}
