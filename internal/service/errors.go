package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrCandidateNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "candidate")
}

func NewErrOpportunityNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "opportunity")
}

func NewErrApplicationNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "application")
}

func NewErrApprovalRequestNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "approval request")
}

// ErrNoReviewerAvailable is a capacity condition, not a crash: the caller may
// queue the submission and retry later.
type ErrNoReviewerAvailable struct {
	error
}

func NewErrNoReviewerAvailable(group string) *ErrNoReviewerAvailable {
	return &ErrNoReviewerAvailable{fmt.Errorf("no reviewer available for group %s", group)}
}

type ErrDuplicateSubmission struct {
	error
}

func NewErrDuplicateSubmission(applicationID uuid.UUID) *ErrDuplicateSubmission {
	return &ErrDuplicateSubmission{fmt.Errorf("application %s already has an open approval request", applicationID)}
}

type ErrRequestAlreadyDecided struct {
	error
}

func NewErrRequestAlreadyDecided(requestID uuid.UUID) *ErrRequestAlreadyDecided {
	return &ErrRequestAlreadyDecided{fmt.Errorf("approval request %s is already decided", requestID)}
}

type ErrNotAssignedReviewer struct {
	error
}

func NewErrNotAssignedReviewer(requestID, reviewerID uuid.UUID) *ErrNotAssignedReviewer {
	return &ErrNotAssignedReviewer{fmt.Errorf("reviewer %s is not assigned to approval request %s", reviewerID, requestID)}
}

type ErrInvalidDecision struct {
	error
}

func NewErrInvalidDecision(decision string) *ErrInvalidDecision {
	return &ErrInvalidDecision{fmt.Errorf("invalid decision %q: must be APPROVED or REJECTED", decision)}
}
