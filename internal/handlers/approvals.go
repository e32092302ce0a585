package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/internmatch/placement-engine/api/v1alpha1"
	"github.com/internmatch/placement-engine/internal/handlers/validator"
	"github.com/internmatch/placement-engine/internal/service"
)

// (POST /api/v1/applications/{id}/submit)
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid application id")
		return
	}

	result, err := h.approvalSrv.Submit(r.Context(), applicationID)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			renderError(w, r, http.StatusNotFound, err.Error())
		case *service.ErrDuplicateSubmission:
			renderError(w, r, http.StatusConflict, err.Error())
		case *service.ErrNoReviewerAvailable:
			renderError(w, r, http.StatusConflict, err.Error())
		default:
			renderError(w, r, http.StatusInternalServerError, "failed to submit application")
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, api.SubmitReply{
		ApplicationID: applicationID,
		RequestID:     result.RequestID,
		Status:        "MENTOR_REVIEW",
		Priority:      string(result.Priority),
		ReviewerID:    &result.ReviewerID,
	})
}

// (POST /api/v1/approvals/{id}/decision)
func (h *Handler) DecideApproval(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid approval request id")
		return
	}

	var form api.DecisionForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		renderError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	v := validator.NewValidator()
	v.Register(validator.NewDecisionValidationRules()...)
	if err := v.Struct(form); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reviewerID, err := uuid.Parse(form.ReviewerID)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid reviewer id")
		return
	}

	nextStatus, err := h.approvalSrv.Decide(r.Context(), requestID, reviewerID, form.Decision, form.Comments)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			renderError(w, r, http.StatusNotFound, err.Error())
		case *service.ErrRequestAlreadyDecided:
			renderError(w, r, http.StatusConflict, err.Error())
		case *service.ErrNotAssignedReviewer:
			renderError(w, r, http.StatusForbidden, err.Error())
		case *service.ErrInvalidDecision:
			renderError(w, r, http.StatusBadRequest, err.Error())
		default:
			renderError(w, r, http.StatusInternalServerError, "failed to process decision")
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, api.DecisionReply{
		RequestID:         requestID,
		ApplicationStatus: string(nextStatus),
	})
}

// (GET /api/v1/reviewers/{id}/workqueue)
func (h *Handler) GetWorkqueue(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid reviewer id")
		return
	}

	items, err := h.approvalSrv.Workqueue(r.Context(), reviewerID)
	if err != nil {
		renderError(w, r, http.StatusInternalServerError, "failed to list workqueue")
		return
	}

	reply := api.Workqueue{ReviewerID: reviewerID, Items: make([]api.WorkqueueItem, 0, len(items))}
	for _, item := range items {
		reply.Items = append(reply.Items, api.WorkqueueItem{
			RequestID:     item.ID,
			ApplicationID: item.ApplicationID,
			CandidateID:   item.CandidateID,
			Priority:      string(item.Priority),
			SubmittedAt:   item.SubmittedAt,
			Overdue:       item.Overdue,
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, reply)
}
