package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/internmatch/placement-engine/api/v1alpha1"
	"github.com/internmatch/placement-engine/internal/service"
)

// (GET /api/v1/candidates/{id}/recommendations)
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	candidateID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid candidate id")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			renderError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	results, err := h.recommendationSrv.Recommend(r.Context(), candidateID, limit)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			renderError(w, r, http.StatusNotFound, err.Error())
		default:
			renderError(w, r, http.StatusInternalServerError, "failed to build recommendations")
		}
		return
	}

	reply := api.RecommendationList{
		CandidateID:     candidateID,
		Recommendations: make([]api.Recommendation, 0, len(results)),
	}
	for _, result := range results {
		reply.Recommendations = append(reply.Recommendations, api.Recommendation{
			OpportunityID:        result.OpportunityID,
			Score:                result.Score,
			SkillMatchPercentage: result.SkillMatchPercentage,
			Reasons:              result.Reasons,
			New:                  result.New,
			Trending:             result.Trending,
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, reply)
}

// (POST /api/v1/opportunities/{id}/fanout)
func (h *Handler) FanOutOpportunity(w http.ResponseWriter, r *http.Request) {
	opportunityID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid opportunity id")
		return
	}

	report, err := h.recommendationSrv.FanOut(r.Context(), opportunityID)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			renderError(w, r, http.StatusNotFound, err.Error())
		default:
			renderError(w, r, http.StatusInternalServerError, "failed to fan out opportunity")
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, api.FanOutReply{
		OpportunityID: opportunityID,
		Matched:       report.Matched,
		Notified:      report.Notified,
		Failed:        report.Failed,
	})
}
