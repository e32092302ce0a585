// Package handlers wires the engine services to the HTTP surface.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	api "github.com/internmatch/placement-engine/api/v1alpha1"
	"github.com/internmatch/placement-engine/internal/service"
)

type Handler struct {
	approvalSrv       *service.ApprovalService
	recommendationSrv *service.RecommendationService
	schedulerSrv      *service.SchedulerService
}

func NewHandler(
	approvalService *service.ApprovalService,
	recommendationService *service.RecommendationService,
	schedulerService *service.SchedulerService,
) *Handler {
	return &Handler{
		approvalSrv:       approvalService,
		recommendationSrv: recommendationService,
		schedulerSrv:      schedulerService,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/applications/{id}/submit", h.SubmitApplication)
		r.Post("/approvals/{id}/decision", h.DecideApproval)
		r.Get("/reviewers/{id}/workqueue", h.GetWorkqueue)
		r.Get("/candidates/{id}/recommendations", h.GetRecommendations)
		r.Post("/opportunities/{id}/fanout", h.FanOutOpportunity)
		r.Post("/engine/run", h.RunEngine)
	})
}

// (GET /health)
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, api.HealthReply{Status: "ok"})
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, api.Error{Message: message})
}
