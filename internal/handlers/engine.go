package handlers

import (
	"net/http"

	"github.com/go-chi/render"

	api "github.com/internmatch/placement-engine/api/v1alpha1"
)

// (POST /api/v1/engine/run)
func (h *Handler) RunEngine(w http.ResponseWriter, r *http.Request) {
	report, err := h.schedulerSrv.RunOnce(r.Context())
	if err != nil {
		renderError(w, r, http.StatusInternalServerError, "engine run failed")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, api.EngineRunReply{
		Processed: report.Flush.Processed,
		Failed:    report.Flush.Failed,
		Created:   report.Discover.Created,
	})
}
