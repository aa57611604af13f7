package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/services"
)

type ReportHandler struct {
	svc *services.ReportService
}

func NewReportHandler(svc *services.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// reportSummary is the list-view shape: section count instead of the full
// section bodies.
type reportSummary struct {
	ReportID           string    `json:"reportId"`
	WorkflowID         *string   `json:"workflowId,omitempty"`
	SourceCollectionID *string   `json:"sourceCollectionId,omitempty"`
	Title              string    `json:"title"`
	Summary            string    `json:"summary"`
	Format             string    `json:"format"`
	SectionCount       int       `json:"sectionCount"`
	CreationTime       time.Time `json:"creationTime"`
}

// List GET /api/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.ListReports(r.Context(), actorID(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	summaries := make([]reportSummary, 0, len(reports))
	for _, rep := range reports {
		summaries = append(summaries, reportSummary{
			ReportID:           rep.ReportID,
			WorkflowID:         rep.WorkflowID,
			SourceCollectionID: rep.SourceCollectionID,
			Title:              rep.Title,
			Summary:            rep.Summary,
			Format:             rep.Format,
			SectionCount:       len(rep.Sections),
			CreationTime:       rep.CreationTime,
		})
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": summaries,
		"count":   len(summaries),
	})
}

// Get GET /api/reports/{reportId}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetReport(r.Context(), actorID(r), mux.Vars(r)["reportId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, report)
}

// Delete DELETE /api/reports/{reportId}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteReport(r.Context(), actorID(r), mux.Vars(r)["reportId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
