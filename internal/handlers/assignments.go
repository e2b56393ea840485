package handlers

import (
	"net/http"

	"opsboard/internal/httpx"
	"opsboard/internal/models"
	"opsboard/internal/services"
)

type AssignmentsHandler struct {
	T *services.Tracker
}

func NewAssignmentsHandler(t *services.Tracker) *AssignmentsHandler {
	return &AssignmentsHandler{T: t}
}

// List: GET /api/assignments
func (h *AssignmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.T.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{"items": snap.Assignments})
}

// Create: POST /api/assignments
func (h *AssignmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuoteID    int     `json:"quote_id"`
		CrewMember string  `json:"crew_member"`
		StartDate  string  `json:"start_date"`
		EndDate    string  `json:"end_date"`
		Payment    float64 `json:"payment"`
		Notes      string  `json:"notes"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	task, err := h.T.AddAssignment(services.AssignmentInput{
		QuoteID:    req.QuoteID,
		CrewMember: req.CrewMember,
		StartDate:  models.ParseDate(req.StartDate),
		EndDate:    models.ParseDate(req.EndDate),
		Payment:    req.Payment,
		Notes:      req.Notes,
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}
