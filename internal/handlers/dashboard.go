package handlers

import (
	"net/http"

	"opsboard/internal/httpx"
	"opsboard/internal/models"
	"opsboard/internal/services"
	"opsboard/internal/views"
)

type DashboardHandler struct {
	T *services.Tracker
}

func NewDashboardHandler(t *services.Tracker) *DashboardHandler {
	return &DashboardHandler{T: t}
}

// Summary: GET /api/dashboard?rep=&from=&to=
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	f, verr := salesFilterFromQuery(r)
	if verr != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr)
		return
	}
	httpx.JSON(w, http.StatusOK, h.T.Dashboard(f))
}

// Tasks: GET /api/tasks?won=1
func (h *DashboardHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.T.Tasks(r.URL.Query().Get("won") == "1"))
}

// salesFilterFromQuery parses the shared rep/from/to filter parameters.
// Dates must be date-only; a malformed date is a caller error rather than a
// silently empty filter.
func salesFilterFromQuery(r *http.Request) (views.SalesFilter, map[string]string) {
	f := views.SalesFilter{Rep: r.URL.Query().Get("rep")}
	if v := r.URL.Query().Get("from"); v != "" {
		if f.From = models.ParseDate(v); f.From == nil {
			return f, map[string]string{"from": "invalid_date"}
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if f.To = models.ParseDate(v); f.To == nil {
			return f, map[string]string{"to": "invalid_date"}
		}
	}
	return f, nil
}
