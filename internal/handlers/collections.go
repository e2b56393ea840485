package handlers

import (
	"net/http"
	"strconv"

	"opsboard/internal/httpx"
	"opsboard/internal/models"
	"opsboard/internal/services"
)

type CollectionsHandler struct {
	T *services.Tracker
}

func NewCollectionsHandler(t *services.Tracker) *CollectionsHandler {
	return &CollectionsHandler{T: t}
}

// List: GET /api/collections — the whole ledger, or one quote's history
// with running totals when ?quote_id= is given.
func (h *CollectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("quote_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_quote_id", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": h.T.History(id)})
		return
	}
	snap := h.T.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{"items": snap.Collections})
}

// Create: POST /api/collections — append one payment to the ledger.
func (h *CollectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuoteID     int     `json:"quote_id"`
		DepositPaid float64 `json:"deposit_paid"`
		Status      string  `json:"status"`
		Date        string  `json:"date"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	entry, err := h.T.AddCollection(services.CollectionInput{
		QuoteID:     req.QuoteID,
		DepositPaid: req.DepositPaid,
		Status:      req.Status,
		Date:        models.ParseDate(req.Date),
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}
