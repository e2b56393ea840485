// Package handlers exposes the tracker over JSON. Handlers are stateless:
// whether a mutation has been applied lives in the request/response cycle,
// never in a long-lived flag.
package handlers

import (
	"errors"
	"net/http"

	"opsboard/internal/httpx"
	"opsboard/internal/models"
	"opsboard/internal/services"
)

type SalesHandler struct {
	T *services.Tracker
}

func NewSalesHandler(t *services.Tracker) *SalesHandler { return &SalesHandler{T: t} }

// List: GET /api/sales — the full sales log, or won jobs only with
// ?won=1 plus the optional rep/from/to filters.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("won") == "1" {
		f, verr := salesFilterFromQuery(r)
		if verr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": h.T.WonSales(f)})
		return
	}
	snap := h.T.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{"items": snap.Sales, "unsaved": h.T.Unsaved()})
}

// Create: POST /api/sales
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Client      string  `json:"client"`
		Area        string  `json:"area"`
		QuotedPrice float64 `json:"quoted_price"`
		Deposit     float64 `json:"deposit"`
		Status      string  `json:"status"`
		SalesRep    string  `json:"sales_rep"`
		StartDate   string  `json:"start_date"`
		EndDate     string  `json:"end_date"`
		JobType     string  `json:"job_type"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	sale, err := h.T.AddSale(services.SaleInput{
		Client:      req.Client,
		Area:        req.Area,
		QuotedPrice: req.QuotedPrice,
		Deposit:     req.Deposit,
		Status:      req.Status,
		SalesRep:    req.SalesRep,
		StartDate:   models.ParseDate(req.StartDate),
		EndDate:     models.ParseDate(req.EndDate),
		JobType:     req.JobType,
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

// writeMutationError maps service errors onto the response envelope:
// validation blocks with 400 and a field map, a failed save surfaces as 503
// so the client knows the durable state is behind.
func writeMutationError(w http.ResponseWriter, err error) {
	var verr services.ValidationError
	if errors.As(err, &verr) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr)
		return
	}
	if errors.Is(err, services.ErrSaveFailed) {
		httpx.JSONError(w, http.StatusServiceUnavailable, "save_failed", map[string]string{
			"hint": "close the workbook if it is open elsewhere and retry",
		})
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}
