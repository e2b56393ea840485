// Package services ties the record store, the reconciliation engine and the
// view helpers into the mutation flow the dashboard drives: load, mutate,
// re-derive, save, reload.
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"opsboard/internal/models"
	"opsboard/internal/reconcile"
	"opsboard/internal/store"
	"opsboard/internal/views"
)

// ValidationError maps field names to the reason they were rejected. It
// blocks the mutation before anything is appended or saved.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(v))
}

// ErrSaveFailed wraps persistence failures. The in-memory state already
// carries the mutation and is marked unsaved; the durable state does not.
var ErrSaveFailed = errors.New("save failed")

// Tracker owns the in-memory state and serializes every mutation, so
// allocate+append+save runs as one logical unit within this process. Two
// separate processes writing the same backing store can still race; that is
// a documented limitation, not something this type defends against.
type Tracker struct {
	mu      sync.Mutex
	store   store.Store
	log     *logrus.Logger
	snap    *store.Snapshot
	unsaved bool
}

// New loads the backing store and reconciles the derived fields.
func New(st store.Store, log *logrus.Logger) (*Tracker, error) {
	t := &Tracker{store: st, log: log}
	if err := t.Refresh(); err != nil {
		return nil, err
	}
	return t, nil
}

// Refresh reloads from durable storage, discarding any unsaved in-memory
// state, and re-derives the cached fields.
func (t *Tracker) Refresh() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reload()
}

func (t *Tracker) reload() error {
	snap, err := t.store.Load()
	if err != nil {
		return fmt.Errorf("load record sets: %w", err)
	}
	snap.Sales, snap.Collections = reconcile.Apply(snap.Sales, snap.Collections)
	t.snap = snap
	t.unsaved = false
	return nil
}

// Unsaved reports whether the last mutation failed to persist, meaning the
// in-memory state is ahead of durable storage.
func (t *Tracker) Unsaved() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unsaved
}

// Snapshot returns a copy of the reconciled state for read-only use.
func (t *Tracker) Snapshot() *store.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.Clone()
}

// SaleInput is the add-sale form. Area picks the quote ID range.
type SaleInput struct {
	Client      string
	Area        string
	QuotedPrice float64
	Deposit     float64
	Status      string
	SalesRep    string
	StartDate   *time.Time
	EndDate     *time.Time
	JobType     string
}

// AddSale allocates a quote ID in the input's area range, appends the sale
// and, when an initial deposit was taken, the matching ledger row. The
// reconciled state is saved as one unit and reloaded to confirm.
func (t *Tracker) AddSale(in SaleInput) (models.Sale, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	verr := ValidationError{}
	if in.Client == "" {
		verr["client"] = "required"
	}
	if in.SalesRep == "" {
		verr["sales_rep"] = "required"
	}
	if in.JobType == "" {
		verr["job_type"] = "required"
	}
	if in.QuotedPrice < 0 {
		verr["quoted_price"] = "must_not_be_negative"
	}
	if in.Deposit < 0 {
		verr["deposit"] = "must_not_be_negative"
	}
	status := in.Status
	if status == "" {
		status = models.SaleStatusSent
	}
	if status != models.SaleStatusSent && status != models.SaleStatusWon && status != models.SaleStatusLost {
		verr["status"] = "unknown_status"
	}
	if len(verr) > 0 {
		return models.Sale{}, verr
	}

	sale := models.Sale{
		QuoteID:     reconcile.NextQuoteID(in.Area, t.snap.Sales),
		Client:      in.Client,
		QuotedPrice: in.QuotedPrice,
		Status:      status,
		SalesRep:    in.SalesRep,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		JobType:     in.JobType,
	}
	t.snap.Sales = append(t.snap.Sales, sale)
	if in.Deposit > 0 {
		entryStatus := models.CollectionStatusPartiallyPaid
		if in.Deposit >= in.QuotedPrice {
			entryStatus = models.CollectionStatusPaid
		}
		today := dateOnly(time.Now())
		t.snap.Collections = append(t.snap.Collections, models.Collection{
			QuoteID:        sale.QuoteID,
			CollectionDate: &today,
			Client:         in.Client,
			DepositPaid:    in.Deposit,
			Status:         entryStatus,
		})
	}
	if err := t.commit(); err != nil {
		return models.Sale{}, err
	}
	return t.findSale(sale.QuoteID), nil
}

// CollectionInput is one new payment against a won quote.
type CollectionInput struct {
	QuoteID     int
	DepositPaid float64
	Status      string
	Date        *time.Time
}

// AddCollection appends a ledger row. Only won jobs take collections; the
// new row's status becomes the quote's latest.
func (t *Tracker) AddCollection(in CollectionInput) (models.Collection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	verr := ValidationError{}
	if in.DepositPaid <= 0 {
		verr["deposit_paid"] = "must_be_positive"
	}
	switch in.Status {
	case models.CollectionStatusPending, models.CollectionStatusPartiallyPaid,
		models.CollectionStatusPaid, models.CollectionStatusOverdue:
	case "":
		in.Status = models.CollectionStatusPending
	default:
		verr["status"] = "unknown_status"
	}
	sale := t.findSale(in.QuoteID)
	if sale.QuoteID == 0 {
		verr["quote_id"] = "unknown_quote"
	} else if sale.Status != models.SaleStatusWon {
		verr["quote_id"] = "not_won"
	}
	if len(verr) > 0 {
		return models.Collection{}, verr
	}

	date := in.Date
	if date == nil {
		today := dateOnly(time.Now())
		date = &today
	}
	entry := models.Collection{
		QuoteID:        in.QuoteID,
		CollectionDate: date,
		Client:         sale.Client,
		DepositPaid:    in.DepositPaid,
		Status:         in.Status,
	}
	t.snap.Collections = append(t.snap.Collections, entry)
	if err := t.commit(); err != nil {
		return models.Collection{}, err
	}
	// Return the reconciled row (BalanceDue filled in).
	rows := t.snap.Collections
	return rows[len(rows)-1], nil
}

// AssignmentInput is the assign-task form.
type AssignmentInput struct {
	QuoteID    int
	CrewMember string
	StartDate  *time.Time
	EndDate    *time.Time
	Payment    float64
	Notes      string
}

// AddAssignment appends a crew task for an existing quote. DaysTaken is
// derived from the date range.
func (t *Tracker) AddAssignment(in AssignmentInput) (models.Assignment, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	verr := ValidationError{}
	if in.CrewMember == "" {
		verr["crew_member"] = "required"
	}
	if in.Payment < 0 {
		verr["payment"] = "must_not_be_negative"
	}
	sale := t.findSale(in.QuoteID)
	if sale.QuoteID == 0 {
		verr["quote_id"] = "unknown_quote"
	}
	if len(verr) > 0 {
		return models.Assignment{}, verr
	}

	task := models.Assignment{
		QuoteID:    in.QuoteID,
		Client:     sale.Client,
		CrewMember: in.CrewMember,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Payment:    in.Payment,
		DaysTaken:  models.DaysBetween(in.StartDate, in.EndDate),
		Notes:      in.Notes,
	}
	t.snap.Assignments = append(t.snap.Assignments, task)
	if err := t.commit(); err != nil {
		return models.Assignment{}, err
	}
	rows := t.snap.Assignments
	return rows[len(rows)-1], nil
}

// Dashboard computes the KPI summary over the reconciled state.
func (t *Tracker) Dashboard(f views.SalesFilter) views.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return views.Summarize(t.snap.Sales, t.snap.Collections, f)
}

// WonSales lists won jobs matching the filter.
func (t *Tracker) WonSales(f views.SalesFilter) []models.Sale {
	t.mu.Lock()
	defer t.mu.Unlock()
	return views.WonSales(t.snap.Sales, f)
}

// Tasks splits quotes into assigned and pending.
func (t *Tracker) Tasks(wonOnly bool) views.TaskSplit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return views.AssignedVsPending(t.snap.Sales, t.snap.Assignments, wonOnly)
}

// History returns the quote's ledger with running totals.
func (t *Tracker) History(quoteID int) []views.LedgerEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return views.CollectionHistory(t.snap.Sales, t.snap.Collections, quoteID)
}

// commit re-derives, persists the whole state as one unit, and reloads to
// confirm the durable copy. On save failure the in-memory state keeps the
// mutation but is marked unsaved, and the reload is skipped so the caller
// never sees a state that was not durably committed presented as saved.
func (t *Tracker) commit() error {
	t.snap.Sales, t.snap.Collections = reconcile.Apply(t.snap.Sales, t.snap.Collections)
	if err := t.store.Save(t.snap); err != nil {
		t.unsaved = true
		t.log.WithFields(logrus.Fields{"error": err.Error()}).Error("save failed, in-memory state is ahead of durable storage")
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return t.reload()
}

func (t *Tracker) findSale(quoteID int) models.Sale {
	for _, s := range t.snap.Sales {
		if s.QuoteID == quoteID {
			return s
		}
	}
	return models.Sale{}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
