// Package views holds the read-only joins and aggregations consumed by
// presentation layers. Nothing here mutates state; callers pass in the
// already-reconciled record sets.
package views

import (
	"time"

	"opsboard/internal/models"
)

// SalesFilter narrows a sales query. Zero values mean "no filter"; the date
// range is inclusive on both ends and matches on StartDate.
type SalesFilter struct {
	Rep  string
	From *time.Time
	To   *time.Time
}

func (f SalesFilter) matches(s models.Sale) bool {
	if f.Rep != "" && s.SalesRep != f.Rep {
		return false
	}
	if f.From != nil || f.To != nil {
		if s.StartDate == nil {
			return false
		}
		if f.From != nil && s.StartDate.Before(*f.From) {
			return false
		}
		if f.To != nil && s.StartDate.After(*f.To) {
			return false
		}
	}
	return true
}

// WonSales returns the sales with status Won that pass the filter. Won jobs
// are the only sales eligible for collection and assignment workflows.
func WonSales(sales []models.Sale, f SalesFilter) []models.Sale {
	out := []models.Sale{}
	for _, s := range sales {
		if s.Status == models.SaleStatusWon && f.matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// TaskSplit partitions quote IDs into those with at least one crew
// assignment and those still waiting for one.
type TaskSplit struct {
	Assigned []int `json:"assigned"`
	Pending  []int `json:"pending"`
}

// AssignedVsPending computes the task split. With wonOnly set, only Won
// sales count as pending work; assignments always count regardless of the
// sale's status (or even a missing sale).
func AssignedVsPending(sales []models.Sale, assignments []models.Assignment, wonOnly bool) TaskSplit {
	assignedSet := map[int]bool{}
	split := TaskSplit{Assigned: []int{}, Pending: []int{}}
	for _, a := range assignments {
		if !assignedSet[a.QuoteID] {
			assignedSet[a.QuoteID] = true
			split.Assigned = append(split.Assigned, a.QuoteID)
		}
	}
	seen := map[int]bool{}
	for _, s := range sales {
		if wonOnly && s.Status != models.SaleStatusWon {
			continue
		}
		if assignedSet[s.QuoteID] || seen[s.QuoteID] {
			continue
		}
		seen[s.QuoteID] = true
		split.Pending = append(split.Pending, s.QuoteID)
	}
	return split
}

// LedgerEntry is one collection row annotated with the running totals at
// that point in the ledger.
type LedgerEntry struct {
	models.Collection
	RunningPaid    float64 `json:"running_paid"`
	RunningBalance float64 `json:"running_balance"`
}

// CollectionHistory returns the quote's ledger rows in insertion order with
// a prefix-sum running total and running balance. Any portion of the sale's
// total that is not reflected in the ledger (an initial deposit recorded
// only on the sale row before a matching ledger entry existed) is folded
// into the first running total as an offset.
func CollectionHistory(sales []models.Sale, collections []models.Collection, quoteID int) []LedgerEntry {
	var price, salePaid float64
	for _, s := range sales {
		if s.QuoteID == quoteID {
			price = s.QuotedPrice
			salePaid = s.DepositPaid
			break
		}
	}
	var ledgerSum float64
	rows := []models.Collection{}
	for _, c := range collections {
		if c.QuoteID == quoteID {
			ledgerSum += c.DepositPaid
			rows = append(rows, c)
		}
	}
	offset := salePaid - ledgerSum
	if offset < 0 {
		offset = 0
	}
	out := make([]LedgerEntry, 0, len(rows))
	running := offset
	for _, c := range rows {
		running += c.DepositPaid
		balance := price - running
		if balance < 0 {
			balance = 0
		}
		out = append(out, LedgerEntry{Collection: c, RunningPaid: running, RunningBalance: balance})
	}
	return out
}

// Summary carries the dashboard KPIs for a (possibly filtered) slice of the
// sales log.
type Summary struct {
	QuotesSent      int                `json:"quotes_sent"`
	JobsWon         int                `json:"jobs_won"`
	JobsPending     int                `json:"jobs_pending"`
	JobsLost        int                `json:"jobs_lost"`
	WinRate         float64            `json:"win_rate"`
	ClosedRevenue   float64            `json:"closed_revenue"`
	DepositsPaid    float64            `json:"deposits_paid"`
	BalanceDue      float64            `json:"balance_due"`
	TotalCollected  float64            `json:"total_collected"`
	RevenueByStatus map[string]float64 `json:"revenue_by_status"`
}

// Summarize computes the dashboard KPIs. Money totals cover Won jobs only;
// the status breakdown covers every filtered sale. WinRate is a percentage
// of filtered quotes, 0 when there are none.
func Summarize(sales []models.Sale, collections []models.Collection, f SalesFilter) Summary {
	sum := Summary{RevenueByStatus: map[string]float64{}}
	wonIDs := map[int]bool{}
	for _, s := range sales {
		if !f.matches(s) {
			continue
		}
		sum.QuotesSent++
		sum.RevenueByStatus[s.Status] += s.QuotedPrice
		switch s.Status {
		case models.SaleStatusWon:
			sum.JobsWon++
			wonIDs[s.QuoteID] = true
			sum.ClosedRevenue += s.QuotedPrice
			sum.DepositsPaid += s.DepositPaid
			if due := s.QuotedPrice - s.DepositPaid; due > 0 {
				sum.BalanceDue += due
			}
		case models.SaleStatusSent:
			sum.JobsPending++
		case models.SaleStatusLost:
			sum.JobsLost++
		}
	}
	for _, c := range collections {
		if wonIDs[c.QuoteID] {
			sum.TotalCollected += c.DepositPaid
		}
	}
	if sum.QuotesSent > 0 {
		sum.WinRate = float64(sum.JobsWon) / float64(sum.QuotesSent) * 100
	}
	return sum
}
