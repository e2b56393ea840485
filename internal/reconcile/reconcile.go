// Package reconcile keeps the three record sets mutually consistent. The
// collections ledger is the single source of truth for how much has been
// paid against a quote; everything else here is derived from it.
package reconcile

import (
	"github.com/shopspring/decimal"

	"opsboard/internal/models"
)

// RollupDeposits re-derives every sale's DepositPaid and DepositPercent from
// the collections ledger. The returned slice is a copy; inputs are not
// mutated. Sales with no ledger rows get 0/0, previously cached values are
// always overwritten. Idempotent: the ledger never changes here, so a second
// application yields the same result.
func RollupDeposits(sales []models.Sale, collections []models.Collection) []models.Sale {
	paidByQuote := make(map[int]float64, len(sales))
	for _, c := range collections {
		paidByQuote[c.QuoteID] += c.DepositPaid
	}
	out := make([]models.Sale, len(sales))
	copy(out, sales)
	for i := range out {
		total := paidByQuote[out[i].QuoteID]
		out[i].DepositPaid = total
		out[i].DepositPercent = Percent(total, out[i].QuotedPrice)
	}
	return out
}

// RecomputeBalances broadcasts each quote's current balance onto every
// ledger row of that quote. Must run after RollupDeposits: the balance uses
// the just-rolled-up DepositPaid. Ledger rows referencing an unknown quote
// get a balance of 0. The returned slice is a copy.
func RecomputeBalances(sales []models.Sale, collections []models.Collection) []models.Collection {
	balanceByQuote := make(map[int]float64, len(sales))
	for _, s := range sales {
		balance := s.QuotedPrice - s.DepositPaid
		if balance < 0 {
			balance = 0
		}
		balanceByQuote[s.QuoteID] = balance
	}
	out := make([]models.Collection, len(collections))
	copy(out, collections)
	for i := range out {
		out[i].BalanceDue = balanceByQuote[out[i].QuoteID]
	}
	return out
}

// Apply runs both derivations in the required order and returns the
// consistent pair. There is no incremental path: the sets are small (low
// thousands of rows) and full recomputation is the correctness mechanism.
func Apply(sales []models.Sale, collections []models.Collection) ([]models.Sale, []models.Collection) {
	s := RollupDeposits(sales, collections)
	c := RecomputeBalances(s, collections)
	return s, c
}

// Percent returns paid/price*100 rounded to 2 places, 0 when price is not
// positive.
func Percent(paid, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return decimal.NewFromFloat(paid).
		Div(decimal.NewFromFloat(price)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}
