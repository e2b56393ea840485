package models

import "time"

// Sale statuses as they appear on the quote intake form.
const (
	SaleStatusSent = "Sent"
	SaleStatusWon  = "Won"
	SaleStatusLost = "Lost"
)

// Collection statuses, latest ledger row wins.
const (
	CollectionStatusPending       = "Pending"
	CollectionStatusPartiallyPaid = "Partially Paid"
	CollectionStatusPaid          = "Paid"
	CollectionStatusOverdue       = "Overdue"
)

// Sale is one row per quote. DepositPaid and DepositPercent are caches
// derived from the collections ledger; the reconcile package overwrites them
// after every mutation and they must never be edited directly.
type Sale struct {
	QuoteID        int        `gorm:"column:quote_id;primaryKey" json:"quote_id"`
	Client         string     `gorm:"column:client" json:"client"`
	QuotedPrice    float64    `gorm:"column:quoted_price" json:"quoted_price"`
	Status         string     `gorm:"column:status" json:"status"`
	SalesRep       string     `gorm:"column:sales_rep" json:"sales_rep"`
	DepositPercent float64    `gorm:"column:deposit_percent" json:"deposit_percent"`
	DepositPaid    float64    `gorm:"column:deposit_paid" json:"deposit_paid"`
	StartDate      *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate        *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	JobType        string     `gorm:"column:job_type" json:"job_type"`

	Collections []Collection `gorm:"foreignKey:QuoteID;references:QuoteID;constraint:OnDelete:CASCADE" json:"-"`
	Assignments []Assignment `gorm:"foreignKey:QuoteID;references:QuoteID;constraint:OnDelete:CASCADE" json:"-"`

	// Extra holds non-canonical workbook columns so a save round-trips them.
	Extra map[string]string `gorm:"-" json:"-"`
}

func (Sale) TableName() string { return "saleslog" }

// Collection is one payment event against a quote. The ledger is
// append-only: corrections are new rows, never edits. BalanceDue is derived
// and broadcast across all rows of the same quote (the quote's current
// standing, not a per-payment snapshot).
type Collection struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	QuoteID        int        `gorm:"column:quote_id;index" json:"quote_id"`
	CollectionDate *time.Time `gorm:"column:collection_date" json:"collection_date,omitempty"`
	Client         string     `gorm:"column:client" json:"client"`
	DepositPaid    float64    `gorm:"column:deposit_paid" json:"deposit_paid"`
	BalanceDue     float64    `gorm:"column:balance_due" json:"balance_due"`
	Status         string     `gorm:"column:status" json:"status"`

	Extra map[string]string `gorm:"-" json:"-"`
}

func (Collection) TableName() string { return "collections" }

// Assignment is a crew task against a quote, independent lifecycle,
// append-only. DaysTaken is derived from the date range.
type Assignment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	QuoteID    int        `gorm:"column:quote_id;index" json:"quote_id"`
	Client     string     `gorm:"column:client" json:"client"`
	CrewMember string     `gorm:"column:crew_member" json:"crew_member"`
	StartDate  *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate    *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	Payment    float64    `gorm:"column:payment" json:"payment"`
	DaysTaken  int        `gorm:"column:days_taken" json:"days_taken"`
	Notes      string     `gorm:"column:notes" json:"notes"`

	Extra map[string]string `gorm:"-" json:"-"`
}

func (Assignment) TableName() string { return "assignments" }

// DaysBetween returns the whole days from start to end, clamped to >= 0.
// Either date missing yields 0.
func DaysBetween(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	days := int(end.Sub(*start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
