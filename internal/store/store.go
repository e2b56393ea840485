// Package store is the authoritative load/save boundary for the three
// record sets. Backends differ (workbook file, SQL tables) but share one
// contract: Load never fails on a malformed cell, only on total
// unavailability of the medium; Save writes all three sets as one unit and
// leaves the previous durable state untouched on failure.
package store

import "opsboard/internal/models"

// Snapshot is the full in-memory state of the tracker.
type Snapshot struct {
	Sales       []models.Sale       `json:"sales"`
	Collections []models.Collection `json:"collections"`
	Assignments []models.Assignment `json:"assignments"`
}

// Clone returns a shallow-row copy so callers can hand out snapshots
// without exposing their backing arrays to mutation.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Sales:       make([]models.Sale, len(s.Sales)),
		Collections: make([]models.Collection, len(s.Collections)),
		Assignments: make([]models.Assignment, len(s.Assignments)),
	}
	copy(out.Sales, s.Sales)
	copy(out.Collections, s.Collections)
	copy(out.Assignments, s.Assignments)
	return out
}

// Store is the persistence contract. Save must be atomic with respect to
// partial failure and must retry briefly when the destination is locked by
// another process before giving up with an error.
type Store interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}
