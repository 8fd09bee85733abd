// Package models defines the entities shared by the storage and service
// layers: accounts, shortened URLs and their visit statistics.
package models

import (
	"maps"
	"slices"
	"time"
)

// URL represents a shortened link and its associated metadata.
type URL struct {
	ShortCode string // ShortCode is the generated identifier used to reach the target.
	TargetURL string // TargetURL is the full address the short code resolves to.
	OwnerID   string // OwnerID is the ID of the account that created the link.
	VisitStats
	CreatedAt time.Time // CreatedAt is the timestamp when the link was created.
	UpdatedAt time.Time // UpdatedAt is the timestamp when the target was last changed.
}

// IsOwnedBy reports whether the link belongs to the given account.
func (u *URL) IsOwnedBy(accountID string) bool {
	return u.OwnerID == accountID
}

// Clone returns a deep copy of the URL so callers cannot mutate
// store-owned state through shared maps or slices.
func (u *URL) Clone() *URL {
	c := *u
	c.Visitors = maps.Clone(u.Visitors)
	c.VisitLog = slices.Clone(u.VisitLog)
	return &c
}

// Visit is a single traversal of a short link.
type Visit struct {
	VisitorID string    // VisitorID is the anonymous token of the visitor.
	VisitedAt time.Time // VisitedAt is the timestamp of the traversal.
}

// VisitStats contains the visit analytics of a shortened URL.
//
// Invariants: UniqueVisitors == len(Visitors), TotalVisits >= UniqueVisitors
// and len(VisitLog) == TotalVisits.
type VisitStats struct {
	TotalVisits    int64               // TotalVisits is the number of times the link has been followed.
	UniqueVisitors int64               // UniqueVisitors is the number of distinct visitors.
	Visitors       map[string]struct{} // Visitors is the set of visitor tokens seen so far.
	VisitLog       []Visit             // VisitLog holds one entry per visit, most recent first.
}

// RecordVisit counts a traversal by the given visitor. The log entry is
// prepended: the front of VisitLog is always the most recent visit.
func (s *VisitStats) RecordVisit(visitorID string, at time.Time) {
	s.TotalVisits++

	if _, seen := s.Visitors[visitorID]; !seen {
		if s.Visitors == nil {
			s.Visitors = make(map[string]struct{})
		}

		s.Visitors[visitorID] = struct{}{}
		s.UniqueVisitors++
	}

	s.VisitLog = append([]Visit{{VisitorID: visitorID, VisitedAt: at}}, s.VisitLog...)
}
