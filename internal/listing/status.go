// Package listing defines the job-listing lifecycle state machine.
//
// Status graph (cyclic — callers request "advance", never a target state):
//
//	draft ──► published ──► delisted
//	              ▲             │
//	              └─────────────┘
//
// Re-entering published from delisted does not reset postedAt; leaving
// published always clears isFeatured.
package listing

import "fmt"

// Status values mirror the job_listing_status enum in PostgreSQL.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusDelisted  Status = "delisted"
)

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusDraft, StatusPublished, StatusDelisted:
		return st, nil
	}
	return "", fmt.Errorf("unknown listing status %q", s)
}

// NextStatus returns the single allowed transition out of the current state.
func NextStatus(current Status) (Status, error) {
	switch current {
	case StatusDraft:
		return StatusPublished, nil
	case StatusPublished:
		return StatusDelisted, nil
	case StatusDelisted:
		return StatusPublished, nil
	}
	return "", fmt.Errorf("unknown listing status %q", current)
}

// IsPublished returns true when status is published (the only state visible
// to search).
func IsPublished(s Status) bool { return s == StatusPublished }
