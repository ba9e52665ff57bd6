package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// ─── Filter ──────────────────────────────────────────────────────────────────

// SortMode controls result ordering. Featured listings always sort first;
// the mode only changes the posted_at direction.
type SortMode string

const (
	SortFeatured SortMode = "featured"
	SortNewest   SortMode = "newest"
	SortOldest   SortMode = "oldest"
)

// Filter is an ephemeral, caller-supplied search query. Every field is
// optional; the zero value of a field contributes no predicate.
type Filter struct {
	Title               string
	LocationRequirement LocationRequirement
	City                string
	StateCode           string
	ExperienceLevel     ExperienceLevel
	Type                JobType
	IDs                 []string
	MinSalary           *int
	MaxSalary           *int
	Skills              []string
	PostedWithinDays    int
	RemoteOnly          bool
	Sort                SortMode
}

// ParseFilter coerces raw query values into a Filter. Malformed fields are
// dropped rather than surfaced as errors — a bad filter narrows nothing and
// never fails the request.
func ParseFilter(q url.Values) Filter {
	f := Filter{Sort: SortFeatured}

	f.Title = strings.TrimSpace(q.Get("title"))
	f.City = strings.TrimSpace(q.Get("city"))
	f.StateCode = strings.TrimSpace(q.Get("stateCode"))

	if lr, err := ParseLocationRequirement(q.Get("locationRequirement")); err == nil {
		f.LocationRequirement = lr
	}
	if el, err := ParseExperienceLevel(q.Get("experienceLevel")); err == nil {
		f.ExperienceLevel = el
	}
	if jt, err := ParseJobType(q.Get("type")); err == nil {
		f.Type = jt
	}

	f.IDs = splitCSV(q.Get("ids"))
	f.Skills = splitCSV(q.Get("skills"))

	if n, err := strconv.Atoi(q.Get("minSalary")); err == nil {
		f.MinSalary = &n
	}
	if n, err := strconv.Atoi(q.Get("maxSalary")); err == nil {
		f.MaxSalary = &n
	}
	if n, err := strconv.Atoi(q.Get("postedWithinDays")); err == nil && n > 0 {
		f.PostedWithinDays = n
	}

	f.RemoteOnly = q.Get("remoteOnly") == "true"

	switch SortMode(q.Get("sort")) {
	case SortNewest:
		f.Sort = SortNewest
	case SortOldest:
		f.Sort = SortOldest
	}

	return f
}

// Predicates translates the filter into an ordered conjunctive predicate
// list. Absent fields contribute nothing; the order matches the canonical
// source behavior for parity, though conjunction makes it irrelevant for
// correctness.
func (f Filter) Predicates() []Predicate {
	var preds []Predicate

	if f.Title != "" {
		preds = append(preds, Predicate{Field: "title", Op: OpTitleLike, Value: f.Title})
	}
	if f.LocationRequirement != "" {
		preds = append(preds, Predicate{Field: "location_requirement", Op: OpEq, Value: string(f.LocationRequirement)})
	}
	if f.City != "" {
		preds = append(preds, Predicate{Field: "city", Op: OpSubstring, Value: f.City})
	}
	if f.StateCode != "" {
		preds = append(preds, Predicate{Field: "state_code", Op: OpEq, Value: f.StateCode})
	}
	if f.ExperienceLevel != "" {
		preds = append(preds, Predicate{Field: "experience_level", Op: OpEq, Value: string(f.ExperienceLevel)})
	}
	if f.Type != "" {
		preds = append(preds, Predicate{Field: "type", Op: OpEq, Value: string(f.Type)})
	}
	if len(f.IDs) > 0 {
		preds = append(preds, Predicate{Field: "id", Op: OpAnyID, Value: f.IDs})
	}
	if f.MinSalary != nil {
		preds = append(preds, Predicate{Field: "wage", Op: OpWageMin, Value: *f.MinSalary})
	}
	if f.MaxSalary != nil {
		preds = append(preds, Predicate{Field: "wage", Op: OpWageMax, Value: *f.MaxSalary})
	}
	if len(f.Skills) > 0 {
		preds = append(preds, Predicate{Field: "skills", Op: OpSkillsOverlap, Value: f.Skills})
	}
	if f.PostedWithinDays > 0 {
		preds = append(preds, Predicate{Field: "posted_at", Op: OpPostedSince, Value: f.PostedWithinDays})
	}
	if f.RemoteOnly {
		preds = append(preds, Predicate{
			Field: "location_requirement",
			Op:    OpAnyOf,
			Value: []string{string(LocationRemote), string(LocationHybrid)},
		})
	}

	return preds
}

// orderClause maps a sort mode to its ORDER BY body. Featured always ranks
// first; a trailing id tiebreak keeps ordering deterministic.
func orderClause(sort SortMode) string {
	switch sort {
	case SortOldest:
		return "l.is_featured DESC, l.posted_at ASC, l.id ASC"
	default: // featured, newest
		return "l.is_featured DESC, l.posted_at DESC, l.id ASC"
	}
}

// splitCSV splits comma-separated input, trimming entries and dropping empty
// tokens.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
