package listing

import (
	"strings"
	"testing"
)

// ── searchQuery — visibility rule assembly ─────────────────────────────────

func TestSearchQuery_NoFilterNoPin(t *testing.T) {
	query, args := searchQuery(Filter{}, "")
	if !strings.Contains(query, "(l.status = 'published' AND TRUE)") {
		t.Errorf("empty filter should reduce to the bare visibility rule, got:\n%s", query)
	}
	if len(args) != 0 {
		t.Errorf("empty filter should carry no args, got %v", args)
	}
	if strings.Contains(query, "OR (l.id") {
		t.Error("no pinned branch expected without a pinned id")
	}
}

// The pinned branch must itself require published: a draft or delisted
// listing is never returned regardless of id match.
func TestSearchQuery_PinnedBranchStillRequiresPublished(t *testing.T) {
	query, args := searchQuery(Filter{City: "Austin"}, "pin-1")

	if !strings.Contains(query, "OR (l.id = $2 AND l.status = 'published')") {
		t.Errorf("pinned branch missing or misses the published rule:\n%s", query)
	}
	if len(args) != 2 || args[1] != "pin-1" {
		t.Errorf("args = %v, want city pattern followed by pinned id", args)
	}
	if got := strings.Count(query, "l.status = 'published'"); got != 2 {
		t.Errorf("both visibility branches must require published, found %d occurrences", got)
	}
}

func TestSearchQuery_JoinsOrgPublicFields(t *testing.T) {
	query, _ := searchQuery(Filter{}, "")
	if !strings.Contains(query, "JOIN organizations o ON o.id = l.organization_id") {
		t.Errorf("search must join the owning organization:\n%s", query)
	}
	if !strings.Contains(query, "o.id, o.name, o.image_url") {
		t.Errorf("search must select the org's public fields only:\n%s", query)
	}
}

func TestSearchQuery_OrderBySortMode(t *testing.T) {
	query, _ := searchQuery(Filter{Sort: SortOldest}, "")
	if !strings.Contains(query, "ORDER BY l.is_featured DESC, l.posted_at ASC, l.id ASC") {
		t.Errorf("oldest sort ordering missing:\n%s", query)
	}
}
