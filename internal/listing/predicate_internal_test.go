package listing

import (
	"reflect"
	"strings"
	"testing"
)

// In-package tests for SQL fragment rendering.

func TestRenderPredicates_EmptyIsTrue(t *testing.T) {
	frag, args, next := renderPredicates(nil, 1)
	if frag != "TRUE" || args != nil || next != 1 {
		t.Errorf("renderPredicates(nil) = (%q, %v, %d), want (TRUE, [], 1)", frag, args, next)
	}
}

func TestRender_TitleStripsWhitespaceBothSides(t *testing.T) {
	p := Predicate{Field: "title", Op: OpTitleLike, Value: "Senior  Dev"}
	frag, args, _ := p.render(1)

	if frag != "LOWER(REPLACE(l.title, ' ', '')) LIKE $1" {
		t.Errorf("title fragment = %q", frag)
	}
	if len(args) != 1 || args[0] != "%seniordev%" {
		t.Errorf("title args = %v, want [%%seniordev%%]", args)
	}
}

func TestRender_WageBoundsRequireNonNullWage(t *testing.T) {
	for _, op := range []Op{OpWageMin, OpWageMax} {
		frag, _, _ := Predicate{Field: "wage", Op: op, Value: 100000}.render(1)
		if !strings.Contains(frag, "l.wage IS NOT NULL") {
			t.Errorf("wage fragment must exclude null wages, got %q", frag)
		}
		if !strings.Contains(frag, "CASE l.wage_interval") {
			t.Errorf("wage fragment must normalize via CASE, got %q", frag)
		}
	}
}

func TestRender_PlaceholderNumbering(t *testing.T) {
	preds := []Predicate{
		{Field: "state_code", Op: OpEq, Value: "TX"},
		{Field: "city", Op: OpSubstring, Value: "Aus"},
		{Field: "id", Op: OpAnyID, Value: []string{"a", "b"}},
	}
	frag, args, next := renderPredicates(preds, 1)

	want := "l.state_code = $1 AND l.city ILIKE $2 AND l.id = ANY($3)"
	if frag != want {
		t.Errorf("fragment = %q, want %q", frag, want)
	}
	wantArgs := []any{"TX", "%Aus%", []string{"a", "b"}}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
	if next != 4 {
		t.Errorf("next placeholder = %d, want 4", next)
	}
}

func TestRender_PostedSince(t *testing.T) {
	frag, args, _ := Predicate{Field: "posted_at", Op: OpPostedSince, Value: 30}.render(2)
	if frag != "l.posted_at >= NOW() - ($2 * INTERVAL '1 day')" {
		t.Errorf("postedSince fragment = %q", frag)
	}
	if len(args) != 1 || args[0] != 30 {
		t.Errorf("postedSince args = %v", args)
	}
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		sort SortMode
		want string
	}{
		{SortFeatured, "l.is_featured DESC, l.posted_at DESC, l.id ASC"},
		{SortNewest, "l.is_featured DESC, l.posted_at DESC, l.id ASC"},
		{SortOldest, "l.is_featured DESC, l.posted_at ASC, l.id ASC"},
		{"", "l.is_featured DESC, l.posted_at DESC, l.id ASC"},
	}
	for _, c := range cases {
		if got := orderClause(c.sort); got != c.want {
			t.Errorf("orderClause(%q) = %q, want %q", c.sort, got, c.want)
		}
	}
}

func TestStripWhitespace(t *testing.T) {
	cases := map[string]string{
		"Senior   Developer": "SeniorDeveloper",
		" a\tb\nc ":          "abc",
		"":                   "",
	}
	for in, want := range cases {
		if got := stripWhitespace(in); got != want {
			t.Errorf("stripWhitespace(%q) = %q, want %q", in, got, want)
		}
	}
}
