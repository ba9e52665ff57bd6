package listing

import (
	"fmt"
	"strings"
)

// ─── Predicates ──────────────────────────────────────────────────────────────

// Op identifies how a Predicate compares its field against its value.
type Op int

const (
	// OpEq is an exact match.
	OpEq Op = iota
	// OpTitleLike is a case-insensitive substring match with all whitespace
	// stripped from both sides before comparison. "Senior Dev" matches
	// "Senior   Developer II" — deliberate normalization, not a bug.
	OpTitleLike
	// OpSubstring is a case-insensitive substring match (whitespace kept).
	OpSubstring
	// OpAnyID restricts to an explicit id allow-list (re-filters a previously
	// AI-selected candidate set).
	OpAnyID
	// OpWageMin / OpWageMax compare the query-time normalized annual wage.
	// Rows with a null wage never satisfy either.
	OpWageMin
	OpWageMax
	// OpSkillsOverlap requires a non-empty intersection with the given set.
	OpSkillsOverlap
	// OpPostedSince requires posted_at within the last N days.
	OpPostedSince
	// OpAnyOf matches when the field equals any of the given values.
	OpAnyOf
)

// Predicate is one independent filter condition ANDed into a query.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// render emits the SQL fragment for p using placeholders starting at $next,
// returning the fragment, its positional args, and the next free placeholder.
func (p Predicate) render(next int) (string, []any, int) {
	switch p.Op {
	case OpEq:
		return fmt.Sprintf("l.%s = $%d", p.Field, next), []any{p.Value}, next + 1
	case OpTitleLike:
		needle := "%" + stripWhitespace(strings.ToLower(p.Value.(string))) + "%"
		return fmt.Sprintf("LOWER(REPLACE(l.%s, ' ', '')) LIKE $%d", p.Field, next), []any{needle}, next + 1
	case OpSubstring:
		return fmt.Sprintf("l.%s ILIKE $%d", p.Field, next), []any{"%" + p.Value.(string) + "%"}, next + 1
	case OpAnyID:
		return fmt.Sprintf("l.%s = ANY($%d)", p.Field, next), []any{p.Value}, next + 1
	case OpWageMin:
		frag := fmt.Sprintf("(l.wage IS NOT NULL AND (%s) >= $%d)", wageAnnualSQL, next)
		return frag, []any{p.Value}, next + 1
	case OpWageMax:
		frag := fmt.Sprintf("(l.wage IS NOT NULL AND (%s) <= $%d)", wageAnnualSQL, next)
		return frag, []any{p.Value}, next + 1
	case OpSkillsOverlap:
		return fmt.Sprintf("l.%s && $%d", p.Field, next), []any{p.Value}, next + 1
	case OpPostedSince:
		frag := fmt.Sprintf("l.%s >= NOW() - ($%d * INTERVAL '1 day')", p.Field, next)
		return frag, []any{p.Value}, next + 1
	case OpAnyOf:
		return fmt.Sprintf("l.%s = ANY($%d)", p.Field, next), []any{p.Value}, next + 1
	}
	panic(fmt.Sprintf("listing: unreachable predicate op %d", p.Op))
}

// renderPredicates joins preds into one AND-ed SQL fragment with placeholders
// starting at $next. An empty list renders as "TRUE" so callers can splice it
// into a WHERE clause unconditionally.
func renderPredicates(preds []Predicate, next int) (string, []any, int) {
	if len(preds) == 0 {
		return "TRUE", nil, next
	}
	frags := make([]string, 0, len(preds))
	var args []any
	for _, p := range preds {
		frag, a, n := p.render(next)
		frags = append(frags, frag)
		args = append(args, a...)
		next = n
	}
	return strings.Join(frags, " AND "), args, next
}

// stripWhitespace removes every whitespace rune, mirroring the stored-side
// REPLACE(title, ' ', '') normalization.
func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
