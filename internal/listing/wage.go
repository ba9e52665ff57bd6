package listing

import "fmt"

// WageInterval values mirror the job_listing_wage_interval enum in PostgreSQL.
type WageInterval string

const (
	WageHourly  WageInterval = "hourly"
	WageMonthly WageInterval = "monthly"
	WageYearly  WageInterval = "yearly"
)

// hoursPerYear assumes a 40 hr/week, 52 week working year.
const hoursPerYear = 2080

// ParseWageInterval converts a raw string to a WageInterval, returning an
// error for unknown values.
func ParseWageInterval(s string) (WageInterval, error) {
	wi := WageInterval(s)
	switch wi {
	case WageHourly, WageMonthly, WageYearly:
		return wi, nil
	}
	return "", fmt.Errorf("unknown wage interval %q", s)
}

// NormalizeAnnual converts an amount in the given interval to its annual
// equivalent, for range comparison only — stored rows are never rewritten.
// An unknown interval is a programming error (the enum is exhaustive) and
// panics rather than silently defaulting.
func NormalizeAnnual(amount int, interval WageInterval) int {
	switch interval {
	case WageHourly:
		return amount * hoursPerYear
	case WageMonthly:
		return amount * 12
	case WageYearly:
		return amount
	}
	panic(fmt.Sprintf("listing: unreachable wage interval %q", interval))
}

// wageAnnualSQL is the query-time counterpart of NormalizeAnnual: a CASE
// expression over wage_interval. Unknown intervals yield NULL, so the row is
// excluded under any salary bound.
const wageAnnualSQL = `CASE l.wage_interval
	WHEN 'hourly' THEN l.wage * 2080
	WHEN 'monthly' THEN l.wage * 12
	WHEN 'yearly' THEN l.wage
END`
