// Package income estimates a suggested annual investment range from a
// client's reported annual income.
package income

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Unknown is returned when no bracket matches the income.
// Unreachable for non-negative incomes, kept as a guard.
const Unknown = "Unable to calculate investment range"

// bracket maps an income band to the share of income available for
// investment.
type bracket struct {
	min int64
	max int64 // inclusive; -1 means unbounded
	pct float64
}

var brackets = []bracket{
	{0, 24999, 0.184},
	{25000, 49999, 0.182},
	{50000, 74999, 0.222},
	{75000, 99999, 0.352},
	{100000, -1, 0.351},
}

// Range is an estimated annual investment range in whole dollars.
type Range struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// EstimateRange computes the investment range for an annual income.
// The second return value is false when the income falls outside all
// brackets (negative income).
func EstimateRange(annualIncome int64) (Range, bool) {
	var pct float64
	found := false
	for _, b := range brackets {
		if annualIncome >= b.min && (b.max < 0 || annualIncome <= b.max) {
			pct = b.pct
			found = true
			break
		}
	}
	if !found {
		return Range{}, false
	}

	base := float64(annualIncome) * pct
	g := granularity(annualIncome)
	rounded := int64(math.Floor(base/float64(g)+0.5)) * g

	low := rounded - g
	if low < 0 {
		low = 0
	}
	return Range{Low: low, High: rounded + g}, true
}

// granularity picks the rounding step by income magnitude.
func granularity(annualIncome int64) int64 {
	switch {
	case annualIncome >= 1_000_000:
		return 50_000
	case annualIncome >= 250_000:
		return 10_000
	default:
		return 5_000
	}
}

// Estimate returns a formatted dollar range for an annual income,
// e.g. "$5,000 to $15,000". Deterministic for a given income.
func Estimate(annualIncome int64) string {
	r, ok := EstimateRange(annualIncome)
	if !ok {
		return Unknown
	}
	return fmt.Sprintf("$%s to $%s", humanize.Comma(r.Low), humanize.Comma(r.High))
}
