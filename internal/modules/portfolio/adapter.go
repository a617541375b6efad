// Package portfolio adapts category selections into backend build
// requests and translates the responses back to display form.
package portfolio

import (
	"fmt"

	"github.com/aristath/advisor/internal/clients/robo"
	"github.com/aristath/advisor/internal/modules/registry"
	"github.com/aristath/advisor/internal/modules/selection"
)

// Allocation is one position of a built portfolio in display form.
type Allocation struct {
	Ticker     string  `json:"ticker"`
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
}

// Result is a built portfolio with display labels resolved.
type Result struct {
	Name           string       `json:"name"`
	RiskBucket     string       `json:"riskBucket"`
	ExpectedReturn float64      `json:"expectedReturn"`
	ExpectedRisk   float64      `json:"expectedRisk"`
	Allocations    []Allocation `json:"allocations"`
}

// BuildRequestFor maps a validated category selection to a backend
// build request. An invalid selection here is a caller bug and is
// returned as an error.
func BuildRequestFor(categories []string, riskBucket string) (robo.BuildRequest, error) {
	if result := selection.Validate(categories); !result.IsValid {
		return robo.BuildRequest{}, fmt.Errorf("invalid selection: %v", result.Errors)
	}

	return robo.BuildRequest{
		RiskBucketCategory: BucketOrDefault(riskBucket),
		Tickers:            registry.TickersFor(categories),
	}, nil
}

// TranslateResponse resolves each allocation's display label from its
// ticker, falling back to the raw ticker when unmapped. The input is
// never mutated; percentages pass through verbatim.
func TranslateResponse(p *robo.Portfolio) Result {
	allocations := make([]Allocation, len(p.Allocations))
	for i, a := range p.Allocations {
		allocations[i] = Allocation{
			Ticker:     a.Ticker,
			Label:      registry.NameFor(a.Ticker),
			Percentage: a.Percentage,
		}
	}

	return Result{
		Name:           p.Name,
		RiskBucket:     p.RiskBucket.String(),
		ExpectedReturn: p.ExpectedReturn,
		ExpectedRisk:   p.ExpectedRisk,
		Allocations:    allocations,
	}
}
