// Package registry defines the asset categories available for portfolio
// construction and their mapping to tradable tickers.
package registry

import "strings"

// Category is an investable asset category backed by a single ticker.
type Category struct {
	Name        string `json:"name"`
	Ticker      string `json:"ticker"`
	Description string `json:"description"`
	Alternative bool   `json:"alternative"`
}

// categories is the canonical ordered list. Order matters for display.
var categories = []Category{
	{Name: "Large Cap", Ticker: "SPY", Description: "Large capitalization stocks - established companies with market cap over $10B"},
	{Name: "Mid Cap", Ticker: "IJH", Description: "Mid capitalization stocks - growing companies with market cap $2B-$10B"},
	{Name: "Small Cap", Ticker: "IWM", Description: "Small capitalization stocks - emerging companies with market cap under $2B"},
	{Name: "Broad U.S. Bond Market", Ticker: "BND", Description: "Diversified bond exposure across U.S. government and corporate bonds"},
	{Name: "Gold", Ticker: "GLD", Description: "Precious metals exposure through gold investments"},
	{Name: "Silver", Ticker: "SLV", Description: "Precious metals exposure through silver investments"},
	{Name: "REIT ETF", Ticker: "VNQ", Description: "Real Estate Investment Trusts for property market exposure"},
	{Name: "Multi-Strategy Alternatives", Ticker: "FSMSX", Description: "Alternative investments using multiple strategies", Alternative: true},
	{Name: "Alternative Strategies", Ticker: "LTAFX", Description: "Non-traditional investment approaches and strategies", Alternative: true},
	{Name: "Quantified Alternatives", Ticker: "QALAX", Description: "Data-driven alternative investment strategies", Alternative: true},
	{Name: "Goldman Sachs Multi-Strategy", Ticker: "GMAMX", Description: "Goldman Sachs managed multi-strategy alternatives", Alternative: true},
	{Name: "Alpha Alternative Assets", Ticker: "AAACX", Description: "Alpha-focused alternative asset investments", Alternative: true},
	{Name: "First Trust Alternative Opportunities", Ticker: "VFLEX", Description: "First Trust managed alternative opportunities", Alternative: true},
	{Name: "New Alternatives", Ticker: "NALFX", Description: "Emerging alternative investment opportunities", Alternative: true},
	{Name: "Cryptocurrency", Ticker: "BTC-USD", Description: "Digital currency and blockchain-based investments", Alternative: true},
}

var (
	byName   = make(map[string]Category, len(categories))
	byTicker = make(map[string]Category, len(categories))
)

func init() {
	for _, c := range categories {
		byName[c.Name] = c
		byTicker[c.Ticker] = c
	}
}

// All returns every available category in display order.
func All() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Preset returns the default selection offered to new clients.
// Alternatives and crypto are opt-in only.
func Preset() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if !c.Alternative {
			out = append(out, c)
		}
	}
	return out
}

// ByName looks up a category by its display name.
func ByName(name string) (Category, bool) {
	c, ok := byName[name]
	return c, ok
}

// ByTicker looks up a category by its backing ticker.
func ByTicker(ticker string) (Category, bool) {
	c, ok := byTicker[ticker]
	return c, ok
}

// TickerFor returns the ticker for a category name, or the name itself
// if it is not a known category. Raw tickers pass through unchanged.
func TickerFor(name string) string {
	if c, ok := byName[name]; ok {
		return c.Ticker
	}
	return name
}

// NameFor returns the category name for a ticker, or the ticker itself
// when no mapping exists.
func NameFor(ticker string) string {
	if c, ok := byTicker[ticker]; ok {
		return c.Name
	}
	return ticker
}

// TickersFor maps category names to a space-joined ticker string,
// the wire format the portfolio backend expects.
func TickersFor(names []string) string {
	tickers := make([]string, len(names))
	for i, name := range names {
		tickers[i] = TickerFor(name)
	}
	return strings.Join(tickers, " ")
}
