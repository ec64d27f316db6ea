// internal/agents/stock/fallback.go
package stock

import (
	"fmt"
	"math"
	"math/rand"
)

// RandomSource yields values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 {
	return rand.Float64()
}

// DefaultRandomSource is safe for concurrent use.
func DefaultRandomSource() RandomSource {
	return globalSource{}
}

type basePrice struct {
	price float64
	name  string
}

var basePrices = map[string]basePrice{
	"AAPL":  {180.50, "Apple Inc."},
	"TSLA":  {245.30, "Tesla, Inc."},
	"MSFT":  {420.80, "Microsoft Corporation"},
	"GOOGL": {142.65, "Alphabet Inc."},
	"AMZN":  {155.20, "Amazon.com Inc."},
	"NVDA":  {875.45, "NVIDIA Corporation"},
	"META":  {485.90, "Meta Platforms Inc."},
	"NFLX":  {485.25, "Netflix Inc."},
}

const (
	defaultBasePrice = 100.00
	mockMarketCap    = "N/A (Mock)"
	mockExchange     = "NASDAQ"
	currentSpread    = 5.0
	previousSpread   = 3.0
)

// SyntheticQuote builds a plausible quote from the base-price table.
// current = base + U(-5,5), previous = current + U(-3,3).
func SyntheticQuote(symbol string, src RandomSource) *Quote {
	base, ok := basePrices[symbol]
	if !ok {
		base = basePrice{defaultBasePrice, fmt.Sprintf("%s Corp", symbol)}
	}

	current := base.price + uniform(src, -currentSpread, currentSpread)
	previous := current + uniform(src, -previousSpread, previousSpread)
	change := current - previous

	return &Quote{
		Symbol:        symbol,
		CompanyName:   base.name,
		CurrentPrice:  round2(current),
		PreviousClose: round2(previous),
		Change:        round2(change),
		ChangePercent: round2(changePercent(change, previous)),
		Currency:      "USD",
		Exchange:      mockExchange,
		MarketCap:     mockMarketCap,
		Source:        SourceMock,
	}
}

func uniform(src RandomSource, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

func changePercent(change, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return change / previous * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
