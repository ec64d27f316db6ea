package stock

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-agents/internal/agent"
)

func gainingQuote() *Quote {
	return &Quote{
		Symbol:        "NVDA",
		CompanyName:   "NVIDIA Corporation",
		CurrentPrice:  1234.5,
		PreviousClose: 1200.25,
		Change:        34.25,
		ChangePercent: 2.853572,
		Currency:      "USD",
		Exchange:      "NASDAQ",
		MarketCap:     "N/A (Mock)",
		Source:        SourceMock,
	}
}

func losingQuote() *Quote {
	return &Quote{
		Symbol:        "TSLA",
		CompanyName:   "Tesla, Inc.",
		CurrentPrice:  240.1,
		PreviousClose: 248.9,
		Change:        -8.8,
		ChangePercent: -3.535556,
		Currency:      "USD",
		Exchange:      "NASDAQ",
		MarketCap:     "N/A",
		Source:        SourceLive,
	}
}

func TestFormat_Price(t *testing.T) {
	text := Format(gainingQuote(), agent.IntentPrice)

	assert.True(t, strings.HasPrefix(text, "💰 **NVIDIA Corporation (NVDA) Stock Price**"))
	assert.Contains(t, text, "**Current Price**: USD 1,234.50")
	assert.Contains(t, text, "📈 **Change**: +34.25 (+2.85%)")
	assert.Contains(t, text, "**Previous Close**: USD 1,200.25")
	assert.Contains(t, text, "📊 **Market Status**: Gaining value today")
	assert.Contains(t, text, "💎 **Market Cap**: N/A (Mock)")
}

func TestFormat_PriceLosing(t *testing.T) {
	text := Format(losingQuote(), agent.IntentPrice)

	assert.Contains(t, text, "📉 **Change**: -8.80 (-3.54%)")
	assert.Contains(t, text, "Losing value today")
	assert.NotContains(t, text, "📈")
}

func TestFormat_Performance(t *testing.T) {
	text := Format(losingQuote(), agent.IntentPerformance)

	assert.True(t, strings.HasPrefix(text, "📊 **Tesla, Inc. (TSLA) Performance Summary**"))
	assert.Contains(t, text, "📉 **Daily Change**: -8.80 (-3.54%)")
	assert.Contains(t, text, "The stock is currently declining today")
	assert.Contains(t, text, "Trading at USD 240.10 per share")
	assert.Contains(t, text, "Experiencing some selling pressure in recent trading")
	assert.Contains(t, text, "🏢 **Company**: Tesla, Inc.")
}

func TestFormat_News(t *testing.T) {
	tests := []struct {
		name  string
		quote *Quote
		want  []string
	}{
		{
			name:  "gaining",
			quote: gainingQuote(),
			want: []string{
				"📰 **Latest Updates for NVIDIA Corporation (NVDA)**",
				"**Current Price**: USD 1,234.50 (+2.85%)",
				"Stock is up 2.85% today",
				"Trading volume appears healthy",
				"bullish sentiment",
			},
		},
		{
			name:  "losing with large move",
			quote: losingQuote(),
			want: []string{
				"**Current Price**: USD 240.10 (-3.54%)",
				"Stock is down 3.54% today",
				"Trading volume appears elevated",
				"bearish sentiment",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := Format(tt.quote, agent.IntentNews)
			for _, w := range tt.want {
				assert.Contains(t, text, w)
			}
		})
	}
}

func TestFormat_Trend(t *testing.T) {
	text := Format(gainingQuote(), agent.IntentTrend)

	assert.True(t, strings.HasPrefix(text, "📈 **NVIDIA Corporation (NVDA) Trend Snapshot**"))
	assert.Contains(t, text, "**Direction**: Upward since the previous close")
	assert.Contains(t, text, "**Previous Close**: USD 1,200.25")
}

func TestFormat_ZeroChangeIsGaining(t *testing.T) {
	q := gainingQuote()
	q.Change, q.ChangePercent = 0, 0

	text := Format(q, agent.IntentPrice)

	assert.Contains(t, text, "📈 **Change**: +0.00 (+0.00%)")
}

var (
	currentPricePattern  = regexp.MustCompile(`\*\*Current Price\*\*: [A-Z]{3} ([\d,]+\.\d{2})`)
	previousClosePattern = regexp.MustCompile(`\*\*Previous Close\*\*: [A-Z]{3} ([\d,]+\.\d{2})`)
	changePattern        = regexp.MustCompile(`\*\*Change\*\*: ([+-]?\d+\.\d{2}) \(([+-]?\d+\.\d{2})%\)`)
)

func parseNumber(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	require.NoError(t, err)
	return v
}

func TestFormat_RoundTripsNumbers(t *testing.T) {
	quotes := []*Quote{gainingQuote(), losingQuote()}
	for _, seed := range []float64{0.01, 0.33, 0.5, 0.77, 0.99} {
		for _, symbol := range []string{"AAPL", "NVDA", "ZZZ"} {
			quotes = append(quotes, SyntheticQuote(symbol, &sequenceSource{values: []float64{seed, 1 - seed}}))
		}
	}

	for _, q := range quotes {
		text := Format(q, agent.IntentPrice)

		m := currentPricePattern.FindStringSubmatch(text)
		require.NotNil(t, m, text)
		assert.InDelta(t, q.CurrentPrice, parseNumber(t, m[1]), 0.006)

		m = previousClosePattern.FindStringSubmatch(text)
		require.NotNil(t, m, text)
		assert.InDelta(t, q.PreviousClose, parseNumber(t, m[1]), 0.006)

		m = changePattern.FindStringSubmatch(text)
		require.NotNil(t, m, text)
		assert.InDelta(t, q.Change, parseNumber(t, m[1]), 0.006)
		assert.InDelta(t, q.ChangePercent, parseNumber(t, m[2]), 0.006)
	}
}
