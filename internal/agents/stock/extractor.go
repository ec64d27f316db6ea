// internal/agents/stock/extractor.go
package stock

import (
	"regexp"
	"strings"

	"mock-agents/internal/agent"
)

var tickerPattern = regexp.MustCompile(`\b([A-Z]{2,5})\b`)

type companyAlias struct {
	name   string
	symbol string
}

// companyAliases is checked in order; the first alias found in the text wins.
var companyAliases = []companyAlias{
	{"apple", "AAPL"},
	{"tesla", "TSLA"},
	{"microsoft", "MSFT"},
	{"google", "GOOGL"},
	{"alphabet", "GOOGL"},
	{"amazon", "AMZN"},
	{"nvidia", "NVDA"},
	{"meta", "META"},
	{"facebook", "META"},
	{"netflix", "NFLX"},
	{"spotify", "SPOT"},
	{"uber", "UBER"},
	{"zoom", "ZM"},
	{"slack", "WORK"},
	{"palantir", "PLTR"},
}

// intentKeywords is ordered by priority.
var intentKeywords = []struct {
	intent agent.Intent
	words  []string
}{
	{agent.IntentPerformance, []string{"performance", "summary", "analysis", "recent"}},
	{agent.IntentNews, []string{"news", "update", "latest"}},
	{agent.IntentTrend, []string{"chart", "graph", "trend"}},
}

// Extract finds a ticker and intent in free text. A literal uppercase ticker
// beats any company name.
func Extract(text string) agent.Query {
	lower := strings.ToLower(text)
	return agent.Query{
		Key:    extractSymbol(text, lower),
		Intent: classifyIntent(lower),
	}
}

func extractSymbol(text, lower string) string {
	if m := tickerPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, a := range companyAliases {
		if strings.Contains(lower, a.name) {
			return a.symbol
		}
	}
	return ""
}

func classifyIntent(lower string) agent.Intent {
	for _, group := range intentKeywords {
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				return group.intent
			}
		}
	}
	return agent.IntentPrice
}
