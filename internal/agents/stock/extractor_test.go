package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mock-agents/internal/agent"
)

func TestExtract_Symbol(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "direct ticker", text: "What's the price of AAPL?", want: "AAPL"},
		{name: "ticker beats alias", text: "Is apple better than MSFT?", want: "MSFT"},
		{name: "first ticker wins", text: "Compare NVDA and AMD", want: "NVDA"},
		{name: "five letter ticker", text: "quote GOOGL please", want: "GOOGL"},
		{name: "six letters is not a ticker", text: "ABCDEF stock", want: ""},
		{name: "single letter is not a ticker", text: "I like it", want: ""},
		{name: "alias lowercase", text: "how is tesla doing", want: "TSLA"},
		{name: "alias mixed case", text: "Summarize Tesla's recent performance.", want: "TSLA"},
		{name: "alias inside word", text: "metaverse plays", want: "META"},
		{name: "alias order breaks ties", text: "google vs amazon", want: "GOOGL"},
		{name: "earlier table entry wins over earlier text", text: "netflix or apple", want: "AAPL"},
		{name: "alphabet", text: "alphabet earnings", want: "GOOGL"},
		{name: "facebook", text: "facebook stock", want: "META"},
		{name: "slack maps to legacy ticker", text: "what about slack", want: "WORK"},
		{name: "zoom", text: "zoom price", want: "ZM"},
		{name: "nothing", text: "hello there", want: ""},
		{name: "empty", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text).Key)
		})
	}
}

func TestExtract_Intent(t *testing.T) {
	tests := []struct {
		text string
		want agent.Intent
	}{
		{"What's the price of AAPL?", agent.IntentPrice},
		{"Summarize Tesla's recent performance", agent.IntentPerformance},
		{"AAPL analysis", agent.IntentPerformance},
		{"latest on MSFT", agent.IntentNews},
		{"any news for NVDA", agent.IntentNews},
		{"show me a chart of TSLA", agent.IntentTrend},
		{"TSLA trend", agent.IntentTrend},
		{"latest performance chart for META", agent.IntentPerformance},
		{"news and graph for AMZN", agent.IntentNews},
		{"AMZN", agent.IntentPrice},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text).Intent)
		})
	}
}

func TestExtract_EveryAliasResolves(t *testing.T) {
	for _, a := range companyAliases {
		q := Extract("tell me about " + a.name)
		assert.Equal(t, a.symbol, q.Key, a.name)
		assert.True(t, q.Resolved())
	}
}
