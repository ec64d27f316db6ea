// internal/agents/stock/formatter.go
package stock

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"mock-agents/internal/agent"
)

const (
	priceTemplate = `💰 **%[1]s (%[2]s) Stock Price**

**Current Price**: %[3]s %[4]s
%[5]s **Change**: %[6]s%[7]s (%[6]s%[8]s%%)
**Previous Close**: %[3]s %[9]s

📊 **Market Status**: %[10]s today
🏛️ **Exchange**: %[11]s
💎 **Market Cap**: %[12]s

*Real-time data may have slight delays. Always verify with official financial sources for trading decisions.*`

	performanceTemplate = `📊 **%[1]s (%[2]s) Performance Summary**

💰 **Current Price**: %[3]s %[4]s
%[5]s **Daily Change**: %[6]s%[7]s (%[6]s%[8]s%%)

📈 **Recent Performance Analysis**:
- The stock is currently %[9]s today
- Trading at %[3]s %[4]s per share
- %[10]s in recent trading

🏢 **Company**: %[1]s
🏛️ **Exchange**: %[11]s
💎 **Market Cap**: %[12]s

*Data is for informational purposes only and should not be considered as investment advice.*`

	newsTemplate = `📰 **Latest Updates for %[1]s (%[2]s)**

💰 **Current Price**: %[3]s %[4]s (%[5]s%[6]s%%)

📊 **Market Activity**:
- Stock is %[7]s %[8]s%% today
- Trading volume appears %[9]s
- Current trend shows %[10]s sentiment

*For detailed news and analysis, please check financial news sources like Bloomberg, Reuters, or Yahoo Finance.*`

	trendTemplate = `%[5]s **%[1]s (%[2]s) Trend Snapshot**

💰 **Current Price**: %[3]s %[4]s
**Previous Close**: %[3]s %[9]s
%[5]s **Change**: %[6]s%[7]s (%[6]s%[8]s%%)

📊 **Direction**: %[10]s since the previous close
🏛️ **Exchange**: %[11]s

*Historical charts are not available from this agent. Use a charting service for intraday detail.*`
)

// Format renders a quote with the template for intent.
func Format(q *Quote, intent agent.Intent) string {
	p := message.NewPrinter(language.English)
	price := p.Sprintf("%.2f", q.CurrentPrice)
	previous := p.Sprintf("%.2f", q.PreviousClose)
	change := fmt.Sprintf("%.2f", q.Change)
	percent := fmt.Sprintf("%.2f", q.ChangePercent)

	indicator, sign := "📉", ""
	if q.Gaining() {
		indicator, sign = "📈", "+"
	}

	switch intent {
	case agent.IntentPerformance:
		return fmt.Sprintf(performanceTemplate,
			q.CompanyName, q.Symbol, q.Currency, price,
			indicator, sign, change, percent,
			pick(q.Gaining(), "gaining", "declining"),
			pick(q.Gaining(), "Positive momentum", "Experiencing some selling pressure"),
			q.Exchange, q.MarketCap)

	case agent.IntentNews:
		return fmt.Sprintf(newsTemplate,
			q.CompanyName, q.Symbol, q.Currency, price,
			sign, percent,
			pick(q.Gaining(), "up", "down"),
			fmt.Sprintf("%.2f", math.Abs(q.ChangePercent)),
			pick(math.Abs(q.ChangePercent) < 3, "healthy", "elevated"),
			pick(q.Gaining(), "bullish", "bearish"))

	case agent.IntentTrend:
		return fmt.Sprintf(trendTemplate,
			q.CompanyName, q.Symbol, q.Currency, price,
			indicator, sign, change, percent, previous,
			pick(q.Gaining(), "Upward", "Downward"),
			q.Exchange)

	default:
		return fmt.Sprintf(priceTemplate,
			q.CompanyName, q.Symbol, q.Currency, price,
			indicator, sign, change, percent, previous,
			pick(q.Gaining(), "Gaining value", "Losing value"),
			q.Exchange, q.MarketCap)
	}
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
