// internal/agents/stock/models.go
package stock

const (
	SourceLive = "live"
	SourceMock = "mock"
)

// Quote is a fully populated market record, live or synthetic.
type Quote struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"companyName"`
	CurrentPrice  float64 `json:"currentPrice"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Currency      string  `json:"currency"`
	Exchange      string  `json:"exchange"`
	MarketCap     string  `json:"marketCap"`
	Source        string  `json:"source"`
}

// Gaining reports the sign branch used by every template. Zero counts as gaining.
func (q *Quote) Gaining() bool {
	return q.Change >= 0
}

// chartResponse is the subset of the Yahoo chart payload the provider reads.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"previousClose"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
	Currency           string   `json:"currency"`
	ExchangeName       string   `json:"exchangeName"`
	LongName           string   `json:"longName"`
	ShortName          string   `json:"shortName"`
	MarketCap          *float64 `json:"marketCap"`
}
