// internal/agents/stock/provider.go
package stock

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "mock-agents/internal/common/errors"
	commonhttp "mock-agents/internal/common/http"
	"mock-agents/internal/common/logger"
	"mock-agents/internal/common/metrics"
)

const (
	PersonaName = "stock"
	stageQuote  = "quote"
)

var (
	ErrNoQuoteData  = errors.New("NO_QUOTE_DATA")
	ErrMissingPrice = errors.New("MISSING_PRICE")
)

// Provider resolves a symbol to a Quote. Fetch never fails: any upstream
// problem yields a synthetic quote instead.
type Provider struct {
	config *Config
	client *commonhttp.Client
	random RandomSource
	logger logger.Logger
	tracer trace.Tracer
}

func NewProvider(config *Config, random RandomSource, log logger.Logger) *Provider {
	if random == nil {
		random = DefaultRandomSource()
	}
	return &Provider{
		config: config,
		client: commonhttp.NewClient(config.Timeout, commonhttp.WithUserAgent(config.UserAgent)),
		random: random,
		logger: log.With(map[string]interface{}{
			"component": "quote-provider",
		}),
		tracer: otel.Tracer("mock-agents/stock"),
	}
}

func (p *Provider) Fetch(ctx context.Context, symbol string) *Quote {
	ctx, span := p.tracer.Start(ctx, "stock.fetch_quote",
		trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	start := time.Now()
	quote, err := p.fetchLive(ctx, symbol)
	metrics.ProviderDuration.WithLabelValues(PersonaName, stageQuote).Observe(time.Since(start).Seconds())

	if err == nil {
		span.SetAttributes(attribute.String("source", SourceLive))
		p.logger.Info("live quote fetched", map[string]interface{}{
			"symbol": symbol,
			"price":  quote.CurrentPrice,
		})
		return quote
	}

	stdErr := classify(err)
	metrics.ProviderFallbacks.WithLabelValues(PersonaName, stageQuote, string(stdErr.Code)).Inc()
	span.RecordError(stdErr)
	span.SetStatus(codes.Error, string(stdErr.Code))
	span.SetAttributes(attribute.String("source", SourceMock))

	fields := stdErr.Fields()
	fields["symbol"] = symbol
	p.logger.Warn("live quote unavailable, using synthetic data", fields)

	return SyntheticQuote(symbol, p.random)
}

func (p *Provider) fetchLive(ctx context.Context, symbol string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", p.config.QuoteBaseURL, url.PathEscape(symbol))

	var payload chartResponse
	if err := p.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if len(payload.Chart.Result) == 0 {
		if payload.Chart.Error != nil {
			return nil, fmt.Errorf("%w: %s", ErrNoQuoteData, payload.Chart.Error.Description)
		}
		return nil, ErrNoQuoteData
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return nil, ErrMissingPrice
	}
	return quoteFromMeta(symbol, meta), nil
}

func quoteFromMeta(symbol string, meta chartMeta) *Quote {
	current := *meta.RegularMarketPrice
	previous := firstOf(meta.PreviousClose, meta.ChartPreviousClose)
	change := current - previous

	q := &Quote{
		Symbol:        symbol,
		CompanyName:   firstNonEmpty(meta.LongName, meta.ShortName, symbol),
		CurrentPrice:  current,
		PreviousClose: previous,
		Change:        change,
		ChangePercent: changePercent(change, previous),
		Currency:      firstNonEmpty(meta.Currency, "USD"),
		Exchange:      firstNonEmpty(meta.ExchangeName, "Unknown"),
		MarketCap:     "N/A",
		Source:        SourceLive,
	}
	if meta.MarketCap != nil {
		q.MarketCap = message.NewPrinter(language.English).Sprintf("%.0f", *meta.MarketCap)
	}
	return q
}

func classify(err error) *apperrors.StandardError {
	if commonhttp.IsTimeout(err) {
		return apperrors.NewProviderTimeoutError(stageQuote, err)
	}
	return apperrors.NewProviderUnavailableError(stageQuote, err)
}

func firstOf(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
