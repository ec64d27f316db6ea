// internal/agents/stock/persona.go
package stock

import (
	"context"

	"mock-agents/internal/agent"
	apperrors "mock-agents/internal/common/errors"
	"mock-agents/internal/common/logger"
)

const (
	Greeting = "Hello! I'm your Stock Market Agent. Ask me about stock prices, market performance, or company information. For example: 'What's the price of AAPL?' or 'Summarize Tesla's recent performance.'"

	noSymbolReply = "I couldn't identify a stock symbol in your query. Please specify a stock ticker (e.g., AAPL, TSLA, MSFT) or company name."
)

type Persona struct {
	provider *Provider
	logger   logger.Logger
}

func NewPersona(config *Config, random RandomSource, log logger.Logger) *Persona {
	log = log.With(map[string]interface{}{
		"persona": PersonaName,
	})
	return &Persona{
		provider: NewProvider(config, random, log),
		logger:   log,
	}
}

func (p *Persona) Name() string     { return PersonaName }
func (p *Persona) Greeting() string { return Greeting }

func (p *Persona) Respond(ctx context.Context, text string) agent.Outcome {
	query := Extract(text)
	if !query.Resolved() {
		return agent.Outcome{
			Text:  noSymbolReply,
			State: agent.StateExtractionFailed,
			Err:   apperrors.NewExtractionFailedError(text),
		}
	}
	p.logger.Debug("query extracted", map[string]interface{}{
		"symbol": query.Key,
		"intent": query.Intent,
		"state":  agent.StateExtracted,
	})

	quote := p.provider.Fetch(ctx, query.Key)
	p.logger.Debug("quote resolved", map[string]interface{}{
		"symbol": quote.Symbol,
		"source": quote.Source,
		"state":  agent.StateDataResolved,
	})

	return agent.Outcome{
		Text:  Format(quote, query.Intent),
		State: agent.StateFormatted,
	}
}
