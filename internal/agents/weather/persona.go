// internal/agents/weather/persona.go
package weather

import (
	"context"
	"fmt"

	"mock-agents/internal/agent"
	apperrors "mock-agents/internal/common/errors"
	"mock-agents/internal/common/logger"
)

const Greeting = "Hello! I'm your Weather Bot. Ask me about the forecast anywhere in the United States. For example: 'What's the weather in Seattle?' or 'Weather for Denver tomorrow.'"

// Format renders a successful forecast.
func Format(f *Forecast) string {
	return fmt.Sprintf("The forecast for %s is: %s", f.City, f.Description)
}

func locationNotFoundReply(city string) string {
	return fmt.Sprintf("Sorry, I couldn't find the location '%s'.", city)
}

func forecastUnavailableReply(city string) string {
	return fmt.Sprintf("Sorry, I couldn't fetch the forecast for %s.", city)
}

type Persona struct {
	config   *Config
	provider *Provider
	logger   logger.Logger
}

func NewPersona(config *Config, log logger.Logger) *Persona {
	log = log.With(map[string]interface{}{
		"persona": PersonaName,
	})
	return &Persona{
		config:   config,
		provider: NewProvider(config, log),
		logger:   log,
	}
}

func (p *Persona) Name() string     { return PersonaName }
func (p *Persona) Greeting() string { return Greeting }

func (p *Persona) Respond(ctx context.Context, text string) agent.Outcome {
	query := Extract(text, p.config.DefaultCity)
	p.logger.Debug("query extracted", map[string]interface{}{
		"city":   query.Key,
		"intent": query.Intent,
		"state":  agent.StateExtracted,
	})

	forecast, err := p.provider.Fetch(ctx, query.Key)
	if err != nil {
		reply := forecastUnavailableReply(query.Key)
		if apperrors.CodeOf(err) == apperrors.ErrCodeLocationNotFound {
			reply = locationNotFoundReply(query.Key)
		}
		return agent.Outcome{Text: reply, State: agent.StateDataUnresolvable, Err: err}
	}

	return agent.Outcome{Text: Format(forecast), State: agent.StateFormatted}
}
