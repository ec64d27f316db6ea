// internal/agent/engine.go
package agent

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "mock-agents/internal/common/errors"
	"mock-agents/internal/common/logger"
	"mock-agents/internal/common/metrics"
	"mock-agents/internal/common/observability"
)

// Persona is one mock agent: its greeting plus the extract, fetch and format
// steps behind Respond. Respond never fails; failures come back as canned
// text with Outcome.Err set.
type Persona interface {
	Name() string
	Greeting() string
	Respond(ctx context.Context, text string) Outcome
}

// Engine runs the persona pipeline for one decoded request.
type Engine struct {
	persona Persona
	logger  logger.Logger
	obs     *observability.Observability
	tracer  trace.Tracer
}

func NewEngine(persona Persona, log logger.Logger, obs *observability.Observability) *Engine {
	return &Engine{
		persona: persona,
		logger: log.With(map[string]interface{}{
			"persona": persona.Name(),
		}),
		obs:    obs,
		tracer: obs.Tracer("mock-agents/agent"),
	}
}

func (e *Engine) Persona() string {
	return e.persona.Name()
}

// Reply turns a request into a finished reply. The persona runs on a context
// detached from ctx's cancellation: a client disconnect does not abort an
// in-flight upstream call.
func (e *Engine) Reply(ctx context.Context, req *Request) *Reply {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "agent.reply",
		trace.WithAttributes(attribute.String("persona", e.persona.Name())))
	defer span.End()

	var out Outcome
	text, ok := LastUserMessage(req.Messages)
	if !ok {
		e.logger.Debug("no user message, sending greeting", map[string]interface{}{
			"messageCount": len(req.Messages),
		})
		out = Outcome{Text: e.persona.Greeting(), State: StateNoUserMessage}
	} else {
		e.logger.Debug("user message received", map[string]interface{}{
			"text":  text,
			"state": StateReceived,
		})
		out = e.persona.Respond(context.WithoutCancel(ctx), text)
	}

	if out.Err != nil {
		e.recordFailure(span, out)
	}

	reply := NewReply(e.persona.Name(), out.Text, out.State)
	span.SetAttributes(
		attribute.String("state", string(reply.State)),
		attribute.Int("completion_tokens", reply.CompletionTokens),
	)

	e.obs.RecordReply(ctx, reply.Persona, string(reply.State), reply.CompletionTokens, time.Since(start))
	e.logger.Info("reply ready", map[string]interface{}{
		"state":      reply.State,
		"tokens":     reply.CompletionTokens,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return reply
}

func (e *Engine) recordFailure(span trace.Span, out Outcome) {
	code := apperrors.CodeOf(out.Err)
	category := apperrors.GetErrorCategory(code)
	metrics.RecoveredFailures.WithLabelValues(e.persona.Name(), category).Inc()

	fields := map[string]interface{}{
		"state":    out.State,
		"category": category,
	}
	log := e.logger
	var stdErr *apperrors.StandardError
	if errors.As(out.Err, &stdErr) {
		for k, v := range stdErr.Fields() {
			fields[k] = v
		}
	} else {
		log = log.WithError(out.Err)
	}
	log.Warn("pipeline recovered from failure", fields)

	span.RecordError(out.Err)
	span.SetAttributes(attribute.String("error.category", category))
	span.SetStatus(spanStatus(out.Err), string(code))
}

// spanStatus marks only upstream failures as span errors; requests the
// persona could not interpret are still served normally.
func spanStatus(err error) codes.Code {
	if apperrors.IsProviderFailure(err) {
		return codes.Error
	}
	return codes.Unset
}
