// internal/delivery/delivery.go
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"mock-agents/internal/agent"
	"mock-agents/internal/common/identity"
	"mock-agents/internal/common/logger"
	"mock-agents/internal/common/metrics"
	"mock-agents/internal/common/validation"
)

const (
	ModeJSON   = "json"
	ModeStream = "stream"
)

var ErrStreamingUnsupported = errors.New("response writer cannot flush")

type Options struct {
	ModelID  string
	Strategy Strategy
	IDs      identity.Generator
	Clock    identity.Clock
	// Strict validates every envelope against the wire schema and logs violations.
	Strict bool
}

// Deliverer renders replies on the chat-completion wire, either as a single
// JSON object or as an event stream.
type Deliverer struct {
	modelID  string
	strategy Strategy
	ids      identity.Generator
	clock    identity.Clock
	strict   bool
	logger   logger.Logger
}

func New(opts Options, log logger.Logger) *Deliverer {
	if opts.Strategy == nil {
		opts.Strategy = SingleChunk{}
	}
	if opts.IDs == nil {
		opts.IDs = identity.UUIDGenerator{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Deliverer{
		modelID:  opts.ModelID,
		strategy: opts.Strategy,
		ids:      opts.IDs,
		clock:    opts.Clock,
		strict:   opts.Strict,
		logger: log.With(map[string]interface{}{
			"model":    opts.ModelID,
			"strategy": opts.Strategy.Name(),
		}),
	}
}

func (d *Deliverer) ModelID() string {
	return d.modelID
}

// Completion builds the non-streaming envelope for reply.
func (d *Deliverer) Completion(reply *agent.Reply) *Completion {
	return &Completion{
		ID:      identity.CompletionID(d.ids, reply.Persona),
		Object:  ObjectCompletion,
		Created: d.clock().Unix(),
		Model:   d.modelID,
		Choices: []Choice{{
			Index: 0,
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: reply.Text,
			},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: Usage{
			PromptTokens:     agent.PromptTokens,
			CompletionTokens: reply.CompletionTokens,
			TotalTokens:      reply.TotalTokens(),
		},
	}
}

// Chunks builds the content chunks for reply followed by the closing chunk.
// All chunks share one id.
func (d *Deliverer) Chunks(reply *agent.Reply) []Chunk {
	id := identity.CompletionID(d.ids, reply.Persona)
	created := d.clock().Unix()

	parts := d.strategy.Split(reply.Text)
	chunks := make([]Chunk, 0, len(parts)+1)
	for _, part := range parts {
		chunks = append(chunks, d.chunk(id, created, openai.ChatCompletionStreamChoiceDelta{Content: part}, ""))
	}
	return append(chunks, d.chunk(id, created, openai.ChatCompletionStreamChoiceDelta{}, openai.FinishReasonStop))
}

func (d *Deliverer) chunk(id string, created int64, delta openai.ChatCompletionStreamChoiceDelta, finish openai.FinishReason) Chunk {
	return Chunk{
		ID:      id,
		Object:  ObjectChunk,
		Created: created,
		Model:   d.modelID,
		Choices: []ChunkChoice{{Index: 0, Delta: delta, FinishReason: finish}},
	}
}

// WriteJSON sends reply as one chat.completion object.
func (d *Deliverer) WriteJSON(w http.ResponseWriter, reply *agent.Reply) error {
	completion := d.Completion(reply)
	if d.strict {
		d.check("completion", validation.ValidateCompletion(completion))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(completion); err != nil {
		return fmt.Errorf("write completion: %w", err)
	}

	metrics.Completions.WithLabelValues(reply.Persona, string(reply.State), ModeJSON).Inc()
	d.logger.Info("completion delivered", map[string]interface{}{
		"id":     completion.ID,
		"state":  agent.StateDelivered,
		"tokens": reply.CompletionTokens,
	})
	return nil
}

// WriteStream sends reply as server-sent events terminated by [DONE]. It
// stops early when ctx is done or a write fails.
func (d *Deliverer) WriteStream(ctx context.Context, w http.ResponseWriter, reply *agent.Reply) error {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	chunks := d.Chunks(reply)
	last := len(chunks) - 1
	for i, chunk := range chunks {
		if d.strict {
			d.check("chunk", validation.ValidateChunk(chunk))
		}
		if err := d.writeEvent(w, rc, chunk); err != nil {
			return d.abort(reply, i, err)
		}
		if i == last {
			break
		}
		metrics.StreamChunks.WithLabelValues(reply.Persona).Inc()

		if pause := d.strategy.Pause(); pause > 0 {
			timer := time.NewTimer(pause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return d.abort(reply, i+1, ctx.Err())
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return d.abort(reply, i+1, err)
		}
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", DoneSentinel); err != nil {
		return d.abort(reply, len(chunks), err)
	}
	if err := rc.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrStreamingUnsupported, err)
	}

	metrics.Completions.WithLabelValues(reply.Persona, string(reply.State), ModeStream).Inc()
	d.logger.Info("stream delivered", map[string]interface{}{
		"id":     chunks[0].ID,
		"chunks": last,
		"state":  agent.StateDelivered,
	})
	return nil
}

func (d *Deliverer) writeEvent(w http.ResponseWriter, rc *http.ResponseController, chunk Chunk) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrStreamingUnsupported, err)
	}
	return nil
}

func (d *Deliverer) abort(reply *agent.Reply, sent int, err error) error {
	metrics.StreamsAborted.WithLabelValues(reply.Persona).Inc()
	d.logger.Warn("stream stopped early", map[string]interface{}{
		"chunksSent": sent,
		"error":      err.Error(),
	})
	return err
}

func (d *Deliverer) check(kind string, result *validation.ValidationResult) {
	if result.Valid {
		return
	}
	d.logger.Error("outgoing envelope violates wire schema", map[string]interface{}{
		"kind":   kind,
		"errors": result.GetErrorMessages(),
	})
}
