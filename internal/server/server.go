// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"mock-agents/internal/agent"
	apperrors "mock-agents/internal/common/errors"
	"mock-agents/internal/common/logger"
	"mock-agents/internal/delivery"
)

const (
	defaultMaxBodyBytes = 1 << 20
	readHeaderTimeout   = 5 * time.Second
)

type Options struct {
	OwnedBy      string
	ModelCreated int64
	MaxBodyBytes int64
}

// Server exposes one persona over the chat-completion HTTP surface.
type Server struct {
	engine    *agent.Engine
	deliverer *delivery.Deliverer
	ownedBy   string
	created   int64
	maxBody   int64
	logger    logger.Logger
}

// chatRequest is the subset of the chat-completion body the agents read.
// Messages accept both plain-string and multi-part content.
type chatRequest struct {
	Messages []openai.ChatCompletionMessage `json:"messages"`
	Stream   bool                           `json:"stream"`
}

func New(opts Options, engine *agent.Engine, deliverer *delivery.Deliverer, log logger.Logger) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Server{
		engine:    engine,
		deliverer: deliverer,
		ownedBy:   opts.OwnedBy,
		created:   opts.ModelCreated,
		maxBody:   opts.MaxBodyBytes,
		logger: log.With(map[string]interface{}{
			"persona": engine.Persona(),
		}),
	}
}

// Handler returns the routed persona API wrapped in CORS and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", s.handleModels)
	mux.HandleFunc("POST /v1/chat/completions", s.handleChatCompletions)
	return withMetrics(s.engine.Persona(), withCORS(mux))
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(delivery.NewModelList(s.deliverer.ModelID(), s.ownedBy, s.created)); err != nil {
		s.logger.Warn("failed to write model list", map[string]interface{}{"error": err.Error()})
	}
}

// handleChatCompletions always answers 200 with a chat completion, even for
// bodies it cannot decode.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	req := s.decode(w, r)
	reply := s.engine.Reply(r.Context(), req)

	var err error
	if req.Stream {
		err = s.deliverer.WriteStream(r.Context(), w, reply)
	} else {
		err = s.deliverer.WriteJSON(w, reply)
	}
	if err != nil {
		s.logger.WithError(err).Warn("reply delivery incomplete", map[string]interface{}{
			"stream": req.Stream,
		})
	}
}

// decode maps the body onto an agent request. An undecodable body yields an
// empty request, which the engine answers with the greeting.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) *agent.Request {
	var body chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&body); err != nil {
		stdErr := apperrors.NewMalformedRequestError(err)
		s.logger.Warn("malformed chat completion request", stdErr.Fields())
		return &agent.Request{}
	}

	req := &agent.Request{
		Messages: make([]agent.Message, 0, len(body.Messages)),
		Stream:   body.Stream,
	}
	for _, m := range body.Messages {
		req.Messages = append(req.Messages, agent.Message{Role: m.Role, Content: messageText(m)})
	}
	return req
}

// messageText flattens multi-part content into its text parts.
func messageText(m openai.ChatCompletionMessage) string {
	if len(m.MultiContent) == 0 {
		return m.Content
	}
	parts := make([]string, 0, len(m.MultiContent))
	for _, part := range m.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText && part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	return strings.Join(parts, " ")
}

// NewHTTPServer builds a listener-ready server. Request contexts are not tied
// to the serve context, so Run's shutdown drains in-flight streams.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// Listen binds srv's address so callers can report readiness before serving.
func Listen(srv *http.Server) (net.Listener, error) {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	return ln, nil
}

// Run serves srv on ln until ctx is done, then shuts it down within timeout.
// Connections still open when timeout elapses are closed.
func Run(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("listener started", map[string]interface{}{"addr": ln.Addr().String()})
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return fmt.Errorf("shutdown %s: %w", srv.Addr, err)
	}
	log.Info("listener stopped", map[string]interface{}{"addr": srv.Addr})
	return nil
}
