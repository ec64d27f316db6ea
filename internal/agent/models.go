// internal/agent/models.go
package agent

import "strings"

const RoleUser = "user"

// PromptTokens is the fixed prompt-token estimate reported in usage blocks.
const PromptTokens = 10

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the decoded chat-completion body. Only user messages matter.
type Request struct {
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type Intent string

const (
	IntentPrice       Intent = "price"
	IntentPerformance Intent = "performance"
	IntentNews        Intent = "news"
	IntentTrend       Intent = "trend"
	IntentForecast    Intent = "forecast"
)

// Query is the output of an entity extractor. An empty Key means nothing
// usable was found in the message.
type Query struct {
	Key    string `json:"key,omitempty"`
	Intent Intent `json:"intent"`
}

func (q Query) Resolved() bool {
	return q.Key != ""
}

// State tracks how far a request travelled through the pipeline.
type State string

const (
	StateReceived         State = "RECEIVED"
	StateExtracted        State = "EXTRACTED"
	StateDataResolved     State = "DATA_RESOLVED"
	StateFormatted        State = "FORMATTED"
	StateDelivered        State = "DELIVERED"
	StateNoUserMessage    State = "NO_USER_MESSAGE"
	StateExtractionFailed State = "EXTRACTION_FAILED"
	StateDataUnresolvable State = "DATA_UNRESOLVABLE"
)

// Outcome is what a persona hands back to the engine: the reply text, the
// state it reached and the failure that shaped it, if any.
type Outcome struct {
	Text  string
	State State
	Err   error
}

// Reply is the finished answer passed to the delivery layer.
type Reply struct {
	Text             string
	Persona          string
	CompletionTokens int
	State            State
}

func NewReply(persona, text string, state State) *Reply {
	return &Reply{
		Text:             text,
		Persona:          persona,
		CompletionTokens: WordCount(text),
		State:            state,
	}
}

func (r *Reply) TotalTokens() int {
	return PromptTokens + r.CompletionTokens
}

// WordCount counts whitespace-delimited words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// LastUserMessage returns the trimmed content of the last user message.
func LastUserMessage(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return strings.TrimSpace(messages[i].Content), true
		}
	}
	return "", false
}
