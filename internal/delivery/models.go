// internal/delivery/models.go
package delivery

import openai "github.com/sashabaranov/go-openai"

const (
	ObjectCompletion = "chat.completion"
	ObjectChunk      = "chat.completion.chunk"
	ObjectList       = "list"
	ObjectModel      = "model"

	// DoneSentinel terminates an event stream.
	DoneSentinel = "[DONE]"
)

// Completion is the non-streaming chat completion envelope. Choices reuse the
// go-openai message types; the envelope stays minimal so the wire carries no
// provider-specific extras.
type Completion struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int                          `json:"index"`
	Message      openai.ChatCompletionMessage `json:"message"`
	FinishReason openai.FinishReason          `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Chunk is one server-sent event of a streamed completion. An empty
// FinishReason marshals as null.
type Chunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

type ChunkChoice struct {
	Index        int                                    `json:"index"`
	Delta        openai.ChatCompletionStreamChoiceDelta `json:"delta"`
	FinishReason openai.FinishReason                    `json:"finish_reason"`
}

// ModelList is the /v1/models discovery document.
type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelCard `json:"data"`
}

// ModelCard omits created unless a creation time is configured.
type ModelCard struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by"`
}

func NewModelList(id, ownedBy string, created int64) ModelList {
	return ModelList{
		Object: ObjectList,
		Data:   []ModelCard{{ID: id, Object: ObjectModel, Created: created, OwnedBy: ownedBy}},
	}
}
