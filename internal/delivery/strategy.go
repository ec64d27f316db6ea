// internal/delivery/strategy.go
package delivery

import (
	"strings"
	"time"

	"mock-agents/internal/common/config"
)

// Strategy decides how a reply is cut into stream chunks and how long to
// pause after each one. The stock and weather personas deliberately stream
// differently; both policies are kept.
type Strategy interface {
	Name() string
	Split(text string) []string
	Pause() time.Duration
}

const defaultGroupSize = 5

// WordGroups splits on single spaces into groups of Size words. Every chunk
// but the last keeps a trailing space so the chunks concatenate to the
// original text.
type WordGroups struct {
	Size  int
	Delay time.Duration
}

func (WordGroups) Name() string { return config.StreamPolicyWordGroups }

func (s WordGroups) Pause() time.Duration { return s.Delay }

func (s WordGroups) Split(text string) []string {
	size := s.Size
	if size <= 0 {
		size = defaultGroupSize
	}

	words := strings.Split(text, " ")
	chunks := make([]string, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := min(i+size, len(words))
		chunk := strings.Join(words[i:end], " ")
		if end < len(words) {
			chunk += " "
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// SingleChunk sends the whole reply at once.
type SingleChunk struct{}

func (SingleChunk) Name() string { return config.StreamPolicySingleChunk }

func (SingleChunk) Pause() time.Duration { return 0 }

func (SingleChunk) Split(text string) []string {
	return []string{text}
}

// NewStrategy maps a persona's stream configuration to a Strategy.
func NewStrategy(cfg config.StreamConfig) Strategy {
	if cfg.Policy == config.StreamPolicyWordGroups {
		return WordGroups{Size: cfg.ChunkWords, Delay: config.GetDuration(cfg.ChunkDelay)}
	}
	return SingleChunk{}
}
