// Package identity generates response identifiers and timestamps for the
// chat-completion envelope.
package identity

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Generator produces the unique part of a response id.
type Generator interface {
	NewID() string
}

// Clock supplies the "created" timestamp of a response.
type Clock func() time.Time

// UUIDGenerator draws random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Sequence yields "<prefix>1", "<prefix>2", ... and is safe for concurrent use.
type Sequence struct {
	Prefix string
	n      atomic.Uint64
}

func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s%d", s.Prefix, s.n.Add(1))
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// CompletionID builds the wire id "chatcmpl-<persona>-<unique>".
func CompletionID(gen Generator, persona string) string {
	return fmt.Sprintf("chatcmpl-%s-%s", persona, gen.NewID())
}
