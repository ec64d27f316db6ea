// internal/stdio/tools.go
package stdio

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

const (
	defaultRandomMin = 1
	defaultRandomMax = 100
)

// RandomSource draws integers in [0, n). n == 0 stands for the full
// 64-bit range.
type RandomSource interface {
	Uint64N(n uint64) uint64
}

type globalSource struct{}

func (globalSource) Uint64N(n uint64) uint64 {
	if n == 0 {
		return rand.Uint64()
	}
	return rand.Uint64N(n)
}

func DefaultRandomSource() RandomSource {
	return globalSource{}
}

type toolFunc func(args json.RawMessage) (CallResult, *RPCError)

type toolEntry struct {
	Tool
	call toolFunc
}

func (s *Server) tools() []toolEntry {
	return []toolEntry{
		{
			Tool: Tool{
				Name:        "echo",
				Description: "Echo back the input text",
				InputSchema: InputSchema{
					Type: "object",
					Properties: map[string]Property{
						"text": {Type: "string", Description: "Text to echo back"},
					},
					Required: []string{"text"},
				},
			},
			call: echo,
		},
		{
			Tool: Tool{
				Name:        "random_number",
				Description: "Generate a random number",
				InputSchema: InputSchema{
					Type: "object",
					Properties: map[string]Property{
						"min": {Type: "integer", Description: "Minimum value", Default: defaultRandomMin},
						"max": {Type: "integer", Description: "Maximum value", Default: defaultRandomMax},
					},
				},
			},
			call: s.randomNumber,
		},
	}
}

func decodeArgs(raw json.RawMessage, out interface{}) *RPCError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("Invalid arguments: %v", err)}
	}
	return nil
}

func echo(raw json.RawMessage) (CallResult, *RPCError) {
	var args struct {
		Text string `json:"text"`
	}
	if rpcErr := decodeArgs(raw, &args); rpcErr != nil {
		return CallResult{}, rpcErr
	}
	return textResult("Echo: " + args.Text), nil
}

// randomNumber draws uniformly from the inclusive range [min, max].
func (s *Server) randomNumber(raw json.RawMessage) (CallResult, *RPCError) {
	args := struct {
		Min int64 `json:"min"`
		Max int64 `json:"max"`
	}{Min: defaultRandomMin, Max: defaultRandomMax}
	if rpcErr := decodeArgs(raw, &args); rpcErr != nil {
		return CallResult{}, rpcErr
	}
	if args.Min > args.Max {
		return CallResult{}, &RPCError{
			Code:    CodeInvalidParams,
			Message: fmt.Sprintf("Invalid range: min %d is greater than max %d", args.Min, args.Max),
		}
	}

	// The span is computed in uint64 and wraps to 0 only for the full int64 range.
	span := uint64(args.Max) - uint64(args.Min) + 1
	n := int64(uint64(args.Min) + s.random.Uint64N(span))
	return textResult(fmt.Sprintf("Random number between %d and %d: %d", args.Min, args.Max, n)), nil
}
