// internal/stdio/server.go
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"mock-agents/internal/common/config"
	"mock-agents/internal/common/logger"
	"mock-agents/internal/common/metrics"
)

// Server is a line-delimited JSON-RPC tool server: one request object per
// input line, one response object per output line.
type Server struct {
	info   ServerInfo
	random RandomSource
	logger logger.Logger
}

func New(cfg config.StdioConfig, random RandomSource, log logger.Logger) *Server {
	if random == nil {
		random = DefaultRandomSource()
	}
	return &Server{
		info:   ServerInfo{Name: cfg.ServerName, Version: cfg.ServerVersion},
		random: random,
		logger: log.With(map[string]interface{}{"server": cfg.ServerName}),
	}
}

// Serve answers requests from r on w until input ends, a blank or
// undecodable line arrives, or ctx is done.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.logger.Info("stdio server starting", nil)
	defer s.logger.Info("stdio server stopping", nil)

	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, readErr := reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if readErr != nil && !errors.Is(readErr, io.EOF) {
				return fmt.Errorf("read request: %w", readErr)
			}
			return nil
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Error("undecodable request line", map[string]interface{}{
				"error": err.Error(),
				"line":  string(line),
			})
			return nil
		}
		s.logger.Debug("request received", map[string]interface{}{
			"method": req.Method,
			"id":     string(req.ID),
		})

		resp := s.Handle(req)
		payload, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		if _, err := writer.Write(append(payload, '\n')); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("write response: %w", err)
		}

		if readErr != nil {
			return nil
		}
	}
}

// Handle dispatches one request. A null or missing id is left off the response.
func (s *Server) Handle(req Request) Response {
	var (
		result interface{}
		rpcErr *RPCError
	)
	switch req.Method {
	case MethodInitialize:
		result = InitializeResult{
			ServerInfo:   s.info,
			Capabilities: Capabilities{Tools: ToolsCapability{ListChanged: false}},
		}
	case MethodToolsList:
		entries := s.tools()
		list := ToolsListResult{Tools: make([]Tool, 0, len(entries))}
		for _, e := range entries {
			list.Tools = append(list.Tools, e.Tool)
		}
		result = list
	case MethodToolsCall:
		result, rpcErr = s.callTool(req.Params)
	default:
		rpcErr = &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("Method not found: %s", req.Method)}
	}

	resp := Response{JSONRPC: jsonRPCVersion}
	if len(req.ID) > 0 && string(req.ID) != "null" {
		resp.ID = req.ID
	}

	outcome := "ok"
	if rpcErr != nil {
		outcome = "error"
		resp.Error = rpcErr
		s.logger.Warn("request failed", map[string]interface{}{
			"method": req.Method,
			"code":   rpcErr.Code,
			"error":  rpcErr.Message,
		})
	} else {
		resp.Result = result
	}
	metrics.StdioCalls.WithLabelValues(methodLabel(req.Method), outcome).Inc()
	return resp
}

func (s *Server) callTool(raw json.RawMessage) (interface{}, *RPCError) {
	var params CallParams
	if rpcErr := decodeArgs(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	for _, e := range s.tools() {
		if e.Name == params.Name {
			result, rpcErr := e.call(params.Arguments)
			if rpcErr != nil {
				return nil, rpcErr
			}
			return result, nil
		}
	}
	return nil, &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("Unknown tool: %s", params.Name)}
}

func methodLabel(method string) string {
	switch method {
	case MethodInitialize, MethodToolsList, MethodToolsCall:
		return method
	}
	return "unknown"
}
