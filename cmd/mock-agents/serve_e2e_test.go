package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-agents/internal/common/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// newUpstream fakes the quote, geocoding and forecast services on one server.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"AAPL","regularMarketPrice":190.25,"previousClose":188.75,"currency":"USD","exchangeName":"NMS","longName":"Apple Inc.","marketCap":2950000000000}}]}}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"lat":"47.6038","lon":"-122.3300","display_name":"Seattle"}]`)
	})
	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"properties":{"forecast":"%s/gridpoints/SEW/1,1/forecast"}}`, srv.URL)
	})
	mux.HandleFunc("/gridpoints/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"properties":{"periods":[{"name":"Tonight","detailedForecast":"Mostly clear. Low around 48."}]}}`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newE2EConfig(t *testing.T, upstream string) *config.Config {
	t.Helper()
	endpoint := func() config.EndpointConfig {
		return config.EndpointConfig{BaseURL: upstream, UserAgent: "e2e", Timeout: 2000}
	}
	return &config.Config{
		App:    config.AppConfig{Name: "mock-agents"},
		Server: config.ServerConfig{Host: "127.0.0.1", OpsPort: freePort(t), ShutdownTimeout: 2000, MaxBodyBytes: 1 << 20, StrictWire: true},
		Personas: config.PersonasConfig{
			Stock: config.PersonaConfig{
				Enabled: true, Port: freePort(t), ModelID: "stock-market-agent", OwnedBy: "stock-local",
				Stream: config.StreamConfig{Policy: config.StreamPolicyWordGroups, ChunkWords: 5, ChunkDelay: 1},
			},
			Weather: config.PersonaConfig{
				Enabled: true, Port: freePort(t), ModelID: "weather-bot", OwnedBy: "weather-proxy", DefaultCity: "Seattle",
				Stream: config.StreamConfig{Policy: config.StreamPolicySingleChunk},
			},
		},
		APIs:          config.APIsConfig{Quote: endpoint(), Geocode: endpoint(), Forecast: endpoint()},
		Logging:       config.LoggingConfig{Level: "warn", Format: "console", Output: "stderr"},
		Observability: config.ObservabilityConfig{ServiceName: "mock-agents-e2e", TraceSampleRatio: 1},
	}
}

func waitReady(t *testing.T, opsPort int) {
	t.Helper()
	url := fmt.Sprintf("http://127.0.0.1:%d/ready", opsPort)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
}

func clientFor(port int) *openai.Client {
	c := openai.DefaultConfig("unused")
	c.BaseURL = fmt.Sprintf("http://127.0.0.1:%d/v1", port)
	return openai.NewClientWithConfig(c)
}

func TestServe_EndToEnd(t *testing.T) {
	upstream := newUpstream(t)
	cfg := newE2EConfig(t, upstream.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, personaAll) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("serve did not stop")
		}
	})
	waitReady(t, cfg.Server.OpsPort)

	t.Run("stock models", func(t *testing.T) {
		models, err := clientFor(cfg.Personas.Stock.Port).ListModels(context.Background())
		require.NoError(t, err)
		require.Len(t, models.Models, 1)
		assert.Equal(t, "stock-market-agent", models.Models[0].ID)
		assert.Equal(t, "stock-local", models.Models[0].OwnedBy)
	})

	t.Run("stock completion", func(t *testing.T) {
		resp, err := clientFor(cfg.Personas.Stock.Port).CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
			Model:    "stock-market-agent",
			Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "What's the price of AAPL?"}},
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp.ID, "chatcmpl-stock-"), resp.ID)
		assert.Contains(t, resp.Choices[0].Message.Content, "USD 190.25")
		assert.Contains(t, resp.Choices[0].Message.Content, "Apple Inc.")
	})

	t.Run("stock stream", func(t *testing.T) {
		stream, err := clientFor(cfg.Personas.Stock.Port).CreateChatCompletionStream(context.Background(), openai.ChatCompletionRequest{
			Model:    "stock-market-agent",
			Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "Give me the recent performance of AAPL"}},
		})
		require.NoError(t, err)
		defer stream.Close()

		var content strings.Builder
		chunks := 0
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
			chunks++
			content.WriteString(chunk.Choices[0].Delta.Content)
		}
		assert.Greater(t, chunks, 2)
		assert.Contains(t, content.String(), "Performance Summary")
	})

	t.Run("weather completion", func(t *testing.T) {
		resp, err := clientFor(cfg.Personas.Weather.Port).CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
			Model:    "weather-bot",
			Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "weather in Seattle"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "The forecast for Seattle is: Mostly clear. Low around 48.", resp.Choices[0].Message.Content)
	})

	t.Run("metrics exposed", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", cfg.Server.OpsPort))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "agent_completions_total")
	})
}
