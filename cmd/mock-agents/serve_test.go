package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-agents/internal/common/config"
)

func testConfig(stockEnabled, weatherEnabled bool) *config.Config {
	return &config.Config{
		Personas: config.PersonasConfig{
			Stock:   config.PersonaConfig{Enabled: stockEnabled, Port: 8082, ModelID: "stock-market-agent"},
			Weather: config.PersonaConfig{Enabled: weatherEnabled, Port: 8081, ModelID: "weather-bot"},
		},
	}
}

func TestSelectPersonas(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		selection string
		want      []string
		wantErr   string
	}{
		{name: "all enabled", cfg: testConfig(true, true), selection: "all", want: []string{"stock", "weather"}},
		{name: "all with one disabled", cfg: testConfig(false, true), selection: "all", want: []string{"weather"}},
		{name: "none enabled", cfg: testConfig(false, false), selection: "all", wantErr: "no persona is enabled"},
		{name: "single persona", cfg: testConfig(true, true), selection: "stock", want: []string{"stock"}},
		{name: "disabled persona", cfg: testConfig(true, false), selection: "weather", wantErr: "disabled"},
		{name: "unknown persona", cfg: testConfig(true, true), selection: "crypto", wantErr: "unknown persona"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectPersonas(tt.cfg, tt.selection)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "mock-agents dev\n", out.String())
}
