// cmd/mock-agents/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mock-agents/internal/common/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mock-agents",
	Short: "OpenAI-compatible mock agents for integration testing",
	Long: `mock-agents serves canned-but-plausible chat completions from small
domain personas (stock quotes, weather forecasts) over the OpenAI chat
completion protocol, plus a line-delimited JSON-RPC tool server on stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFromFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/config.yaml)")
	rootCmd.AddCommand(serveCmd, stdioCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
