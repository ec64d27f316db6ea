// cmd/mock-agents/stdio.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mock-agents/internal/common/logger"
	"mock-agents/internal/stdio"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Run the JSON-RPC tool server on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// stdout carries the protocol.
		zapLog := logger.New(logger.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: "stderr",
		})
		defer zapLog.Sync()

		srv := stdio.New(cfg.Stdio, stdio.DefaultRandomSource(), logger.NewZapAdapter(zapLog))
		return srv.Serve(ctx, os.Stdin, os.Stdout)
	},
}
