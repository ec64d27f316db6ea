// cmd/mock-agents/serve.go
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"mock-agents/internal/agent"
	"mock-agents/internal/agents/stock"
	"mock-agents/internal/agents/weather"
	"mock-agents/internal/common/config"
	"mock-agents/internal/common/identity"
	"mock-agents/internal/common/logger"
	"mock-agents/internal/common/observability"
	"mock-agents/internal/delivery"
	"mock-agents/internal/server"
)

const personaAll = "all"

var servePersona string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the persona chat-completion APIs and the ops endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg, servePersona)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePersona, "persona", personaAll, "persona to serve: stock, weather or all")
}

type personaEntry struct {
	cfg   config.PersonaConfig
	build func(log logger.Logger) agent.Persona
}

func personaTable(cfg *config.Config) map[string]personaEntry {
	return map[string]personaEntry{
		stock.PersonaName: {
			cfg: cfg.Personas.Stock,
			build: func(log logger.Logger) agent.Persona {
				return stock.NewPersona(stock.LoadConfig(cfg), stock.DefaultRandomSource(), log)
			},
		},
		weather.PersonaName: {
			cfg: cfg.Personas.Weather,
			build: func(log logger.Logger) agent.Persona {
				return weather.NewPersona(weather.LoadConfig(cfg), log)
			},
		},
	}
}

// selectPersonas resolves the --persona flag against the enabled personas.
func selectPersonas(cfg *config.Config, selection string) ([]string, error) {
	table := personaTable(cfg)
	if selection == personaAll {
		var names []string
		for _, name := range []string{stock.PersonaName, weather.PersonaName} {
			if table[name].cfg.Enabled {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("no persona is enabled")
		}
		return names, nil
	}

	entry, ok := table[selection]
	if !ok {
		return nil, fmt.Errorf("unknown persona %q: want stock, weather or all", selection)
	}
	if !entry.cfg.Enabled {
		return nil, fmt.Errorf("persona %q is disabled in configuration", selection)
	}
	return []string{selection}, nil
}

func runServe(ctx context.Context, cfg *config.Config, selection string) error {
	zapLog := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": version,
	})

	names, err := selectPersonas(cfg, selection)
	if err != nil {
		return err
	}

	obs := observability.New(cfg.Observability.ServiceName, observability.Options{
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
	})
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	table := personaTable(cfg)
	servers := make([]*http.Server, 0, len(names)+1)
	for _, name := range names {
		entry := table[name]
		personaLog := log.With(map[string]interface{}{"persona": name})

		engine := agent.NewEngine(entry.build(personaLog), personaLog, obs)
		deliverer := delivery.New(delivery.Options{
			ModelID:  entry.cfg.ModelID,
			Strategy: delivery.NewStrategy(entry.cfg.Stream),
			IDs:      identity.UUIDGenerator{},
			Strict:   cfg.Server.StrictWire,
		}, personaLog)
		api := server.New(server.Options{
			OwnedBy:      entry.cfg.OwnedBy,
			ModelCreated: entry.cfg.ModelCreated,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
		}, engine, deliverer, personaLog)

		servers = append(servers, server.NewHTTPServer(cfg.Server.Address(entry.cfg.Port), api.Handler()))
		log.Info("persona configured", map[string]interface{}{
			"persona":  name,
			"port":     entry.cfg.Port,
			"model":    entry.cfg.ModelID,
			"strategy": entry.cfg.Stream.Policy,
		})
	}

	ops := server.NewOps(names, nil)
	if cfg.Server.OpsPort != 0 {
		servers = append(servers, server.NewHTTPServer(cfg.Server.Address(cfg.Server.OpsPort), ops.Handler()))
	}

	listeners := make([]net.Listener, 0, len(servers))
	for _, srv := range servers {
		ln, err := server.Listen(srv)
		if err != nil {
			for _, open := range listeners {
				open.Close()
			}
			return err
		}
		listeners = append(listeners, ln)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, srv := range servers {
		wg.Add(1)
		go func(srv *http.Server, ln net.Listener) {
			defer wg.Done()
			if err := server.Run(ctx, srv, ln, config.GetDuration(cfg.Server.ShutdownTimeout), log); err != nil {
				log.Error("listener failed", map[string]interface{}{"addr": srv.Addr, "error": err.Error()})
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
			}
		}(srv, listeners[i])
	}
	ops.SetReady(true)
	log.Info("mock agents ready", map[string]interface{}{"personas": names})

	<-ctx.Done()
	ops.SetReady(false)
	log.Info("shutdown signal received, stopping listeners", nil)
	wg.Wait()

	log.Info("mock agents stopped", nil)
	return firstErr
}
