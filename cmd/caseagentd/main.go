// Command caseagentd runs the Case Agent Orchestrator: it serves the Surface
// Transport WebSocket endpoint that drives the per-case Agent Loop Engine,
// and offers a replay subcommand for inspecting an archived case offline
// (spec §4 overview, §6 configuration).
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"orchestrator/pkg/logx"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "caseagentd",
		Short: "Case Agent Orchestrator daemon",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(replayCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the orchestrator HTTP/WebSocket server until signaled",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logx.NewLogger("caseagentd")

			cfg, err := loadEnvConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			deciderFactory, stopLimiters, err := buildDeciderFactory(cfg)
			if err != nil {
				return fmt.Errorf("build decider factory: %w", err)
			}
			defer stopLimiters()

			srv, err := newServer(cfg, deciderFactory)
			if err != nil {
				return fmt.Errorf("build server: %w", err)
			}

			httpServer := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: srv.mux(),
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("caseagentd listening on %s (archive root %s)", cfg.ListenAddr, cfg.ArchiveRoot)
				errCh <- httpServer.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return fmt.Errorf("server error: %w", err)
				}
			case sig := <-sigCh:
				log.Info("received signal %v, shutting down", sig)
				return httpServer.Shutdown(cmd.Context())
			}
			return nil
		},
	}
}
