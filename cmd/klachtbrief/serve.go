package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/klachtbrief/internal/extraction"
	"github.com/jonathan/klachtbrief/internal/llm"
	"github.com/jonathan/klachtbrief/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes /api/process-text and /api/upload-file.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort > 0 {
		a.cfg.Port = servePort
	}

	if a.cfg.LLM.Probe {
		go probe(ctx, a.client, a.logger)
	}

	srv := server.New(a.cfg, a.orchestrator, extraction.New(a.cfg.Limits), a.logger)
	return srv.Start(ctx)
}

// probe checks once that the provider accepts our credential. The result
// is only logged; the server starts either way.
func probe(ctx context.Context, client *llm.Client, logger *zap.Logger) {
	reply, err := client.Probe(ctx)
	if err != nil {
		logger.Error("startup probe failed", zap.String("provider", client.ProviderName()), zap.Error(err))
		return
	}
	logger.Info("startup probe succeeded", zap.String("provider", client.ProviderName()), zap.String("reply", reply))
}
