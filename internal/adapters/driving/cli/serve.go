package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docent-labs/docent/internal/adapters/driving/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API: document upload, question answering, registry
listing, health and Prometheus metrics endpoints.

Endpoints:
  POST /api/documents  - upload and ingest a PDF (multipart, "file" field)
  GET  /api/documents  - list ingested documents
  POST /api/ask        - answer a question ({"question": "..."})
  GET  /healthz        - liveness probe
  GET  /metrics        - Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := initPipeline(cmd.Context(), false); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cfg := api.Config{
		Addr:           settings.Server.Addr,
		MaxUploadBytes: settings.Server.MaxUploadBytes,
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	server, err := api.NewServer(&api.Ports{
		Ingest:    ingestService,
		Answer:    answerService,
		Documents: documentService,
	}, cfg)
	if err != nil {
		return err
	}

	cmd.Printf("Serving on %s\n", cfg.Addr)
	return server.Start(cmd.Context())
}
