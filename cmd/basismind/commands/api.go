package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/basismind/basismind/internal/api"
	"github.com/basismind/basismind/internal/api/handlers"
	"github.com/basismind/basismind/internal/store"
	"github.com/basismind/basismind/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST and websocket API server.

Endpoints:
  GET  /health                - Health check
  GET  /api/decision/latest   - Most recent decision report
  GET  /api/decision/{date}   - Report for a date
  POST /api/decision/run      - Run the decision pipeline
  GET  /api/decisions         - Reports within a range
  GET  /api/market/{date}     - Raw market row
  POST /api/market/ingest     - Run the ingestion pipeline
  GET  /api/quality/runs      - Recent ingestion runs
  WS   /ws/reports            - Live report feed

Example:
  go run ./cmd/basismind api
  go run ./cmd/basismind api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	log := d.log
	log.WithFields(map[string]interface{}{
		"port": d.cfg.Port,
		"env":  d.cfg.Env,
	}).Info("Initializing API server")

	ctx := context.Background()
	if err := store.Migrate(ctx, d.db.Pool); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	hub := api.NewHub(log)
	d.orchestrator.WithBroadcaster(hub)

	decisionHandler := handlers.NewDecisionHandler(d.orchestrator, d.reports, log).
		WithCache(redis.NewCache(d.cache, "basismind"))
	dataHandler := handlers.NewDataHandler(d.market, d.pipeline, d.quality, log)

	router := api.NewRouter(decisionHandler, dataHandler, hub, log)
	server := api.New(d.cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
