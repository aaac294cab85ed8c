package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beaconhq/beacon/internal/infrastructure/config"
	"github.com/beaconhq/beacon/internal/infrastructure/httpapi"
	"github.com/beaconhq/beacon/internal/infrastructure/storage"
	"github.com/beaconhq/beacon/internal/infrastructure/ws"
	"github.com/beaconhq/beacon/pkg/domain/events"
)

var (
	serveAddr      string
	serveNoPersist bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the beacon API server",
	Long: `Start the HTTP server that accepts task context documents and serves
normalized execution status.

Endpoints:
  POST /api/executions/{id}/context   Submit a task context document
  GET  /api/executions/{id}/status    Read the current status projection
  GET  /api/executions                List projections (?projectId= filters)
  GET  /ws                            WebSocket status stream (?projectId= filters)
  GET  /healthz                       Liveness probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, _ := os.Getwd()
		cfg, err := config.Load(cwd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		addr := cfg.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		store := storage.NewMemoryStore()
		publisher := events.NewInMemoryPublisher()
		hub := ws.NewHub(publisher)

		var contexts *storage.ContextRepository
		var eventLog *storage.EventLog
		if cfg.PersistContexts && !serveNoPersist {
			contexts = storage.NewContextRepository(cfg.WorkspaceRoot)
			if err := contexts.Initialize(); err != nil {
				return fmt.Errorf("initialize context store: %w", err)
			}
			eventLog = storage.NewEventLog(cfg.WorkspaceRoot)
		}

		server, err := httpapi.NewServer(httpapi.Options{
			Addr:      addr,
			Store:     store,
			Contexts:  contexts,
			Events:    eventLog,
			Publisher: publisher,
			WS:        hub,
		})
		if err != nil {
			return err
		}

		// Handle graceful shutdown
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			<-stop
			fmt.Println("\nShutting down beacon server...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()

		fmt.Printf("Starting beacon server on %s\n", addr)
		fmt.Println("Press Ctrl+C to stop")

		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides beacon.yaml)")
	serveCmd.Flags().BoolVar(&serveNoPersist, "no-persist", false, "Disable task context persistence")
	RootCmd.AddCommand(serveCmd)
}
