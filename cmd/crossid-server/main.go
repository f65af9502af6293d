// Package main is the entry point for the crossid transfer bridge server.
// It only handles dependency injection and server initialization.
// NO resolution logic belongs here.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/mapforge/crossid/internal/config"
	"github.com/mapforge/crossid/internal/infra/storage"
	"github.com/mapforge/crossid/internal/network"
	"github.com/mapforge/crossid/internal/platform/logger"
	"github.com/mapforge/crossid/internal/platform/metrics"
	"github.com/mapforge/crossid/internal/report"
)

// SQLitePersisterAdapter bridges the report package's Persister to the
// storage repository, supplying the background context the repository needs.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteReportRepository
}

func (a *SQLitePersisterAdapter) Append(operation string, e report.Entry) error {
	return a.repo.Append(context.Background(), operation, e)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Editor instances connect from arbitrary local origins
	},
}

// serveWs handles websocket requests from editor instances.
func serveWs(hub *network.Hub, maxPayload int64, w http.ResponseWriter, r *http.Request, appLogger *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		appLogger.Error("Failed to upgrade websocket connection: %v", err)
		return
	}

	client := network.NewClient(hub, conn, maxPayload)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	log.Println("[CROSSID-SERVER] Initializing transfer bridge server...")

	appLogger := logger.NewLogger()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			appLogger.Error("Failed to load config %s: %v", *configPath, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var reportPersister report.Persister
	if cfg.Cache.DatabasePath != "" {
		appLogger.Info("Initializing SQLite database %q...", cfg.Cache.DatabasePath)
		db, err := storage.InitSQLite(cfg.Cache.DatabasePath)
		if err != nil {
			appLogger.Error("Failed to initialize SQLite: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		reportPersister = &SQLitePersisterAdapter{repo: storage.NewSQLiteReportRepository(db)}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := network.NewHub(appLogger)
	go hub.Run(ctx)

	bridgeReport := report.New("bridge", reportPersister)

	mux := http.NewServeMux()
	mux.HandleFunc("/bridge", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, cfg.Bridge.MaxPayloadSize, w, r, appLogger)
	})
	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.Bridge.ListenAddr, Handler: mux}
	go func() {
		appLogger.Info("Bridge & metrics listening on %s", cfg.Bridge.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[CROSSID-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[CROSSID-SERVER] Shutting down...")
	appLogger.Info("%s", bridgeReport.Summary())
	server.Shutdown(context.Background())
}
