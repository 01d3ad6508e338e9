/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the retail diagnostics server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load YAML config (engine thresholds, schedule)
  3. Initialize SQLite store
  4. Build engine, ingestion loader, API handler
  5. Start the nightly scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: retail.db)
              Use ":memory:" for in-memory database
  -config     Optional YAML config file
  -data       CSV drop directory (default: ./data)
  -log-level  trace|debug|info|warn|error (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/retail.db"

  # Run with custom thresholds
  ./server -config=./config.yaml

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Nightly run scheduling
  - engine/config.go: Threshold knobs
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/creasty/defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/retailops/diagnostics-engine/api"
	"github.com/retailops/diagnostics-engine/engine"
	"github.com/retailops/diagnostics-engine/ingest"
	"github.com/retailops/diagnostics-engine/store/sqlite"
)

// serverConfig is the YAML config file shape. Every field has a
// default, so an absent file or empty sections are fine.
type serverConfig struct {
	Schedule string        `yaml:"schedule" default:"0 2 * * *"`
	Engine   engine.Config `yaml:"engine"`
}

func loadConfig(path string) (serverConfig, error) {
	var cfg serverConfig
	if err := defaults.Set(&cfg); err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "retail.db", "SQLite database path")
	configPath := flag.String("config", "", "YAML config file")
	dataDir := flag.String("data", "./data", "CSV drop directory")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, using info", *logLevel)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize engine
	eng, err := engine.New(cfg.Engine)
	if err != nil {
		log.Fatalf("Invalid engine config: %v", err)
	}

	loader := &ingest.Loader{
		Store:         store,
		Log:           log,
		DataDir:       *dataDir,
		QuarantineDir: filepath.Join(*dataDir, "quarantine"),
	}

	// Initialize handler and router
	handler := api.NewHandler(store, eng, loader, log)
	router := api.NewRouter(handler)

	// Nightly diagnosis scheduler
	scheduler := api.NewScheduler(handler, log)
	scheduler.Spec = cfg.Schedule
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Server starting on http://localhost:%d", *port)
		log.Infof("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}
