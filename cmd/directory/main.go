// Command directory runs the ATP supplier directory.
//
// # Configuration File
//
// Create a YAML file with directory settings:
//
//	addr: ":7900"
//	log:
//	  level: info
//	  format: text
//	directory:
//	  credential: "shared-discovery-secret"
//	  admin_token: "admin:secret"
//
// # Endpoints
//
// Public (credential header when configured):
//   - GET /discover?serviceType=... - Discover suppliers
//   - GET /health - Health check
//
// Admin (basic auth when admin_token set):
//   - POST /admin/suppliers - Register a supplier
//   - GET /admin/suppliers - List all suppliers
//   - DELETE /admin/suppliers/{supplierID} - Remove a supplier
//
// # Usage
//
//	go run ./cmd/directory --config=directory.yaml
//	go run ./cmd/directory --addr=:7900 --admin-token="admin:secret"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/trebortGolin/agnostic-agent-api/api/httpserver"
	"github.com/trebortGolin/agnostic-agent-api/cmd/common"
	"github.com/trebortGolin/agnostic-agent-api/directory"
	"github.com/trebortGolin/agnostic-agent-api/telemetry"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		addr       = flag.String("addr", "", "HTTP listen address")
		credential = flag.String("credential", "", "Shared discovery credential")
		adminToken = flag.String("admin-token", "", "Basic auth token for admin operations (user:pass)")
	)
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *credential != "" {
		cfg.Directory.Credential = *credential
	}
	if *adminToken != "" {
		cfg.Directory.AdminToken = *adminToken
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *common.Config) error {
	log := common.NewLogger(cfg.Log)

	shutdownTelemetry, err := telemetry.InitWithConfig("atp-directory", "1.0.0", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer shutdownTelemetry(context.Background())

	d := directory.New(&directory.Config{
		Credential: cfg.Directory.Credential,
		AdminToken: cfg.Directory.AdminToken,
	}, nil)

	server, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               cfg.HTTPAddr,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              15 * time.Second,
		WriteTimeout:             15 * time.Second,
	}, httpserver.RegistrarFunc(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		directory.NewHandler(d, log).RegisterRoutes(r)
	}))
	if err != nil {
		return err
	}

	if cfg.Directory.AdminToken == "" {
		log.Warn("no admin token configured, /admin/* routes are unprotected")
	}
	server.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down directory")
	server.Shutdown()
	return nil
}
