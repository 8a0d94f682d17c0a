// Command supplier runs one ATP supplier agent.
//
// # Configuration File
//
// Create a YAML file with supplier settings:
//
//	addr: ":7901"
//	supplier:
//	  supplier_id: "sup-airfrance"
//	  name: "Air France Agent"
//	  base_url: "http://localhost:7901"
//	  catalog: "catalog.yaml"
//	  offer_ttl: 15m
//	  directory_url: "http://localhost:7900" # optional self-registration
//
// The quote catalog maps service types to price points:
//
//	booking:flight:
//	  price: 480
//	  currency: EUR
//	weather:forecast:
//	  price: 2.5
//	  currency: EUR
//
// # Endpoints
//
//   - POST /atp/v1/negotiate - Negotiate an offer for an intent
//   - POST /atp/v1/commit - Commit a previously issued offer
//   - GET /health - Health check
//
// # Usage
//
//	go run ./cmd/supplier --config=supplier.yaml
//	go run ./cmd/supplier --addr=:7901 --id=sup-1 --name="Supplier One" --catalog=catalog.yaml
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
	"gopkg.in/yaml.v3"

	"github.com/trebortGolin/agnostic-agent-api/api/httpserver"
	"github.com/trebortGolin/agnostic-agent-api/cmd/common"
	"github.com/trebortGolin/agnostic-agent-api/supplier"
	"github.com/trebortGolin/agnostic-agent-api/telemetry"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		addr        = flag.String("addr", "", "HTTP listen address")
		supplierID  = flag.String("id", "", "Supplier id")
		name        = flag.String("name", "", "Supplier display name")
		baseURL     = flag.String("base-url", "", "Externally reachable base URL")
		catalogPath = flag.String("catalog", "", "Path to YAML quote catalog")
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
	if *supplierID != "" {
		cfg.Supplier.SupplierID = *supplierID
	}
	if *name != "" {
		cfg.Supplier.Name = *name
	}
	if *baseURL != "" {
		cfg.Supplier.BaseURL = *baseURL
	}
	if *catalogPath != "" {
		cfg.Supplier.CatalogPath = *catalogPath
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadCatalog reads the supplier's quote catalog.
func loadCatalog(path string) (map[string]supplier.Quote, error) {
	if path == "" {
		return nil, fmt.Errorf("quote catalog path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var quotes map[string]supplier.Quote
	if err := yaml.Unmarshal(raw, &quotes); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return quotes, nil
}

func run(cfg *common.Config) error {
	log := common.NewLogger(cfg.Log)

	shutdownTelemetry, err := telemetry.InitWithConfig("atp-supplier", "1.0.0", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer shutdownTelemetry(context.Background())

	quotes, err := loadCatalog(cfg.Supplier.CatalogPath)
	if err != nil {
		return err
	}

	baseURL := cfg.Supplier.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost" + cfg.HTTPAddr
	}

	s, err := supplier.New(&supplier.Config{
		SupplierID: cfg.Supplier.SupplierID,
		Name:       cfg.Supplier.Name,
		BaseURL:    baseURL,
		Quotes:     quotes,
		OfferTTL:   cfg.Supplier.OfferTTL,
	})
	if err != nil {
		return err
	}

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	server, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               cfg.HTTPAddr,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              15 * time.Second,
		WriteTimeout:             15 * time.Second,
	}, httpserver.RegistrarFunc(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		supplier.NewHandler(s, log, metrics).RegisterRoutes(r)
	}))
	if err != nil {
		return err
	}

	log.Info("supplier starting",
		"supplier_id", cfg.Supplier.SupplierID,
		"addr", cfg.HTTPAddr,
		"services", len(quotes),
	)
	server.RunInBackground()

	if cfg.Supplier.DirectoryURL != "" {
		key, err := common.LoadOrGenerateSigningKey(cfg.Supplier.SigningKey)
		if err != nil {
			return fmt.Errorf("load signing key: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Announce(ctx, nil, cfg.Supplier.DirectoryURL, key); err != nil {
			log.Warn("directory announcement failed",
				"directory_url", cfg.Supplier.DirectoryURL,
				"err", err,
			)
		} else {
			log.Info("announced to directory", "directory_url", cfg.Supplier.DirectoryURL)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down supplier", "supplier_id", cfg.Supplier.SupplierID)
	server.Shutdown()
	return nil
}
