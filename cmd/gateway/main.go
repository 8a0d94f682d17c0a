// Command gateway runs the conversational front door of the marketplace.
// It turns chat messages into booking intents through the NLU collaborator,
// shops for the best offer, and renders the outcome back as prose.
//
// # Endpoints
//
//   - POST /chat - One conversation turn; the request carries the user's
//     message plus the conversation state from the previous reply.
//   - GET /health - Health check
//
// An Authorization bearer token on /chat is attached to the emitted
// booking task as a sibling field; it is never part of the signed payload.
//
// # Usage
//
//	go run ./cmd/gateway --config=gateway.yaml
//	go run ./cmd/gateway --addr=:8888 --directory=http://localhost:7900
//
// The Gemini API key comes from gateway.gemini_api_key or the
// GOOGLE_API_KEY / GEMINI_API_KEY environment variables.
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
	"github.com/go-chi/cors"

	"github.com/trebortGolin/agnostic-agent-api/api/httpserver"
	"github.com/trebortGolin/agnostic-agent-api/client"
	"github.com/trebortGolin/agnostic-agent-api/cmd/common"
	"github.com/trebortGolin/agnostic-agent-api/nlu"
	"github.com/trebortGolin/agnostic-agent-api/telemetry"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		addr       = flag.String("addr", "", "HTTP listen address")
		dirURL     = flag.String("directory", "", "Directory base URL")
		credential = flag.String("credential", "", "Directory discovery credential")
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
	if *dirURL != "" {
		cfg.Shopper.DirectoryURL = *dirURL
	}
	if *credential != "" {
		cfg.Shopper.Credential = *credential
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *common.Config) error {
	log := common.NewLogger(cfg.Log)

	shutdownTelemetry, err := telemetry.InitWithConfig("atp-gateway", "1.0.0", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer shutdownTelemetry(context.Background())

	signingKey, err := common.LoadOrGenerateSigningKey(cfg.Shopper.SigningKey)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	shopper, err := client.New(&client.Config{
		DirectoryURL:     cfg.Shopper.DirectoryURL,
		RequesterID:      cfg.Shopper.RequesterID,
		Credential:       cfg.Shopper.Credential,
		AllowUnverified:  cfg.Shopper.AllowUnverified,
		NegotiateTimeout: cfg.Shopper.NegotiateTimeout,
		SigningKey:       signingKey,
	}, log, metrics)
	if err != nil {
		return err
	}

	geminiOpts := []nlu.Option{}
	if cfg.Gateway.GeminiModel != "" {
		geminiOpts = append(geminiOpts, nlu.WithModel(cfg.Gateway.GeminiModel))
	}
	gemini, err := nlu.NewGemini(context.Background(), cfg.Gateway.GeminiAPIKey, geminiOpts...)
	if err != nil {
		return fmt.Errorf("create gemini collaborator: %w", err)
	}

	gateway := NewGateway(shopper, gemini, gemini, log)

	server, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               cfg.HTTPAddr,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              15 * time.Second,
		WriteTimeout:             60 * time.Second,
	}, httpserver.RegistrarFunc(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		gateway.RegisterRoutes(r)
	}))
	if err != nil {
		return err
	}

	server.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down gateway")
	server.Shutdown()
	return nil
}
